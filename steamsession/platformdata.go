package steamsession

import (
	"github.com/k64z/steamstacks/protocol"
	"github.com/k64z/steamstacks/steamconfig"
)

// platformKindFor maps the wire EAuthTokenPlatformType onto the
// steamconfig.PlatformKind whose HTTP identity this session should adopt.
func platformKindFor(platformType protocol.EAuthTokenPlatformType) steamconfig.PlatformKind {
	switch platformType {
	case protocol.EAuthTokenPlatformType_k_EAuthTokenPlatformType_SteamClient:
		return steamconfig.PlatformSteamClient
	case protocol.EAuthTokenPlatformType_k_EAuthTokenPlatformType_MobileApp:
		return steamconfig.PlatformMobileApp
	default:
		return steamconfig.PlatformWebBrowser
	}
}

// SetHeaders adopts the user agent and website ID steamconfig specifies for
// this session's platform type, applied to every subsequent HTTP request.
func (s *Session) SetHeaders() {
	profile := steamconfig.ProfileFor(platformKindFor(s.platformType))
	s.userAgent = profile.UserAgent
	s.websiteID = profile.WebsiteID
}
