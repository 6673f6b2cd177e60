package steamsession

// EAuthSessionGuardType names the confirmation mechanisms
// BeginAuthSessionViaCredentials can ask for before an auth session is
// considered authorized — mirrors protocol.EAuthSessionGuardType, kept as a
// distinct type so callers branching on AllowedConfirmations don't need to
// import protocol themselves.
type EAuthSessionGuardType int32

const (
	EAuthSessionGuardTypeUnknown EAuthSessionGuardType = iota
	EAuthSessionGuardTypeNone
	EAuthSessionGuardTypeEmailCode
	EAuthSessionGuardTypeDeviceCode
	EAuthSessionGuardTypeDeviceConfirmation
	EAuthSessionGuardTypeEmailConfirmation
	EAuthSessionGuardTypeMachineToken
)

func (g EAuthSessionGuardType) String() string {
	switch g {
	case EAuthSessionGuardTypeNone:
		return "None"
	case EAuthSessionGuardTypeEmailCode:
		return "EmailCode"
	case EAuthSessionGuardTypeDeviceCode:
		return "DeviceCode"
	case EAuthSessionGuardTypeDeviceConfirmation:
		return "DeviceConfirmation"
	case EAuthSessionGuardTypeEmailConfirmation:
		return "EmailConfirmation"
	case EAuthSessionGuardTypeMachineToken:
		return "MachineToken"
	default:
		return "Unknown"
	}
}

// PlatformType selects which of Steam's login surfaces WithPlatformType
// presents a session as. It drives both the user agent/website ID pair
// (see platformdata.go) and which refresh strategy cookieRefreshTransport
// uses.
type PlatformType int32

const (
	PlatformTypeSteamClient = iota + 1
	PlatformTypeWebBrowser
	PlatformTypeMobileApp
)

func (p PlatformType) String() string {
	switch p {
	case PlatformTypeSteamClient:
		return "SteamClient"
	case PlatformTypeWebBrowser:
		return "WebBrowser"
	case PlatformTypeMobileApp:
		return "MobileApp"
	default:
		return "Unknown"
	}
}

// Persistence controls whether Steam treats a login token as surviving
// past the current browser/app session (Persistent) or only for it
// (Ephemereal).
type Persistence int32

const (
	PersistenceEphemereal Persistence = iota
	PersistencePersistent
)
