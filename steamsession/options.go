package steamsession

import (
	"fmt"

	"github.com/k64z/steamstacks/protocol"
)

func WithPlatformType(platformType PlatformType) Option {
	return func(cfg *config) error {
		if platformType < PlatformTypeSteamClient || platformType > PlatformTypeMobileApp {
			return fmt.Errorf("unsupported platform type: %d", platformType)
		}
		pt := protocol.EAuthTokenPlatformType(platformType)
		cfg.platformType = &pt
		return nil
	}
}

func WithPersistence(persistence Persistence) Option {
	return func(cfg *config) error {
		p := protocol.ESessionPersistence(persistence)
		cfg.persistence = &p
		return nil
	}
}
