package steamapi

import (
	"errors"
	"net/http"

	"github.com/k64z/steamstacks/steamratelimit"
)

const (
	defaultRateLimit = 5.0
	defaultRateBurst = 10.0
)

type API struct {
	httpClient  *http.Client
	accessToken string
}

// SetAccessToken stores the bearer token used for IEconService calls that
// require it (GetTradeOffer, GetTradeOffers). Sessions call this after a
// successful login or token refresh.
func (a *API) SetAccessToken(token string) {
	a.accessToken = token
}

type config struct {
	httpClient *http.Client
}

type Option func(options *config) error

func WithHTTPClient(httpClient *http.Client) Option {
	return func(options *config) error {
		if httpClient == nil {
			return errors.New("httpClient should be non-nil")
		}
		options.httpClient = httpClient
		return nil
	}
}

func New(opts ...Option) (*API, error) {
	var cfg config
	for _, opt := range opts {
		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	a := &API{}

	if cfg.httpClient != nil {
		a.httpClient = cfg.httpClient
	} else {
		a.httpClient = &http.Client{
			Transport: steamratelimit.Wrap(nil, steamratelimit.New(defaultRateLimit, defaultRateBurst)),
		}
	}

	return a, nil
}
