package steamcommunity

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/k64z/steamstacks/steamid"
	"github.com/k64z/steamstacks/steamratelimit"
)

const (
	defaultRateLimit = 5.0
	defaultRateBurst = 10.0
)

type Community struct {
	httpClient *http.Client
	sessionID  string
	steamID    steamid.SteamID
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

func New(opts ...Option) (*Community, error) {
	var cfg config
	for _, opt := range opts {
		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	c := &Community{}

	if cfg.httpClient != nil {
		c.httpClient = cfg.httpClient
	} else {
		c.httpClient = &http.Client{
			Transport: steamratelimit.Wrap(nil, steamratelimit.New(defaultRateLimit, defaultRateBurst)),
		}
	}

	var err error
	c.sessionID, err = extractSessionID(c.httpClient.Jar)
	if err != nil {
		return nil, fmt.Errorf("extract sessionID: %w", err)
	}

	c.steamID, err = extractSteamID(c.httpClient.Jar)
	if err != nil {
		return nil, fmt.Errorf("extract steamID: %w", err)
	}

	return c, nil
}

// ensureInit re-derives sessionID/steamID from the cookie jar if they
// haven't been populated yet, covering the case where Community was
// constructed before the jar held a logged-in session's cookies.
func (c *Community) ensureInit() error {
	if c.sessionID != "" && c.steamID != 0 {
		return nil
	}

	sessionID, err := extractSessionID(c.httpClient.Jar)
	if err != nil {
		return fmt.Errorf("extract sessionID: %w", err)
	}

	steamID, err := extractSteamID(c.httpClient.Jar)
	if err != nil {
		return fmt.Errorf("extract steamID: %w", err)
	}

	c.sessionID = sessionID
	c.steamID = steamID
	return nil
}

func extractSessionID(jar http.CookieJar) (string, error) {
	u, _ := url.Parse("https://steamcommunity.com")
	cookies := jar.Cookies(u)
	slog.Debug("extracted cookies", "cookies", cookies)

	for _, cookie := range cookies {
		if cookie.Name == "sessionid" {
			return cookie.Value, nil
		}
	}

	return "", errors.New("sessionID is missing")
}

func extractSteamID(jar http.CookieJar) (steamid.SteamID, error) {
	u, _ := url.Parse("https://steamcommunity.com")
	cookies := jar.Cookies(u)

	slog.Debug("extracted cookies", "cookies", cookies)

	for _, cookie := range cookies {
		if cookie.Name == "steamLoginSecure" {
			t := strings.Split(cookie.Value, "%7C%7C") // URL encoded "||"
			if len(t) < 2 {
				return steamid.SteamID(0), errors.New("unsplittable steamLoginSecure cookie")
			}

			sid, err := steamid.FromString(t[0])
			if err != nil {
				return steamid.SteamID(0), fmt.Errorf("parse SteamID: %w", err)
			}

			return sid, nil
		}
	}

	return steamid.SteamID(0), errors.New("missing steamLoginSecure cookie")
}
