// Package steamconfig holds the tunables shared by steamclient, steamsession,
// and steamtrade: poll intervals, reconnect backoff bounds, the handful of
// behavioral switches spec'd for the networking core, and the per-platform
// HTTP identity (user agent, website ID) steamsession presents to Steam. It
// follows the same shape as the other packages' option constructors: a
// private config struct, Option funcs, and defaults applied in New.
package steamconfig

import "time"

// PlatformKind selects which of Steam's login surfaces a session presents
// itself as — steamsession.Session.platformType maps onto one of these.
type PlatformKind int

const (
	PlatformWebBrowser PlatformKind = iota
	PlatformMobileApp
	PlatformSteamClient
)

// PlatformProfile is the HTTP identity a session presents for one
// PlatformKind: the user agent on every request, the website_id field sent
// with login/auth RPCs, and the language code used when none is configured.
type PlatformProfile struct {
	UserAgent    string
	WebsiteID    string
	LanguageCode uint32
}

// webBrowserUA and steamClientUA are the two user agents Steam's own
// clients send; mobileAppUA reuses the browser string since Steam's mobile
// app talks to steamcommunity.com through an embedded WebView.
const (
	webBrowserUA  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"
	steamClientUA = "Valve/Steam HTTP Client 1.0"
)

// platformProfiles maps each PlatformKind onto the identity SetHeaders
// should adopt. Unrecognized kinds fall back to PlatformWebBrowser in
// ProfileFor.
var platformProfiles = map[PlatformKind]PlatformProfile{
	PlatformWebBrowser:  {UserAgent: webBrowserUA, WebsiteID: "Community", LanguageCode: 0},
	PlatformMobileApp:   {UserAgent: webBrowserUA, WebsiteID: "Mobile", LanguageCode: 0},
	PlatformSteamClient: {UserAgent: steamClientUA, WebsiteID: "Client", LanguageCode: 0},
}

// ProfileFor returns the HTTP identity for kind, defaulting to the web
// browser profile for any kind this table doesn't recognize.
func ProfileFor(kind PlatformKind) PlatformProfile {
	if p, ok := platformProfiles[kind]; ok {
		return p
	}
	return platformProfiles[PlatformWebBrowser]
}

// Intent is a bitflag selecting which asynchronous event streams a Client
// populates. Unset intents still parse incoming packets but drop the
// derived events on the floor instead of firing callbacks.
type Intent uint32

const (
	IntentFriends  Intent = 1 << 0
	IntentChat     Intent = 1 << 1
	IntentPersonas Intent = 1 << 2
	IntentTrades   Intent = 1 << 3

	IntentAll = IntentFriends | IntentChat | IntentPersonas | IntentTrades
)

// Has reports whether i includes all the bits in other.
func (i Intent) Has(other Intent) bool {
	return i&other == other
}

// Config collects the configuration options enumerated for the networking
// core. Zero value is meaningless; always construct via New.
type Config struct {
	PollInterval    time.Duration
	PollIntervalMax time.Duration

	ReconnectBase time.Duration
	ReconnectCap  time.Duration

	KickOthersOnReconnect  bool
	ReplayHistoricalTrades bool

	CMCachePath string
	SentryPath  string

	Intents Intent
}

type Option func(*Config)

// WithPollInterval sets the baseline trade-poll interval. Spec floor is 1s;
// values below that are clamped in New.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) { c.PollInterval = d }
}

// WithPollIntervalMax sets the ceiling the adaptive-backoff poll loop grows
// toward on repeated empty polls.
func WithPollIntervalMax(d time.Duration) Option {
	return func(c *Config) { c.PollIntervalMax = d }
}

// WithReconnectBackoff sets the base and cap for the reconnect loop's
// decorrelated-jitter backoff.
func WithReconnectBackoff(base, cap time.Duration) Option {
	return func(c *Config) {
		c.ReconnectBase = base
		c.ReconnectCap = cap
	}
}

// WithKickOthersOnReconnect controls whether the first LoggedInElsewhere
// reconnect attempt kicks the other session before surrendering.
func WithKickOthersOnReconnect(v bool) Option {
	return func(c *Config) { c.KickOthersOnReconnect = v }
}

// WithReplayHistoricalTrades controls whether the trade engine's first poll
// after startup emits events for offers that already existed, or treats
// them as a silent baseline.
func WithReplayHistoricalTrades(v bool) Option {
	return func(c *Config) { c.ReplayHistoricalTrades = v }
}

// WithCMCachePath sets the path the CM directory persists its discovered
// server list to between runs. Empty disables persistence.
func WithCMCachePath(path string) Option {
	return func(c *Config) { c.CMCachePath = path }
}

// WithSentryPath sets the path the classic login path reads/writes its
// sentry file from/to.
func WithSentryPath(path string) Option {
	return func(c *Config) { c.SentryPath = path }
}

// WithIntents sets which event streams are populated.
func WithIntents(i Intent) Option {
	return func(c *Config) { c.Intents = i }
}

// New builds a Config with spec-default values, then applies opts.
func New(opts ...Option) *Config {
	c := &Config{
		PollInterval:           5 * time.Second,
		PollIntervalMax:        30 * time.Second,
		ReconnectBase:          1 * time.Second,
		ReconnectCap:           60 * time.Second,
		KickOthersOnReconnect:  true,
		ReplayHistoricalTrades: false,
		SentryPath:             "sentry.bin",
		Intents:                IntentAll,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.PollInterval < time.Second {
		c.PollInterval = time.Second
	}
	if c.PollIntervalMax < c.PollInterval {
		c.PollIntervalMax = c.PollInterval
	}

	return c
}

// Has reports whether the config's Intents include i.
func (c *Config) Has(i Intent) bool {
	return c.Intents&i != 0
}
