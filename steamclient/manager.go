package steamclient

import (
	"context"
	"log/slog"

	"github.com/k64z/steamstacks/steamconfig"
)

// ReadyEvent fires once per (re)connect + successful login, immediately
// after the matching DisconnectEvent a prior connection produced (none,
// for the first connect of a run). Generation increments on every
// successful login and distinguishes which connection's state a caller
// should treat as current — e.g. the Trade Engine's snapshot survives
// reconnects, but anything keyed by session-id does not.
type ReadyEvent struct {
	Generation uint64
}

// SessionManager drives a Client through its full connect/login/reconnect
// lifecycle, turning steamclient's per-connection DisconnectEvent callback
// into an ordered (disconnect, ready) event stream for the rest of the
// application to key its own per-session state off of.
type SessionManager struct {
	client *Client
	cfg    *steamconfig.Config
	logger *slog.Logger
	login  LoginFunc

	// OnReady is invoked after every successful (re)connect + login.
	OnReady func(ReadyEvent)

	generation uint64
}

// NewSessionManager builds a SessionManager around an already-constructed
// Client. login is invoked after every successful Connect, including
// reconnects, to perform the actual authentication.
func NewSessionManager(client *Client, cfg *steamconfig.Config, login LoginFunc, opts ...func(*SessionManager)) *SessionManager {
	if cfg == nil {
		cfg = steamconfig.New()
	}
	m := &SessionManager{
		client: client,
		cfg:    cfg,
		logger: slog.Default(),
		login:  login,
	}
	for _, opt := range opts {
		opt(m)
	}

	prev := client.OnDisconnect
	client.OnDisconnect = func(evt *DisconnectEvent) {
		if prev != nil {
			prev(evt)
		}
		m.logger.Warn("session disconnected, reconnecting",
			"server_initiated", evt.ServerInitiated, "eresult", evt.EResult, "err", evt.Err)
		go m.reconnect(context.Background())
	}

	return m
}

// WithManagerLogger sets the structured logger used for reconnect diagnostics.
func WithManagerLogger(l *slog.Logger) func(*SessionManager) {
	return func(m *SessionManager) { m.logger = l }
}

// Run performs the initial Connect+login and blocks until ctx is canceled.
// Subsequent disconnects are handled in the background via OnDisconnect.
func (m *SessionManager) Run(ctx context.Context) error {
	if err := ReconnectLoop(ctx, m.client, m.cfg, m.login); err != nil {
		return err
	}
	m.fireReady()

	<-ctx.Done()
	return ctx.Err()
}

func (m *SessionManager) reconnect(ctx context.Context) {
	if err := ReconnectLoop(ctx, m.client, m.cfg, m.login); err != nil {
		m.logger.Error("reconnect loop gave up", "err", err)
		return
	}
	m.fireReady()
}

func (m *SessionManager) fireReady() {
	m.generation++
	if m.OnReady != nil {
		m.OnReady(ReadyEvent{Generation: m.generation})
	}
}
