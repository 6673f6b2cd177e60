package steamclient

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/k64z/steamstacks/steamconfig"
	"github.com/k64z/steamstacks/steamerrors"
)

// DisconnectEvent describes why the client disconnected.
type DisconnectEvent struct {
	// Err is the underlying transport error (nil for server-initiated logoff).
	Err error
	// ServerInitiated is true when the server sent EMsgClientLoggedOff.
	ServerInitiated bool
	// EResult is the server's reason code (only meaningful when ServerInitiated is true).
	EResult int32
}

// WithDisconnectHandler sets a callback that fires when the connection drops.
func WithDisconnectHandler(fn func(*DisconnectEvent)) Option {
	return func(c *config) { c.onDisconnect = fn }
}

// fireDisconnect invokes the OnDisconnect callback at most once per connection lifecycle.
// The callback runs in a new goroutine so the caller can safely call Reconnect.
func (c *Client) fireDisconnect(evt *DisconnectEvent) {
	c.disconnectOnce.Do(func() {
		c.mu.Lock()
		c.loggedIn = false
		c.mu.Unlock()
		if c.OnDisconnect != nil {
			go c.OnDisconnect(evt)
		}
	})
}

// Reconnect tears down the existing connection and establishes a new one.
// After Reconnect returns successfully the caller should call Login again.
func (c *Client) Reconnect(ctx context.Context) error {
	// Signal goroutines to stop (safe if already closed).
	c.closeOnce.Do(func() { close(c.done) })

	// Close transport to unblock pending I/O.
	if c.conn != nil {
		c.conn.Close()
	}

	// Wait for readLoop + heartbeatLoop to finish.
	c.wg.Wait()

	// Reset sync primitives and correlation state for the new connection
	// cycle; any job awaiting a response from the old connection has
	// already been unblocked by the close(c.done) above.
	c.closeOnce = sync.Once{}
	c.disconnectOnce = sync.Once{}
	c.mu.Lock()
	c.loggedIn = false
	c.pendingJobs = nil
	c.mu.Unlock()

	// Establish new connection (new c.done, new readLoop).
	return c.Connect(ctx)
}

// LoginFunc re-authenticates a freshly (re)connected Client. Callers supply
// this as a closure over whatever credentials/refresh-token the session
// holds, since Reconnect itself only re-establishes the transport.
type LoginFunc func(ctx context.Context, c *Client) error

// ReconnectLoop retries Connect+login with exponential backoff and
// decorrelated jitter (base cfg.ReconnectBase, cap cfg.ReconnectCap) until
// login succeeds or ctx is canceled. It implements the policy from the
// session/reconnect spec:
//
//   - TryAnotherCM: the failing endpoint is already blacklisted by Login
//     itself; ReconnectLoop retries immediately, no backoff.
//   - LoggedInElsewhere: if cfg.KickOthersOnReconnect and this is the first
//     such result seen, retry once (the retry itself kicks the other
//     session off); on a second LoggedInElsewhere, surrender and return
//     the error.
//   - InvalidPassword, Banned: fatal, returned immediately — the
//     credentials changed or the account is banned, and blind retry cannot
//     succeed.
//   - Any other error: backoff and retry.
func ReconnectLoop(ctx context.Context, c *Client, cfg *steamconfig.Config, login LoginFunc) error {
	if cfg == nil {
		cfg = steamconfig.New()
	}

	backoff := cfg.ReconnectBase
	kickAttempted := false

	for {
		err := func() error {
			if err := c.Connect(ctx); err != nil {
				return err
			}
			return login(ctx, c)
		}()

		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, steamerrors.ErrTryAnotherCM):
			continue // already blacklisted by Login; retry without delay
		case errors.Is(err, steamerrors.ErrLoggedInElsewhere):
			if cfg.KickOthersOnReconnect && !kickAttempted {
				kickAttempted = true
				continue
			}
			return err
		case errors.Is(err, steamerrors.ErrInvalidPassword), errors.Is(err, steamerrors.ErrBanned):
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff, cfg.ReconnectBase, cfg.ReconnectCap)
	}
}

// nextBackoff applies decorrelated jitter: the next delay is a random
// value in [base, prev*3], capped at max. This spreads out reconnect
// storms better than plain exponential backoff with a fixed jitter ratio.
func nextBackoff(prev, base, max time.Duration) time.Duration {
	upper := prev * 3
	if upper > max {
		upper = max
	}
	if upper <= base {
		return base
	}
	span := upper - base
	return base + time.Duration(rand.Int64N(int64(span)))
}
