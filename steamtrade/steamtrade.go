// Package steamtrade polls the IEconService trade-offer feed and turns the
// raw snapshot diff into an ordered, exactly-once event stream, following
// the same callback-field shape steamclient uses for its own event bus
// (OnPacket, OnFriendMessage, ...): a struct of Option funcs building a
// config, and a Run loop that owns all mutable state behind a single mutex.
package steamtrade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/k64z/steamstacks/steamapi"
	"github.com/k64z/steamstacks/steamcommunity"
	"github.com/k64z/steamstacks/steamconfig"
	"github.com/k64z/steamstacks/steamerrors"
)

// EventKind identifies which transition an Event describes.
type EventKind int

const (
	EventReceive EventKind = iota
	EventSend
	EventAccept
	EventDecline
	EventCancel
	EventExpire
	EventCounter
)

func (k EventKind) String() string {
	switch k {
	case EventReceive:
		return "trade_receive"
	case EventSend:
		return "trade_send"
	case EventAccept:
		return "trade_accept"
	case EventDecline:
		return "trade_decline"
	case EventCancel:
		return "trade_cancel"
	case EventExpire:
		return "trade_expire"
	case EventCounter:
		return "trade_counter"
	default:
		return "trade_unknown"
	}
}

// Event is one diff-derived transition. Before is only populated for
// EventCounter, where it carries the Countered predecessor offer.
type Event struct {
	Kind   EventKind
	Offer  steamapi.TradeOffer
	Before *steamapi.TradeOffer
}

// Engine polls GetTradeOffers, diffs against the last-seen snapshot, and
// emits the events described in the trade-engine algorithm: new offers
// classified by IsOurOffer, state transitions mapped 1:1 to event kinds,
// and Countered/new-offer pairs collapsed into a single trade_counter.
//
// All mutable state (snapshot, lastPollTime, interval) is owned by the Run
// goroutine and guarded by mu so Accept/Decline/Cancel/Counter, which read
// the snapshot to reject already-terminal offers, are safe to call from any
// goroutine while Run is active.
type Engine struct {
	api       *steamapi.API
	community *steamcommunity.Community
	identity  []byte
	cfg       *steamconfig.Config
	logger    *slog.Logger

	// OnEvent is invoked for every emitted event, in wire/diff order, from
	// the Run goroutine. It must not block for long; slow consumers should
	// hand off to their own queue.
	OnEvent func(Event)

	mu           sync.Mutex
	snapshot     map[string]steamapi.TradeOffer
	lastPollTime int64
	bootstrapped bool
	interval     time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for poll-loop diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventHandler sets the callback invoked for every emitted event.
func WithEventHandler(fn func(Event)) Option {
	return func(e *Engine) { e.OnEvent = fn }
}

// New builds an Engine that polls api and resolves confirmations through
// community using identitySecret, tuned by cfg (poll interval bounds and
// the replay-historical-trades startup flag).
func New(api *steamapi.API, community *steamcommunity.Community, identitySecret []byte, cfg *steamconfig.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = steamconfig.New()
	}
	e := &Engine{
		api:       api,
		community: community,
		identity:  identitySecret,
		cfg:       cfg,
		logger:    slog.Default(),
		snapshot:  make(map[string]steamapi.TradeOffer),
		interval:  cfg.PollInterval,
		// ReplayHistoricalTrades=false means the first poll seeds the
		// snapshot silently; the engine only emits transitions observed
		// after that baseline. bootstrapped tracks whether the baseline
		// poll has happened yet.
		bootstrapped: cfg.ReplayHistoricalTrades,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run polls until ctx is canceled, sleeping e.interval between polls and
// doubling it (capped at cfg.PollIntervalMax) on each consecutive poll that
// produces no events. A non-empty poll resets the interval to the base.
func (e *Engine) Run(ctx context.Context) error {
	for {
		events, err := e.Poll(ctx)
		if err != nil {
			e.logger.Error("trade poll failed", "err", err)
		} else if len(events) == 0 {
			e.mu.Lock()
			if next := e.interval * 2; next <= e.cfg.PollIntervalMax {
				e.interval = next
			} else {
				e.interval = e.cfg.PollIntervalMax
			}
			e.mu.Unlock()
		} else {
			e.mu.Lock()
			e.interval = e.cfg.PollInterval
			e.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.currentInterval()):
		}
	}
}

func (e *Engine) currentInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// Poll issues one GetTradeOffers call, diffs the response against the
// last-known snapshot, updates engine state, and returns the events
// produced by the diff (possibly empty). It is safe to call directly
// instead of via Run, e.g. from tests or an externally driven scheduler.
func (e *Engine) Poll(ctx context.Context) ([]Event, error) {
	e.mu.Lock()
	cutoff := e.lastPollTime
	e.mu.Unlock()

	const marginSeconds = 60
	resp, err := e.api.GetTradeOffers(ctx, steamapi.GetTradeOffersOptions{
		GetSentOffers:        true,
		GetReceivedOffers:    true,
		ActiveOnly:           false,
		TimeHistoricalCutoff: max64(0, cutoff-marginSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("steamtrade: poll: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := make(map[string]steamapi.TradeOffer, len(resp.SentOffers)+len(resp.ReceivedOffers))
	for _, o := range resp.SentOffers {
		current[o.ID] = o
	}
	for _, o := range resp.ReceivedOffers {
		current[o.ID] = o
	}

	events := e.diff(current)

	var newest int64
	for _, o := range current {
		if o.TimeUpdated > newest {
			newest = o.TimeUpdated
		}
	}
	if newest > e.lastPollTime {
		e.lastPollTime = newest
	}
	e.snapshot = current
	e.bootstrapped = true

	return events, nil
}

// diff compares current against e.snapshot and returns the events implied
// by the difference. Must be called with e.mu held.
func (e *Engine) diff(current map[string]steamapi.TradeOffer) []Event {
	var events []Event
	emit := func(ev Event) {
		events = append(events, ev)
		if e.OnEvent != nil {
			e.OnEvent(ev)
		}
	}

	for id, offer := range current {
		prev, existed := e.snapshot[id]

		if !existed {
			if !e.bootstrapped {
				continue
			}
			// A brand new offer that names a Countered predecessor pairs
			// with it: emit trade_counter first, then classify the new
			// offer itself as a normal receive/send, matching the order
			// Steam's own client surfaces both notifications in.
			if offer.TradeOfferIDCountered != "" {
				if before, ok := e.snapshot[offer.TradeOfferIDCountered]; ok {
					emit(Event{Kind: EventCounter, Offer: offer, Before: &before})
				}
			}
			if offer.IsOurOffer {
				emit(Event{Kind: EventSend, Offer: offer})
			} else {
				emit(Event{Kind: EventReceive, Offer: offer})
			}
			continue
		}

		if prev.State == offer.State {
			continue
		}

		if offer.State == steamapi.ETradeOfferStateCountered {
			// No standalone event: the superseding offer's
			// TradeOfferIDCountered pairing (above) carries trade_counter.
			continue
		}

		if kind, ok := terminalEventFor(offer.State); ok {
			emit(Event{Kind: kind, Offer: offer})
		}
	}

	// Offers present in the snapshot but missing from the response: treat
	// as expired only once their own expiry has actually passed, otherwise
	// this is a poll-window artifact and the offer is dropped silently
	// (it will reappear, or not, on the next poll; either way it is not
	// re-added to the snapshot here since current is authoritative).
	now := time.Now().Unix()
	for id, prev := range e.snapshot {
		if _, stillPresent := current[id]; stillPresent {
			continue
		}
		if prev.IsTerminal() {
			continue
		}
		if prev.ExpirationTime > 0 && prev.ExpirationTime <= now {
			emit(Event{Kind: EventExpire, Offer: prev})
		}
	}

	return events
}

func terminalEventFor(state steamapi.ETradeOfferState) (EventKind, bool) {
	switch state {
	case steamapi.ETradeOfferStateAccepted:
		return EventAccept, true
	case steamapi.ETradeOfferStateDeclined:
		return EventDecline, true
	case steamapi.ETradeOfferStateCanceled, steamapi.ETradeOfferStateCanceledBySecondFactor:
		return EventCancel, true
	case steamapi.ETradeOfferStateExpired:
		return EventExpire, true
	default:
		return 0, false
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// errAlreadyClosed reports whether offerID is already snapshotted in a
// terminal state, for the idempotent Accept/Decline/Cancel wrappers.
func (e *Engine) errAlreadyClosed(offerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if o, ok := e.snapshot[offerID]; ok && o.IsTerminal() {
		return fmt.Errorf("steamtrade: offer %s: %w", offerID, steamerrors.ErrAlreadyClosed)
	}
	return nil
}
