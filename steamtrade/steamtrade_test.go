package steamtrade

import (
	"testing"

	"github.com/k64z/steamstacks/steamapi"
	"github.com/k64z/steamstacks/steamconfig"
)

func newTestEngine(bootstrapped bool) *Engine {
	return &Engine{
		snapshot:     make(map[string]steamapi.TradeOffer),
		cfg:          steamconfig.New(),
		bootstrapped: bootstrapped,
	}
}

func kindsOf(events []Event) []EventKind {
	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestDiffNewOfferBootstrapSuppression(t *testing.T) {
	e := newTestEngine(false)
	current := map[string]steamapi.TradeOffer{
		"1": {ID: "1", State: steamapi.ETradeOfferStateActive, IsOurOffer: false},
	}

	events := e.diff(current)
	if len(events) != 0 {
		t.Fatalf("diff() on cold-start (replay_historical=false) = %v; want no events", kindsOf(events))
	}
}

func TestDiffNewOfferClassification(t *testing.T) {
	cases := map[string]struct {
		isOurOffer bool
		want       EventKind
	}{
		"received offer": {isOurOffer: false, want: EventReceive},
		"sent offer":      {isOurOffer: true, want: EventSend},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(true)
			current := map[string]steamapi.TradeOffer{
				"1": {ID: "1", State: steamapi.ETradeOfferStateActive, IsOurOffer: tc.isOurOffer},
			}

			events := e.diff(current)
			if len(events) != 1 || events[0].Kind != tc.want {
				t.Fatalf("diff() = %v; want [%v]", kindsOf(events), tc.want)
			}
		})
	}
}

func TestDiffStateTransitionExactlyOnce(t *testing.T) {
	e := newTestEngine(true)
	e.snapshot["1"] = steamapi.TradeOffer{ID: "1", State: steamapi.ETradeOfferStateActive}

	accepted := map[string]steamapi.TradeOffer{
		"1": {ID: "1", State: steamapi.ETradeOfferStateAccepted},
	}

	events := e.diff(accepted)
	if len(events) != 1 || events[0].Kind != EventAccept {
		t.Fatalf("first diff() = %v; want [trade_accept]", kindsOf(events))
	}

	// Replaying the identical response against the now-updated snapshot
	// must not re-emit the transition.
	e.snapshot = accepted
	events = e.diff(accepted)
	if len(events) != 0 {
		t.Fatalf("replayed diff() = %v; want no events (exactly-once)", kindsOf(events))
	}
}

func TestDiffCounterPairing(t *testing.T) {
	e := newTestEngine(true)
	e.snapshot["A"] = steamapi.TradeOffer{ID: "A", State: steamapi.ETradeOfferStateActive, IsOurOffer: false}

	current := map[string]steamapi.TradeOffer{
		"A": {ID: "A", State: steamapi.ETradeOfferStateCountered, IsOurOffer: false},
		"B": {ID: "B", State: steamapi.ETradeOfferStateActive, IsOurOffer: false, TradeOfferIDCountered: "A"},
	}

	events := e.diff(current)
	kinds := kindsOf(events)
	if len(kinds) != 2 || kinds[0] != EventCounter || kinds[1] != EventReceive {
		t.Fatalf("diff() = %v; want [trade_counter trade_receive]", kinds)
	}
	if events[0].Before == nil || events[0].Before.ID != "A" {
		t.Fatalf("trade_counter event missing Before=A")
	}
	if events[0].Offer.ID != "B" {
		t.Fatalf("trade_counter event Offer = %s; want B", events[0].Offer.ID)
	}
}

func TestDiffMissingOfferExpiryGate(t *testing.T) {
	e := newTestEngine(true)
	past := int64(1000)
	e.snapshot["1"] = steamapi.TradeOffer{ID: "1", State: steamapi.ETradeOfferStateActive, ExpirationTime: past}

	// Offer vanished from the response; since its expiry has passed, it's
	// treated as expired rather than a poll-window artifact.
	events := e.diff(map[string]steamapi.TradeOffer{})
	if len(events) != 1 || events[0].Kind != EventExpire {
		t.Fatalf("diff() = %v; want [trade_expire]", kindsOf(events))
	}
}

func TestDiffMissingOfferNotYetExpiredIsArtifact(t *testing.T) {
	e := newTestEngine(true)
	future := int64(1 << 62) // far future, never "now"
	e.snapshot["1"] = steamapi.TradeOffer{ID: "1", State: steamapi.ETradeOfferStateActive, ExpirationTime: future}

	events := e.diff(map[string]steamapi.TradeOffer{})
	if len(events) != 0 {
		t.Fatalf("diff() = %v; want no events for a not-yet-expired poll-window artifact", kindsOf(events))
	}
}

func TestTradeOfferIsGift(t *testing.T) {
	cases := map[string]struct {
		offer steamapi.TradeOffer
		want  bool
	}{
		"two-sided": {
			offer: steamapi.TradeOffer{
				ItemsToGive:    []steamapi.TradeAsset{{AssetID: "1"}},
				ItemsToReceive: []steamapi.TradeAsset{{AssetID: "2"}},
			},
			want: false,
		},
		"gift to partner": {
			offer: steamapi.TradeOffer{
				ItemsToGive:    []steamapi.TradeAsset{{AssetID: "1"}},
				ItemsToReceive: nil,
			},
			want: true,
		},
		"gift from partner": {
			offer: steamapi.TradeOffer{
				ItemsToGive:    nil,
				ItemsToReceive: []steamapi.TradeAsset{{AssetID: "1"}},
			},
			want: true,
		},
		"empty": {
			offer: steamapi.TradeOffer{},
			want:  false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.offer.IsGift(); got != tc.want {
				t.Errorf("IsGift() = %v; want %v", got, tc.want)
			}
		})
	}
}
