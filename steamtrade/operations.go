package steamtrade

import (
	"context"
	"fmt"

	"github.com/k64z/steamstacks/steamapi"
	"github.com/k64z/steamstacks/steamcommunity"
	"github.com/k64z/steamstacks/steamerrors"
	"github.com/k64z/steamstacks/steamid"
)

// individualInstance is the SteamID instance field Steam uses for a
// regular desktop/mobile account, the only kind a trade partner can be.
const individualInstance = 1

func partnerSteamID(accountID uint32) steamid.SteamID {
	return steamid.SteamID(0).
		SetUniverse(int32(steamid.EUniversePublic)).
		SetType(int32(steamid.EAccountTypeIndividual)).
		SetInstance(individualInstance).
		SetAccountID(accountID)
}

// Accept posts the web accept endpoint for offer, then, if Steam requires
// mobile confirmation, looks up and resolves the matching confirmation.
// Calling Accept on an offer already snapshotted as terminal returns
// ErrAlreadyClosed without issuing any request.
func (e *Engine) Accept(ctx context.Context, offer steamapi.TradeOffer) error {
	if err := e.errAlreadyClosed(offer.ID); err != nil {
		return err
	}

	resp, err := e.community.AcceptTradeOffer(ctx, offer.ID, partnerSteamID(offer.PartnerAccountID))
	if err != nil {
		return fmt.Errorf("steamtrade: accept %s: %w", offer.ID, err)
	}

	if !resp.NeedsConfirmation {
		return nil
	}
	if len(e.identity) == 0 {
		return fmt.Errorf("steamtrade: accept %s: needs mobile confirmation but no identity secret configured", offer.ID)
	}

	conf, err := e.community.MatchForTrade(ctx, e.identity, offer.ID)
	if err != nil {
		return fmt.Errorf("steamtrade: accept %s: find confirmation: %w", offer.ID, err)
	}
	if conf == nil {
		return fmt.Errorf("steamtrade: accept %s: %w", offer.ID, steamerrors.ErrConfirmationNotFound)
	}

	if err := e.community.AcceptConfirmation(ctx, *conf, e.identity); err != nil {
		return fmt.Errorf("steamtrade: accept %s: confirm: %w", offer.ID, err)
	}

	return nil
}

// Decline posts the web decline endpoint for offerID. Idempotent: a
// terminal offer returns ErrAlreadyClosed without a request.
func (e *Engine) Decline(ctx context.Context, offerID string) error {
	if err := e.errAlreadyClosed(offerID); err != nil {
		return err
	}
	if err := e.community.DeclineTradeOffer(ctx, offerID); err != nil {
		return fmt.Errorf("steamtrade: decline %s: %w", offerID, err)
	}
	return nil
}

// Cancel posts the web cancel endpoint for offerID. Idempotent: a terminal
// offer returns ErrAlreadyClosed without a request.
func (e *Engine) Cancel(ctx context.Context, offerID string) error {
	if err := e.errAlreadyClosed(offerID); err != nil {
		return err
	}
	if err := e.community.CancelTradeOffer(ctx, offerID); err != nil {
		return fmt.Errorf("steamtrade: cancel %s: %w", offerID, err)
	}
	return nil
}

// Counter sends a fresh offer to the same partner carrying itemsToGive and
// itemsToReceive. The request does not name offer as the one being
// countered: offer is neither cancelled nor linked to the new offer, so the
// engine's next poll sees the new offer as a plain trade_send, not a
// trade_counter pair.
func (e *Engine) Counter(ctx context.Context, offer steamapi.TradeOffer, itemsToGive, itemsToReceive []steamapi.TradeAsset, message string) (*steamcommunity.SendTradeOfferResponse, error) {
	if err := e.errAlreadyClosed(offer.ID); err != nil {
		return nil, err
	}

	resp, err := e.community.SendTradeOffer(ctx, steamcommunity.SendTradeOfferOptions{
		Partner:        partnerSteamID(offer.PartnerAccountID),
		Message:        message,
		ItemsToGive:    itemsToGive,
		ItemsToReceive: itemsToReceive,
	})
	if err != nil {
		return nil, fmt.Errorf("steamtrade: counter %s: %w", offer.ID, err)
	}
	return resp, nil
}
