package pricing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pricetrack/buybox-service/internal/offer"
	"github.com/pricetrack/buybox-service/internal/sink"
	"github.com/pricetrack/buybox-service/internal/store"
)

// UpdateResult is the discriminated outcome of one optimistic floor-price
// edit. On failure the snapshot has already been rolled back and Previous
// holds the value that was restored.
type UpdateResult struct {
	Key      offer.Key
	Applied  *float64
	Previous *float64
	Err      error
}

// Ok reports whether the edit persisted.
func (r UpdateResult) Ok() bool { return r.Err == nil }

// PricingSink is the persistence boundary for accepted prices.
type PricingSink interface {
	UpdatePricing(ctx context.Context, updates []sink.PricingUpdate) error
}

// Updater applies floor-price edits optimistically: the in-memory snapshot is
// mutated immediately, the sink call follows, and a sink failure restores the
// previous value. Concurrent edits to distinct listing keys are independent;
// same-key edits are last-writer-wins.
type Updater struct {
	snapshot *store.Snapshot
	sink     PricingSink
	logger   zerolog.Logger
}

// NewUpdater wires the optimistic updater.
func NewUpdater(snapshot *store.Snapshot, s PricingSink, logger zerolog.Logger) *Updater {
	return &Updater{
		snapshot: snapshot,
		sink:     s,
		logger:   logger.With().Str("component", "pricing_updater").Logger(),
	}
}

// SetFloorPrice updates the floor price for one listing. buyboxPrice, when
// non-nil, is the accepted suggestion forwarded alongside the floor.
func (u *Updater) SetFloorPrice(ctx context.Context, key offer.Key, floor, buyboxPrice *float64) UpdateResult {
	previous, matched := u.snapshot.SetFloorPrice(key, floor)
	if !matched {
		u.logger.Debug().
			Str("product", key.ProductKey).
			Str("seller", key.SellerID).
			Str("marketplace", key.Marketplace).
			Msg("Floor price edit for unknown listing, forwarding without local state")
	}

	err := u.sink.UpdatePricing(ctx, []sink.PricingUpdate{{
		ProductKey:  key.ProductKey,
		SellerID:    key.SellerID,
		Marketplace: key.Marketplace,
		FloorPrice:  floor,
		BuyboxPrice: buyboxPrice,
	}})
	if err != nil {
		if matched {
			u.snapshot.SetFloorPrice(key, previous)
		}
		u.logger.Warn().Err(err).
			Str("product", key.ProductKey).
			Str("seller", key.SellerID).
			Msg("Pricing update rejected, rolled back")
		return UpdateResult{Key: key, Applied: floor, Previous: previous, Err: err}
	}

	return UpdateResult{Key: key, Applied: floor, Previous: previous}
}
