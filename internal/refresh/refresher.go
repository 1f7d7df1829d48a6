// Package refresh periodically reloads the upstream feeds into the shared
// snapshot and records price movements between consecutive loads.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pricetrack/buybox-service/internal/offer"
	"github.com/pricetrack/buybox-service/internal/store"
	"github.com/pricetrack/buybox-service/internal/telemetry"
)

// Fetcher retrieves both upstream feeds.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]offer.RawOffer, []offer.URLRecord, error)
}

// ChangeRecorder persists detected price movements. Implementations may be
// backed by Postgres or be a no-op when no database is configured.
type ChangeRecorder interface {
	RecordPriceChanges(ctx context.Context, changes []offer.PriceChange) error
}

// Refresher loads the feeds on demand and on a cron schedule.
type Refresher struct {
	fetcher  Fetcher
	snapshot *store.Snapshot
	recorder ChangeRecorder
	metrics  *telemetry.MetricsRecorder
	logger   zerolog.Logger
	cron     *cron.Cron
	timeout  time.Duration
}

// New creates a refresher. recorder may be nil when change persistence is
// disabled.
func New(fetcher Fetcher, snapshot *store.Snapshot, recorder ChangeRecorder, metrics *telemetry.MetricsRecorder, logger zerolog.Logger, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Refresher{
		fetcher:  fetcher,
		snapshot: snapshot,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger.With().Str("component", "refresher").Logger(),
		timeout:  timeout,
	}
}

// Run performs one full refresh: fetch, normalize, diff against the previous
// snapshot, install, and record changes. It returns the number of offers
// loaded.
func (r *Refresher) Run(ctx context.Context) (int, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raws, urls, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		r.metrics.RecordRefresh(time.Since(start), 0, err)
		r.logger.Error().Err(err).Msg("feed refresh failed")
		return 0, err
	}

	offers := offer.NormalizeAll(raws, urls)
	changes := detectChanges(r.snapshot.Offers(), offers)
	r.snapshot.Replace(offers, urls)

	r.metrics.RecordRefresh(time.Since(start), len(offers), nil)
	r.metrics.RecordPriceChanges(len(changes))
	r.logger.Info().
		Int("offers", len(offers)).
		Int("raw", len(raws)).
		Int("price_changes", len(changes)).
		Dur("took", time.Since(start)).
		Msg("feed refresh complete")

	if r.recorder != nil && len(changes) > 0 {
		if err := r.recorder.RecordPriceChanges(ctx, changes); err != nil {
			// The snapshot is already installed; losing the change log does
			// not invalidate the refresh.
			r.logger.Warn().Err(err).Msg("failed to persist price changes")
		}
	}
	return len(offers), nil
}

// Start schedules periodic refreshes using a cron expression and returns a
// stop function that waits for a running job to finish.
func (r *Refresher) Start(schedule string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := r.Run(context.Background()); err != nil {
			r.logger.Warn().Err(err).Msg("scheduled refresh failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	r.cron = c
	r.logger.Info().Str("schedule", schedule).Msg("refresh schedule started")

	return func() {
		<-c.Stop().Done()
	}, nil
}

// detectChanges compares consecutive snapshots per listing key and reports
// listings whose price moved. New and disappeared listings are not changes.
func detectChanges(previous, current []offer.Offer) []offer.PriceChange {
	if len(previous) == 0 {
		return nil
	}

	prevByKey := make(map[offer.Key]offer.Offer, len(previous))
	for _, o := range previous {
		prevByKey[o.ListingKey()] = o
	}

	now := time.Now()
	var changes []offer.PriceChange
	for _, o := range current {
		prev, ok := prevByKey[o.ListingKey()]
		if !ok || prev.Price == o.Price {
			continue
		}
		changes = append(changes, offer.PriceChange{
			ProductKey:  o.ProductKey,
			Name:        o.Name,
			SellerID:    o.SellerID,
			SellerName:  o.SellerName,
			Marketplace: o.Marketplace,
			OldPrice:    prev.Price,
			NewPrice:    o.Price,
			ObservedAt:  now,
		})
	}
	return changes
}
