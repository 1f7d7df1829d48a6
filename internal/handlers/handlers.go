// Package handlers implements the HTTP surface of the buybox service.
package handlers

import (
	"context"

	"github.com/pricetrack/buybox-service/internal/database"
	"github.com/pricetrack/buybox-service/internal/pricing"
	"github.com/pricetrack/buybox-service/internal/refresh"
	"github.com/pricetrack/buybox-service/internal/sink"
	"github.com/pricetrack/buybox-service/internal/store"
	"github.com/pricetrack/buybox-service/internal/telemetry"
)

// ChangeLister reads persisted price movements. Nil when no database is
// configured.
type ChangeLister func(ctx context.Context, filter database.PriceChangeFilter) ([]database.PriceChangeRow, error)

// Application state shared by all handlers (initialized at startup)
var (
	snapshot       *store.Snapshot
	updater        *pricing.Updater
	activationSink *sink.Client
	refresher      *refresh.Refresher
	metrics        *telemetry.MetricsRecorder
	listChanges    ChangeLister
)

// Init wires the handler package to its collaborators.
// This should be called during application startup.
func Init(s *store.Snapshot, u *pricing.Updater, act *sink.Client, r *refresh.Refresher, m *telemetry.MetricsRecorder, changes ChangeLister) {
	snapshot = s
	updater = u
	activationSink = act
	refresher = r
	metrics = m
	listChanges = changes
}
