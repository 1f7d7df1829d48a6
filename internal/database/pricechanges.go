package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pricetrack/buybox-service/internal/offer"
)

// PriceChangeRow is a persisted price movement.
type PriceChangeRow struct {
	ID          int64     `json:"id"`
	ProductKey  string    `json:"ean"`
	SellerID    string    `json:"sellerId"`
	Marketplace string    `json:"marketplace"`
	OldPrice    float64   `json:"oldPrice"`
	NewPrice    float64   `json:"newPrice"`
	ObservedAt  time.Time `json:"observedAt"`
}

// PriceChangeFilter narrows ListPriceChanges. Zero values mean no filter.
type PriceChangeFilter struct {
	ProductKey  string
	Marketplace string
	Limit       int
	Offset      int
}

// BulkInsertPriceChanges writes a batch of detected price movements in a
// single transaction. A nil batch is a no-op.
func BulkInsertPriceChanges(ctx context.Context, changes []offer.PriceChange) error {
	if len(changes) == 0 {
		return nil
	}

	pool := Pool()
	if pool == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(`
			INSERT INTO price_changes (
				ean, seller_id, marketplace, old_price, new_price, observed_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ProductKey, c.SellerID, c.Marketplace, c.OldPrice, c.NewPrice, c.ObservedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range changes {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert price change: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit price changes: %w", err)
	}
	return nil
}

// ListPriceChanges returns recorded price movements, newest first.
func ListPriceChanges(ctx context.Context, filter PriceChangeFilter) ([]PriceChangeRow, error) {
	pool := Pool()
	if pool == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := `
		SELECT id, ean, seller_id, marketplace, old_price, new_price, observed_at
		FROM price_changes
		WHERE ($1 = '' OR ean = $1)
		  AND ($2 = '' OR marketplace = $2)
		ORDER BY observed_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := pool.Query(ctx, query, filter.ProductKey, filter.Marketplace, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("error querying price changes: %w", err)
	}
	defer rows.Close()

	var out []PriceChangeRow
	for rows.Next() {
		var r PriceChangeRow
		if err := rows.Scan(&r.ID, &r.ProductKey, &r.SellerID, &r.Marketplace,
			&r.OldPrice, &r.NewPrice, &r.ObservedAt); err != nil {
			return nil, fmt.Errorf("error scanning price change: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price changes: %w", err)
	}
	return out, nil
}
