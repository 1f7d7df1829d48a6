package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pricetrack/buybox-service/internal/feed"
	"github.com/pricetrack/buybox-service/internal/offer"
)

var fetchOutput string

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and normalize the upstream offer feeds",
	Long: `Fetch the listing and URL feeds, normalize them into canonical offers,
and print a summary. With --output, the normalized offers are written to a
JSON file for later analysis.`,
	Example: `  buybox fetch
  buybox fetch --output offers.json`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchOutput, "output", "", "Write normalized offers to a JSON file")
}

func runFetch(cmd *cobra.Command, args []string) error {
	offers, err := fetchOffers(cmd.Context())
	if err != nil {
		return err
	}

	marketplaces := make(map[string]int)
	for _, o := range offers {
		marketplaces[o.Marketplace]++
	}
	logger.Info().Int("offers", len(offers)).Int("marketplaces", len(marketplaces)).Msg("Feed fetched")
	for mkt, n := range marketplaces {
		fmt.Printf("  %-30s %d offers\n", mkt, n)
	}

	if fetchOutput != "" {
		data, err := json.MarshalIndent(offers, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode offers: %w", err)
		}
		if err := os.WriteFile(fetchOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", fetchOutput, err)
		}
		logger.Info().Str("file", fetchOutput).Msg("Offers written")
	}
	return nil
}

// fetchOffers pulls both feeds using the configured endpoints and returns
// the normalized collection.
func fetchOffers(ctx context.Context) ([]offer.Offer, error) {
	if cfg == nil || cfg.Feed.ListingURL == "" {
		return nil, fmt.Errorf("feed.listing_url not configured")
	}

	client := feed.NewClient(feed.Config{
		ListingURL:        cfg.Feed.ListingURL,
		URLFeedURL:        cfg.Feed.URLFeedURL,
		Timeout:           cfg.Feed.Timeout,
		MaxRetries:        cfg.Feed.MaxRetries,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
	}, *logger)

	raws, urls, err := client.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}
	return offer.NormalizeAll(raws, urls), nil
}
