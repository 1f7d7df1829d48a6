package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pricetrack/buybox-service/internal/buybox"
	"github.com/pricetrack/buybox-service/internal/stats"
)

var (
	analyzeSellers      []string
	analyzeMarketplaces []string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Evaluate buybox positions for a set of reference sellers",
	Long: `Fetch the feeds and evaluate, for every product the reference sellers
list, whether they hold the lowest price per marketplace. Prints win/loss
counts, per-marketplace attribution, and the losing listings with their
price gaps.`,
	Example: `  buybox analyze --seller loja-principal
  buybox analyze --seller loja-a --seller loja-b --marketplace Amazon`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringArrayVar(&analyzeSellers, "seller", nil, "Reference seller ID (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeMarketplaces, "marketplace", nil, "Restrict to a marketplace (repeatable)")
	analyzeCmd.MarkFlagRequired("seller")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	offers, err := fetchOffers(cmd.Context())
	if err != nil {
		return err
	}

	results := buybox.Evaluate(offers, toSet(analyzeSellers), toSet(analyzeMarketplaces))
	winning, losing := buybox.SplitByOutcome(results)
	summary := stats.Build(results)

	fmt.Printf("Evaluated %d listings: %d winning, %d losing\n\n",
		summary.TotalOffered, summary.WinningCount, summary.LosingCount)

	if len(summary.LossesByMarketplace) > 0 {
		fmt.Println("Losses by winning marketplace:")
		for mkt, n := range summary.LossesByMarketplace {
			fmt.Printf("  %-30s %d\n", mkt, n)
		}
		fmt.Println()
	}
	fmt.Printf("Potential gain (margin headroom): %.2f\n\n", summary.PotentialGain)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tMARKETPLACE\tOURS\tWINNER\tGAP")
	for _, r := range losing {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f (%s)\t%+.2f\n",
			r.Name, r.ReferenceOffer.Marketplace, r.ReferenceOffer.Price,
			r.WinningOffer.Price, r.WinningOffer.SellerName, r.PriceGap)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	logger.Info().
		Int("winning", len(winning)).
		Int("losing", len(losing)).
		Msg("Analysis complete")
	return nil
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
