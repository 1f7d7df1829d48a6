package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricetrack/buybox-service/internal/buybox"
	"github.com/pricetrack/buybox-service/internal/export"
)

var (
	exportSellers []string
	exportFile    string
	exportStatus  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a buybox evaluation to an XLSX workbook",
	Example: `  buybox export --seller loja-principal
  buybox export --seller loja-a --status losing --file losses.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringArrayVar(&exportSellers, "seller", nil, "Reference seller ID (repeatable)")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Output file (default buybox-<date>.xlsx)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Restrict to winning or losing rows")
	exportCmd.MarkFlagRequired("seller")
}

func runExport(cmd *cobra.Command, args []string) error {
	offers, err := fetchOffers(cmd.Context())
	if err != nil {
		return err
	}

	results := buybox.Evaluate(offers, toSet(exportSellers), nil)
	winning, losing := buybox.SplitByOutcome(results)

	switch exportStatus {
	case "winning":
		results = winning
	case "losing":
		results = losing
	case "":
		results = append(winning, losing...)
	default:
		return fmt.Errorf("status must be winning or losing, got %q", exportStatus)
	}

	data, err := export.Workbook(results)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	file := exportFile
	if file == "" {
		file = fmt.Sprintf("buybox-%s.xlsx", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}

	logger.Info().Str("file", file).Int("rows", len(results)).Msg("Export written")
	return nil
}
