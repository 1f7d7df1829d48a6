// Package export renders buybox evaluation results as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pricetrack/buybox-service/internal/buybox"
)

const sheetName = "Buybox"

var header = []string{
	"Produto",
	"EAN",
	"Status",
	"Marketplace",
	"Loja",
	"Preco Referencia",
	"Vencedor",
	"Marketplace Vencedor",
	"Preco Vencedor",
	"Diferenca",
	"URL",
	"Ultima Atualizacao",
}

// Workbook renders the result set into a single-sheet XLSX workbook and
// returns its bytes. Rows appear in input order; callers pre-sort.
func Workbook(results []buybox.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, rowFor(r)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowFor(r buybox.Result) *[]interface{} {
	ref := r.ReferenceOffer
	win := r.WinningOffer

	url := ""
	if ref.URL != nil {
		url = *ref.URL
	}
	updated := ""
	if !ref.LastUpdated.IsZero() {
		updated = ref.LastUpdated.Format(time.RFC3339)
	}

	row := []interface{}{
		r.Name,
		r.ProductKey,
		string(r.Status),
		ref.Marketplace,
		ref.SellerName,
		ref.Price,
		win.SellerName,
		win.Marketplace,
		win.Price,
		differenceText(r),
		url,
		updated,
	}
	return &row
}

// differenceText mirrors the dashboard wording: winners show the margin to
// the runner-up, losers the amount needed to match the winner.
func differenceText(r buybox.Result) string {
	switch r.Status {
	case buybox.StatusWinningAlone:
		return "unico vendedor"
	case buybox.StatusWinning:
		if r.NextCompetitor == nil {
			return "unico vendedor"
		}
		return fmt.Sprintf("ganhando por %.2f", -r.PriceGap)
	case buybox.StatusLosing:
		return fmt.Sprintf("perdendo por %.2f", r.PriceGap)
	default:
		return ""
	}
}
