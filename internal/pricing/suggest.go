// Package pricing computes buybox price suggestions bounded by seller floor
// prices and pushes accepted prices to the pricing-update sink with
// optimistic local application.
package pricing

import (
	"fmt"
	"math"
)

// Undercut is the fixed amount shaved off the best competitor price when
// suggesting a buybox-competitive price, in the base currency unit.
const Undercut = 0.10

// Suggestion is a recommended listing price with a human-readable rationale.
// Price is nil when no suggestion is possible.
type Suggestion struct {
	Price     *float64 `json:"price"`
	Rationale string   `json:"rationale"`
}

// Suggest computes the recommended listing price for an offer. floor is the
// seller-defined minimum; bestCompetitor is the lowest competitor price, nil
// when no competitor lists the product. The returned price never falls below
// the floor. Deterministic and side-effect free.
func Suggest(floor, bestCompetitor *float64) Suggestion {
	if floor == nil {
		return Suggestion{
			Rationale: "no floor price set; define a minimum price to enable suggestions",
		}
	}
	if bestCompetitor == nil || math.IsInf(*bestCompetitor, 1) {
		price := roundCents(*floor)
		return Suggestion{
			Price:     &price,
			Rationale: fmt.Sprintf("no competitors found; using floor price %.2f", price),
		}
	}

	candidate := roundCents(*bestCompetitor - Undercut)
	if candidate < *floor {
		price := roundCents(*floor)
		return Suggestion{
			Price: &price,
			Rationale: fmt.Sprintf(
				"undercutting competitor price %.2f would give %.2f, below the floor price %.2f; clamped to floor",
				*bestCompetitor, candidate, price),
		}
	}
	return Suggestion{
		Price: &candidate,
		Rationale: fmt.Sprintf(
			"undercutting best competitor price %.2f by %.2f", *bestCompetitor, Undercut),
	}
}

// roundCents rounds to two decimals so suggested prices are exact currency
// amounts rather than raw float arithmetic.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
