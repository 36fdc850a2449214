package catalog

import (
	"strings"

	"nexbuy/internal/domain"
)

// Price tiers for bucketed filtering. Boundaries are inclusive on the middle
// tier: a product priced exactly 50 belongs to Tier50To150, not TierUnder50.
const (
	TierAll      = "all"
	TierUnder50  = "under50"
	Tier50To150  = "50-150"
	TierOver150  = "over150"
	tierLowEdge  = 50.0
	tierHighEdge = 150.0
)

// Filter is the combined catalog filter state. Zero value matches everything
// visible to a non-premium viewer.
type Filter struct {
	Query     string
	Category  string
	PriceTier string
	MinRating float64

	// ViewerPremium and ViewerAdmin gate exclusive products.
	ViewerPremium bool
	ViewerAdmin   bool
}

// Apply returns the products matching every filter clause. Exclusive products
// are hidden unless the viewer is premium or admin, independent of the other
// clauses.
func Apply(products []domain.Product, f Filter) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.IsExclusive && !f.ViewerPremium && !f.ViewerAdmin {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category), query) {
			continue
		}
		if f.Category != "" && f.Category != "All" && p.Category != f.Category {
			continue
		}
		if !matchesTier(p.Price, f.PriceTier) {
			continue
		}
		if p.Rating < f.MinRating {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTier(price float64, tier string) bool {
	switch tier {
	case TierUnder50:
		return price < tierLowEdge
	case Tier50To150:
		return price >= tierLowEdge && price <= tierHighEdge
	case TierOver150:
		return price > tierHighEdge
	default:
		return true
	}
}
