package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Totals aggregates quantity and spend over the basket items matched by a
// discount's scope. Tiered discounts evaluate thresholds against the whole
// basket, not the single item being priced.
type Totals struct {
	Quantity int64
	Amount   decimal.Decimal
}

// AggregateTotals sums quantity and quantity*price over every basket item
// inside the discount's scope.
func AggregateTotals(d *models.Discount, basket []Item) Totals {
	totals := Totals{Amount: decimal.Zero}
	for _, item := range basket {
		if !matchesScope(d, item.ProductID, item.UnitID) {
			continue
		}
		qty := int64(item.Quantity)
		totals.Quantity += qty
		totals.Amount = totals.Amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(qty)))
	}
	return totals
}

// SelectTier picks the tier applying to the given totals, or nil.
//
// Tiers are ordered by priority ascending (ties by id ascending) and the
// LAST matching tier wins. Last-match-wins is intentional legacy behavior
// and must not be changed to first-match.
func SelectTier(tiers []models.DiscountTier, totals Totals) *models.DiscountTier {
	if len(tiers) == 0 {
		return nil
	}

	ordered := make([]models.DiscountTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	var selected *models.DiscountTier
	for i := range ordered {
		if tierMatches(&ordered[i], totals) {
			selected = &ordered[i]
		}
	}
	return selected
}

func tierMatches(tier *models.DiscountTier, totals Totals) bool {
	hasQtyBounds := tier.MinQty != nil || tier.MaxQty != nil
	hasAmountBounds := tier.MinAmount != nil || tier.MaxAmount != nil

	// A tier with no bounds at all never matches; the creation path
	// rejects this shape.
	if !hasQtyBounds && !hasAmountBounds {
		return false
	}

	if hasQtyBounds {
		if tier.MinQty != nil && totals.Quantity < *tier.MinQty {
			return false
		}
		if tier.MaxQty != nil && totals.Quantity > *tier.MaxQty {
			return false
		}
	}

	if hasAmountBounds {
		if tier.MinAmount != nil && totals.Amount.LessThan(*tier.MinAmount) {
			return false
		}
		if tier.MaxAmount != nil && totals.Amount.GreaterThan(*tier.MaxAmount) {
			return false
		}
	}

	return true
}
