package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Item is one basket line fed into a pricing pass. UnitPrice is the
// original (undiscounted) unit price.
type Item struct {
	ProductID int64
	UnitID    int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Result is the outcome of resolving one item's price. Applied is false
// both when no discount matched and when the stacked computation left the
// price unchanged, mirroring the legacy "no discount" signal while keeping
// the two cases distinguishable from a nil price.
type Result struct {
	Applied        bool
	Price          decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Resolver prices basket items against a discount set. One Resolver covers
// one pricing pass: aggregate totals for tiered discounts are memoized per
// discount so repeated per-item calls stay linear in the basket size.
type Resolver struct {
	now        time.Time
	aggregates map[int64]Totals
}

// NewResolver builds a resolver evaluating schedules against now.
func NewResolver(now time.Time) *Resolver {
	return &Resolver{
		now:        now,
		aggregates: make(map[int64]Totals),
	}
}

// Resolve computes the final price for one item by stacking every matching
// discount in the supplied order. Each discount operates on the running
// price, not the original. Malformed discount entries are skipped, never
// fatal.
func (r *Resolver) Resolve(original decimal.Decimal, productID, unitID int64, discounts []models.Discount, basket []Item) Result {
	price := original

	for i := range discounts {
		d := &discounts[i]
		if !d.IsActiveNow(r.now) || !matchesScope(d, productID, unitID) {
			continue
		}

		switch d.ValueType {
		case enums.DiscountValuePercentage:
			price = applyPercentage(price, d.Value)
		case enums.DiscountValueNominal:
			price = applyNominal(price, d.Value)
		case enums.DiscountValueTiered:
			totals := r.aggregateTotals(d, basket)
			tier := SelectTier(d.Tiers, totals)
			if tier == nil {
				continue
			}
			switch tier.ValueType {
			case enums.DiscountValuePercentage:
				price = applyPercentage(price, tier.Value)
			case enums.DiscountValueNominal:
				price = applyNominal(price, tier.Value)
			}
		}
	}

	if price.IsNegative() {
		price = decimal.Zero
	}

	if price.Equal(original) {
		return Result{Applied: false, Price: original, DiscountAmount: decimal.Zero}
	}
	return Result{
		Applied:        true,
		Price:          price,
		DiscountAmount: original.Sub(price),
	}
}

func (r *Resolver) aggregateTotals(d *models.Discount, basket []Item) Totals {
	if d.ID != 0 {
		if cached, ok := r.aggregates[d.ID]; ok {
			return cached
		}
	}
	totals := AggregateTotals(d, basket)
	if d.ID != 0 {
		r.aggregates[d.ID] = totals
	}
	return totals
}

func matchesScope(d *models.Discount, productID, unitID int64) bool {
	switch d.ScopeType {
	case enums.DiscountScopeProduct:
		return containsID(d.ProductIDs, productID)
	case enums.DiscountScopeUnit:
		return containsID(d.UnitIDs, unitID)
	default:
		return false
	}
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func applyPercentage(price, value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() || value.GreaterThan(oneHundred) {
		return price
	}
	return price.Sub(price.Mul(value).Div(oneHundred))
}

func applyNominal(price, value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return price
	}
	next := price.Sub(value)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}
