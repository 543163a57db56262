package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

func qtyTier(id int64, minQty int64, priority int, value string) models.DiscountTier {
	return models.DiscountTier{
		ID:        id,
		MinQty:    &minQty,
		ValueType: enums.DiscountValuePercentage,
		Value:     dec(value),
		Priority:  priority,
	}
}

func TestAggregateTotalsScopedSum(t *testing.T) {
	discount := unitDiscount(1, []int64{5, 6}, enums.DiscountValueTiered, "0")
	basket := []Item{
		{ProductID: 1, UnitID: 5, Quantity: 2, UnitPrice: dec("1000")},
		{ProductID: 1, UnitID: 6, Quantity: 3, UnitPrice: dec("2000")},
		{ProductID: 2, UnitID: 7, Quantity: 10, UnitPrice: dec("9999")},
	}

	totals := AggregateTotals(&discount, basket)
	assert.Equal(t, int64(5), totals.Quantity)
	assert.True(t, totals.Amount.Equal(dec("8000")), "got %s", totals.Amount)
}

func TestAggregateTotalsEmptyScope(t *testing.T) {
	discount := unitDiscount(1, []int64{99}, enums.DiscountValueTiered, "0")
	basket := []Item{{ProductID: 1, UnitID: 5, Quantity: 2, UnitPrice: dec("1000")}}

	totals := AggregateTotals(&discount, basket)
	assert.Equal(t, int64(0), totals.Quantity)
	assert.True(t, totals.Amount.IsZero())
}

func TestSelectTierLastMatchWins(t *testing.T) {
	// Both tiers match; the one later in priority order is selected even
	// though an earlier one also qualifies.
	tiers := []models.DiscountTier{
		qtyTier(2, 1, 1, "20"),
		qtyTier(1, 1, 0, "10"),
	}

	selected := SelectTier(tiers, Totals{Quantity: 3, Amount: dec("1000")})
	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectTierPriorityTieBreaksByID(t *testing.T) {
	tiers := []models.DiscountTier{
		qtyTier(9, 1, 0, "20"),
		qtyTier(3, 1, 0, "10"),
	}

	// ordered by id within equal priority, so id 9 is last and wins
	selected := SelectTier(tiers, Totals{Quantity: 2})
	require.NotNil(t, selected)
	assert.Equal(t, int64(9), selected.ID)
}

func TestSelectTierNoMatch(t *testing.T) {
	tiers := []models.DiscountTier{qtyTier(1, 10, 0, "10")}
	assert.Nil(t, SelectTier(tiers, Totals{Quantity: 3}))
	assert.Nil(t, SelectTier(nil, Totals{Quantity: 3}))
}

func TestTierMatchesBounds(t *testing.T) {
	min := int64(2)
	max := int64(5)
	minAmount := dec("1000")
	maxAmount := dec("5000")

	both := models.DiscountTier{
		MinQty:    &min,
		MaxQty:    &max,
		MinAmount: &minAmount,
		MaxAmount: &maxAmount,
	}

	assert.True(t, tierMatches(&both, Totals{Quantity: 3, Amount: dec("2000")}))
	assert.False(t, tierMatches(&both, Totals{Quantity: 1, Amount: dec("2000")}), "below min qty")
	assert.False(t, tierMatches(&both, Totals{Quantity: 6, Amount: dec("2000")}), "above max qty")
	assert.False(t, tierMatches(&both, Totals{Quantity: 3, Amount: dec("500")}), "below min amount")
	assert.False(t, tierMatches(&both, Totals{Quantity: 3, Amount: dec("9000")}), "above max amount")

	// bounds at the edge are inclusive
	assert.True(t, tierMatches(&both, Totals{Quantity: 2, Amount: dec("1000")}))
	assert.True(t, tierMatches(&both, Totals{Quantity: 5, Amount: dec("5000")}))
}

func TestTierWithoutBoundsNeverMatches(t *testing.T) {
	empty := models.DiscountTier{ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(10)}
	assert.False(t, tierMatches(&empty, Totals{Quantity: 100, Amount: dec("100000")}))
}
