package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

func validNominalInput() DiscountInput {
	return DiscountInput{
		Name:      "promo akhir pekan",
		ScopeType: enums.DiscountScopeUnit,
		ValueType: enums.DiscountValueNominal,
		Value:     decimal.NewFromInt(2000),
		UnitIDs:   []int64{5},
		Active:    true,
	}
}

func expectValidationError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error code, got %v", err)
	}
}

func TestValidateInputScope(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := validateInput(validNominalInput()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		input := validNominalInput()
		input.Name = "   "
		expectValidationError(t, validateInput(input))
	})

	t.Run("unit scope without unit ids", func(t *testing.T) {
		input := validNominalInput()
		input.UnitIDs = nil
		expectValidationError(t, validateInput(input))
	})

	t.Run("unit scope with product ids", func(t *testing.T) {
		input := validNominalInput()
		input.ProductIDs = []int64{1}
		expectValidationError(t, validateInput(input))
	})

	t.Run("product scope without product ids", func(t *testing.T) {
		input := validNominalInput()
		input.ScopeType = enums.DiscountScopeProduct
		expectValidationError(t, validateInput(input))
	})

	t.Run("invalid scope", func(t *testing.T) {
		input := validNominalInput()
		input.ScopeType = "store"
		expectValidationError(t, validateInput(input))
	})
}

func TestValidateInputValues(t *testing.T) {
	t.Run("percentage above 100", func(t *testing.T) {
		input := validNominalInput()
		input.ValueType = enums.DiscountValuePercentage
		input.Value = decimal.NewFromInt(150)
		expectValidationError(t, validateInput(input))
	})

	t.Run("negative nominal", func(t *testing.T) {
		input := validNominalInput()
		input.Value = decimal.NewFromInt(-1)
		expectValidationError(t, validateInput(input))
	})

	t.Run("tiers forbidden on plain discount", func(t *testing.T) {
		minQty := int64(5)
		input := validNominalInput()
		input.Tiers = []TierInput{{MinQuantity: &minQty, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(10)}}
		expectValidationError(t, validateInput(input))
	})

	t.Run("tiered without tiers", func(t *testing.T) {
		input := validNominalInput()
		input.ValueType = enums.DiscountValueTiered
		expectValidationError(t, validateInput(input))
	})

	t.Run("schedule inverted", func(t *testing.T) {
		start := time.Now()
		end := start.Add(-time.Hour)
		input := validNominalInput()
		input.StartAt = &start
		input.EndAt = &end
		expectValidationError(t, validateInput(input))
	})
}

func TestValidateTier(t *testing.T) {
	minQty := int64(5)
	maxQty := int64(2)
	minAmount := decimal.NewFromInt(1000)
	maxAmount := decimal.NewFromInt(500)

	t.Run("valid quantity tier", func(t *testing.T) {
		err := validateTier(0, TierInput{MinQuantity: &minQty, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(10)})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("no bounds", func(t *testing.T) {
		err := validateTier(0, TierInput{ValueType: enums.DiscountValueNominal, Value: decimal.NewFromInt(10)})
		expectValidationError(t, err)
	})

	t.Run("tiered value type on tier", func(t *testing.T) {
		err := validateTier(0, TierInput{MinQuantity: &minQty, ValueType: enums.DiscountValueTiered, Value: decimal.NewFromInt(10)})
		expectValidationError(t, err)
	})

	t.Run("quantity bounds inverted", func(t *testing.T) {
		err := validateTier(0, TierInput{MinQuantity: &minQty, MaxQuantity: &maxQty, ValueType: enums.DiscountValueNominal, Value: decimal.NewFromInt(10)})
		expectValidationError(t, err)
	})

	t.Run("amount bounds inverted", func(t *testing.T) {
		err := validateTier(0, TierInput{MinAmount: &minAmount, MaxAmount: &maxAmount, ValueType: enums.DiscountValueNominal, Value: decimal.NewFromInt(10)})
		expectValidationError(t, err)
	})

	t.Run("tier percentage out of range", func(t *testing.T) {
		err := validateTier(0, TierInput{MinQuantity: &minQty, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(101)})
		expectValidationError(t, err)
	})
}

func TestBuildModelComputesActiveNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)

	input := validNominalInput()
	row := buildModel(input, now)
	if !row.ActiveNow {
		t.Fatal("expected active discount to be active now")
	}

	input.StartAt = &future
	row = buildModel(input, now)
	if row.ActiveNow {
		t.Fatal("expected scheduled discount to be inactive before start_at")
	}
}

func TestBuildModelCopiesTiers(t *testing.T) {
	minQty := int64(5)
	input := validNominalInput()
	input.ValueType = enums.DiscountValueTiered
	input.Tiers = []TierInput{
		{MinQuantity: &minQty, ValueType: enums.DiscountValuePercentage, Value: decimal.NewFromInt(10), Priority: 2},
	}

	row := buildModel(input, time.Now())
	if len(row.Tiers) != 1 {
		t.Fatalf("expected 1 tier, got %d", len(row.Tiers))
	}
	if row.Tiers[0].Priority != 2 {
		t.Fatalf("expected priority 2, got %d", row.Tiers[0].Priority)
	}
	if row.Tiers[0].MinQty == nil || *row.Tiers[0].MinQty != 5 {
		t.Fatalf("expected min qty 5, got %v", row.Tiers[0].MinQty)
	}
}

func TestDiscountDTOSerializesFlagsAsInts(t *testing.T) {
	now := time.Now()
	row := buildModel(validNominalInput(), now)
	row.ID = 7

	dto := NewDiscountDTO(row)
	if dto.Active != 1 || dto.IsActiveNow != 1 {
		t.Fatalf("expected active flags 1/1, got %d/%d", dto.Active, dto.IsActiveNow)
	}
	if dto.Type != "unit" {
		t.Fatalf("expected type unit, got %s", dto.Type)
	}
	if len(dto.UnitIDs) != 1 || dto.UnitIDs[0] != 5 {
		t.Fatalf("expected unit ids [5], got %v", dto.UnitIDs)
	}
	if dto.ProductIDs == nil {
		t.Fatal("expected empty product ids slice, not nil")
	}
}
