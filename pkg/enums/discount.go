package enums

import "fmt"

// DiscountScope selects the catalog dimension a discount matches on.
type DiscountScope string

const (
	DiscountScopeProduct DiscountScope = "product"
	DiscountScopeUnit    DiscountScope = "unit"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeProduct,
	DiscountScopeUnit,
}

// String implements fmt.Stringer.
func (d DiscountScope) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountScope.
func (d DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}

// DiscountValueType selects how a discount computes its reduction.
type DiscountValueType string

const (
	DiscountValuePercentage DiscountValueType = "percentage"
	DiscountValueNominal    DiscountValueType = "nominal"
	DiscountValueTiered     DiscountValueType = "tiered"
)

var validDiscountValueTypes = []DiscountValueType{
	DiscountValuePercentage,
	DiscountValueNominal,
	DiscountValueTiered,
}

// String implements fmt.Stringer.
func (d DiscountValueType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountValueType.
func (d DiscountValueType) IsValid() bool {
	for _, candidate := range validDiscountValueTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTierAllowed reports whether the value type may appear on a tier row.
// Tiers never nest, so "tiered" is excluded.
func (d DiscountValueType) IsTierAllowed() bool {
	return d == DiscountValuePercentage || d == DiscountValueNominal
}

// ParseDiscountValueType converts raw input into a DiscountValueType.
func ParseDiscountValueType(value string) (DiscountValueType, error) {
	for _, candidate := range validDiscountValueTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount value type %q", value)
}
