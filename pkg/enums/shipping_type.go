package enums

import "fmt"

// ShippingType distinguishes delivered orders from in-store pickup.
type ShippingType string

const (
	ShippingTypeDelivery ShippingType = "delivery"
	ShippingTypePickup   ShippingType = "pickup"
)

var validShippingTypes = []ShippingType{
	ShippingTypeDelivery,
	ShippingTypePickup,
}

// String implements fmt.Stringer.
func (s ShippingType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingType.
func (s ShippingType) IsValid() bool {
	for _, candidate := range validShippingTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingType converts raw input into a ShippingType.
func ParseShippingType(value string) (ShippingType, error) {
	for _, candidate := range validShippingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping type %q", value)
}
