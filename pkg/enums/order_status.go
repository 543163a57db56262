package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of a customer order.
// Values are the Indonesian labels carried on the wire.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "menunggu"
	OrderStatusProcessing OrderStatus = "diproses"
	OrderStatusShipped    OrderStatus = "dikirim"
	OrderStatusDelivered  OrderStatus = "diterima"
	OrderStatusCancelled  OrderStatus = "dibatalkan"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// CanTransition reports whether the order may move to target given the
// shipping type. Pickup orders skip the shipped stage; cancellation is
// allowed from any non-terminal state.
func (o OrderStatus) CanTransition(target OrderStatus, shipping ShippingType) bool {
	if o == target {
		return false
	}
	if target == OrderStatusCancelled {
		return !o.IsTerminal()
	}
	switch o {
	case OrderStatusPending:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		if shipping == ShippingTypePickup {
			return target == OrderStatusDelivered
		}
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
