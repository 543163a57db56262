package enums

import "fmt"

// PaymentStatus tracks the payment lifecycle of an order, parallel to but
// loosely coupled with OrderStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid       PaymentStatus = "belum_bayar"
	PaymentStatusConfirmation PaymentStatus = "menunggu_konfirmasi"
	PaymentStatusPaid         PaymentStatus = "lunas"
	PaymentStatusRefunded     PaymentStatus = "dikembalikan"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusUnpaid,
	PaymentStatusConfirmation,
	PaymentStatusPaid,
	PaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransition reports whether the payment may move to target.
// Refunds require a separate delivered+paid check at the service layer.
func (p PaymentStatus) CanTransition(target PaymentStatus) bool {
	switch p {
	case PaymentStatusUnpaid:
		return target == PaymentStatusConfirmation || target == PaymentStatusPaid
	case PaymentStatusConfirmation:
		return target == PaymentStatusPaid || target == PaymentStatusUnpaid
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	default:
		return false
	}
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
