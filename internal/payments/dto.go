package payments

import "github.com/lokapasar/lokapasar-backend/pkg/db/models"

// PaymentMethodDTO is the wire shape for a payment method.
type PaymentMethodDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AccountNumber *string `json:"account_number"`
	AccountHolder *string `json:"account_holder"`
	IsActive      bool    `json:"is_active"`
	IsCash        bool    `json:"is_cash"`
}

func NewPaymentMethodDTO(method *models.PaymentMethod) *PaymentMethodDTO {
	return &PaymentMethodDTO{
		ID:            method.ID,
		Name:          method.Name,
		AccountNumber: method.AccountNumber,
		AccountHolder: method.AccountHolder,
		IsActive:      method.IsActive,
		IsCash:        isCashMethod(method.Name),
	}
}
