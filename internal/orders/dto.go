package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// OrderItemDTO is the immutable line item snapshot on the wire.
type OrderItemDTO struct {
	ID             int64           `json:"id"`
	UnitID         int64           `json:"unit_id"`
	ProductName    string          `json:"product_name"`
	UnitName       string          `json:"unit_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
}

// OrderDTO is the wire representation of a placed order.
type OrderDTO struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	PaymentID       int64           `json:"payment_id"`
	PaymentName     string          `json:"payment_name"`
	PaymentStatus   string          `json:"payment_status"`
	ShippingType    string          `json:"shipping_type"`
	ShippingAddress *string         `json:"shipping_address"`
	Notes           *string         `json:"notes"`
	PaymentProof    *string         `json:"payment_proof"`
	Items           []OrderItemDTO  `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewOrderDTO maps the persistence model to its wire shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderNumber:     order.OrderNumber,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status.String(),
		PaymentID:       order.PaymentID,
		PaymentStatus:   order.PaymentStatus.String(),
		ShippingType:    order.ShippingType.String(),
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		PaymentProof:    order.PaymentProof,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Payment != nil {
		dto.PaymentName = order.Payment.Name
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			UnitID:         item.UnitID,
			ProductName:    item.ProductName,
			UnitName:       item.UnitName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TotalPrice:     item.TotalPrice,
		})
	}
	return dto
}
