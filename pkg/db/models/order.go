package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

// Order is a placed customer order. The row is created atomically with its
// line items, the stock decrements, and the optional cart clear.
type Order struct {
	ID              int64               `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64               `gorm:"column:user_id;not null;index"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'menunggu'"`
	PaymentID       int64               `gorm:"column:payment_id;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;not null;default:'belum_bayar'"`
	ShippingType    enums.ShippingType  `gorm:"column:shipping_type;not null;default:'pickup'"`
	ShippingAddress *string             `gorm:"column:shipping_address"`
	Notes           *string             `gorm:"column:notes"`
	PaymentProof    *string             `gorm:"column:payment_proof"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *PaymentMethod      `gorm:"foreignKey:PaymentID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the immutable per-unit snapshot captured at order creation.
// Later catalog changes must not alter these rows.
type OrderItem struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID        int64           `gorm:"column:order_id;not null;index"`
	UnitID         int64           `gorm:"column:unit_id;not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	UnitName       string          `gorm:"column:unit_name;not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(14,2);not null;default:0"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
