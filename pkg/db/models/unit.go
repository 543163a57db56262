package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the sellable variant of a product. Price is authoritative
// server-side; stock is decremented only inside the order transaction.
type Unit struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64           `gorm:"column:product_id;not null;index"`
	Name       string          `gorm:"column:name;not null"`
	QtyPerUnit int             `gorm:"column:qty_per_unit;not null;default:1"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
