package models

import "time"

// PaymentMethod is an admin-managed way to pay (cash, bank transfer, QRIS).
// Cash-like methods are detected by name and never attach payment proof.
type PaymentMethod struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string    `gorm:"column:name;not null;uniqueIndex"`
	AccountNumber *string   `gorm:"column:account_number"`
	AccountHolder *string   `gorm:"column:account_holder"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
