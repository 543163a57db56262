package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/enums"
)

// Discount is an active-schedulable price reduction scoped to a set of
// products or units. Value is meaningless when ValueType is tiered.
type Discount struct {
	ID         int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string                  `gorm:"column:name;not null;uniqueIndex"`
	ScopeType  enums.DiscountScope     `gorm:"column:scope_type;not null"`
	ValueType  enums.DiscountValueType `gorm:"column:value_type;not null"`
	Value      decimal.Decimal         `gorm:"column:value;type:numeric(14,2);not null;default:0"`
	ProductIDs pq.Int64Array           `gorm:"column:product_ids;type:bigint[]"`
	UnitIDs    pq.Int64Array           `gorm:"column:unit_ids;type:bigint[]"`
	Active     bool                    `gorm:"column:active;not null;default:true"`
	// ActiveNow is the derived schedule flag, recomputed on read and
	// persisted back so reporting queries can filter on it directly.
	ActiveNow bool           `gorm:"column:is_active_now;not null;default:true"`
	StartAt   *time.Time     `gorm:"column:start_at"`
	EndAt     *time.Time     `gorm:"column:end_at"`
	Tiers     []DiscountTier `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActiveNow combines the manual flag with the optional schedule window.
func (d Discount) IsActiveNow(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartAt != nil && now.Before(*d.StartAt) {
		return false
	}
	if d.EndAt != nil && now.After(*d.EndAt) {
		return false
	}
	return true
}

// DiscountTier is a conditional level inside a tiered discount, activated
// by aggregate quantity and/or amount thresholds. Tiers are replaced
// wholesale with their parent, never patched.
type DiscountTier struct {
	ID         int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	DiscountID int64                   `gorm:"column:discount_id;not null;index"`
	Label      *string                 `gorm:"column:label"`
	MinQty     *int64                  `gorm:"column:min_qty"`
	MaxQty     *int64                  `gorm:"column:max_qty"`
	MinAmount  *decimal.Decimal        `gorm:"column:min_amount;type:numeric(14,2)"`
	MaxAmount  *decimal.Decimal        `gorm:"column:max_amount;type:numeric(14,2)"`
	ValueType  enums.DiscountValueType `gorm:"column:value_type;not null"`
	Value      decimal.Decimal         `gorm:"column:value;type:numeric(14,2);not null"`
	Priority   int                     `gorm:"column:priority;not null;default:0"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
}
