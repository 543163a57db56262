package models

import "time"

// CartItem is one unit in a user's cart. Unique per (user, unit);
// re-adding increments the quantity instead of inserting a duplicate.
type CartItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uq_cart_user_unit"`
	UnitID    int64     `gorm:"column:unit_id;not null;uniqueIndex:uq_cart_user_unit"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Unit      *Unit     `gorm:"foreignKey:UnitID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
