package models

import "time"

// Category groups products for storefront navigation.
type Category struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Product is a catalog entry. Sellable variants live on Unit rows.
type Product struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID  *int64    `gorm:"column:category_id"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	ImagePath   *string   `gorm:"column:image_path"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	Units       []Unit    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
