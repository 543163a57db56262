package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/internal/pricing"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// UnitDTO is the wire representation of a sellable unit. PromoPrice is set
// only when an active discount lowers the price for a single-unit purchase.
type UnitDTO struct {
	ID         int64            `json:"id"`
	ProductID  int64            `json:"product_id"`
	Name       string           `json:"name"`
	QtyPerUnit int              `json:"qty_per_unit"`
	Price      decimal.Decimal  `json:"price"`
	PromoPrice *decimal.Decimal `json:"promo_price"`
	Stock      int              `json:"stock"`
}

// ProductDTO is the wire representation of a catalog product.
type ProductDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImagePath   *string   `json:"image_path"`
	CategoryID  *int64    `json:"category_id"`
	Category    *string   `json:"category"`
	IsActive    bool      `json:"is_active"`
	Units       []UnitDTO `json:"units"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryDTO is the wire representation of a category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewProductDTO maps a product and, when a resolver is supplied, annotates
// each unit with its resolved single-unit promo price.
func NewProductDTO(product *models.Product, resolver *pricing.Resolver, discounts []models.Discount) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		ImagePath:   product.ImagePath,
		CategoryID:  product.CategoryID,
		IsActive:    product.IsActive,
		Units:       make([]UnitDTO, 0, len(product.Units)),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Category != nil {
		dto.Category = &product.Category.Name
	}
	for _, unit := range product.Units {
		entry := UnitDTO{
			ID:         unit.ID,
			ProductID:  unit.ProductID,
			Name:       unit.Name,
			QtyPerUnit: unit.QtyPerUnit,
			Price:      unit.Price,
			Stock:      unit.Stock,
		}
		if resolver != nil {
			basket := []pricing.Item{{
				ProductID: product.ID,
				UnitID:    unit.ID,
				Quantity:  1,
				UnitPrice: unit.Price,
			}}
			result := resolver.Resolve(unit.Price, product.ID, unit.ID, discounts, basket)
			if result.Applied {
				promo := result.Price
				entry.PromoPrice = &promo
			}
		}
		dto.Units = append(dto.Units, entry)
	}
	return dto
}

// NewCategoryDTO maps the category model to its wire shape.
func NewCategoryDTO(category *models.Category) *CategoryDTO {
	return &CategoryDTO{ID: category.ID, Name: category.Name}
}
