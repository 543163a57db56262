package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// TierDTO is the wire representation of one discount tier.
type TierDTO struct {
	ID          int64            `json:"id"`
	Label       *string          `json:"label"`
	MinQuantity *int64           `json:"min_quantity"`
	MaxQuantity *int64           `json:"max_quantity"`
	MinAmount   *decimal.Decimal `json:"min_amount"`
	MaxAmount   *decimal.Decimal `json:"max_amount"`
	ValueType   string           `json:"value_type"`
	Value       decimal.Decimal  `json:"value"`
	Priority    int              `json:"priority"`
}

// DiscountDTO is the wire representation of a discount. Active flags are
// serialized as 0/1 for compatibility with existing storefront clients.
type DiscountDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	ValueType   string          `json:"value_type"`
	Value       decimal.Decimal `json:"value"`
	Active      int             `json:"active"`
	StartAt     *time.Time      `json:"start_at"`
	EndAt       *time.Time      `json:"end_at"`
	ProductIDs  []int64         `json:"product_ids"`
	UnitIDs     []int64         `json:"unit_ids"`
	Tiers       []TierDTO       `json:"tiers"`
	IsActiveNow int             `json:"is_active_now"`
}

// NewDiscountDTO maps the persistence model to its wire shape.
func NewDiscountDTO(d *models.Discount) *DiscountDTO {
	dto := &DiscountDTO{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.ScopeType.String(),
		ValueType:   d.ValueType.String(),
		Value:       d.Value,
		Active:      boolToInt(d.Active),
		StartAt:     d.StartAt,
		EndAt:       d.EndAt,
		ProductIDs:  append([]int64{}, d.ProductIDs...),
		UnitIDs:     append([]int64{}, d.UnitIDs...),
		Tiers:       make([]TierDTO, 0, len(d.Tiers)),
		IsActiveNow: boolToInt(d.ActiveNow),
	}
	for _, tier := range d.Tiers {
		dto.Tiers = append(dto.Tiers, TierDTO{
			ID:          tier.ID,
			Label:       tier.Label,
			MinQuantity: tier.MinQty,
			MaxQuantity: tier.MaxQty,
			MinAmount:   tier.MinAmount,
			MaxAmount:   tier.MaxAmount,
			ValueType:   tier.ValueType.String(),
			Value:       tier.Value,
			Priority:    tier.Priority,
		})
	}
	return dto
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
