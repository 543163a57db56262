package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/pricing"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

// Service exposes per-user cart operations.
type Service interface {
	Add(ctx context.Context, userID, unitID int64, quantity int) error
	List(ctx context.Context, userID int64) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) error
	Remove(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
}

// LineDTO is the wire representation of one cart line, priced against the
// live catalog and active discounts.
type LineDTO struct {
	ID             int64           `json:"id"`
	UnitID         int64           `json:"unit_id"`
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitName       string          `json:"unit_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ResolvedPrice  decimal.Decimal `json:"resolved_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
	Stock          int             `json:"stock"`
}

// CartDTO is the full cart with its running total.
type CartDTO struct {
	Items []LineDTO       `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type unitLoader interface {
	FindUnitByID(ctx context.Context, id int64) (*models.Unit, error)
}

type activeDiscountLister interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

type service struct {
	repo         *Repository
	catalogRepo  unitLoader
	discountRepo activeDiscountLister
	now          func() time.Time
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, catalogRepo unitLoader, discountRepo activeDiscountLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{
		repo:         repo,
		catalogRepo:  catalogRepo,
		discountRepo: discountRepo,
		now:          time.Now,
	}, nil
}

// Add puts quantity of the unit in the user's cart, incrementing the
// existing line when one exists.
func (s *service) Add(ctx context.Context, userID, unitID int64, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.catalogRepo.FindUnitByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	item := &models.CartItem{UserID: userID, UnitID: unitID, Quantity: quantity}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert cart line")
	}
	return nil
}

// List returns the user's cart priced with the current discount set. The
// whole cart forms the basket, so tiered thresholds see aggregate
// quantities across lines.
func (s *service) List(ctx context.Context, userID int64) (*CartDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}

	now := s.now()
	discounts, err := s.discountRepo.ListActive(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active discounts")
	}

	basket := make([]pricing.Item, 0, len(rows))
	for _, row := range rows {
		if row.Unit == nil {
			continue
		}
		basket = append(basket, pricing.Item{
			ProductID: row.Unit.ProductID,
			UnitID:    row.UnitID,
			Quantity:  row.Quantity,
			UnitPrice: row.Unit.Price,
		})
	}

	resolver := pricing.NewResolver(now)
	dto := &CartDTO{Items: make([]LineDTO, 0, len(rows)), Total: decimal.Zero}
	for _, row := range rows {
		if row.Unit == nil {
			continue
		}
		result := resolver.Resolve(row.Unit.Price, row.Unit.ProductID, row.UnitID, discounts, basket)
		lineTotal := result.Price.Mul(decimal.NewFromInt(int64(row.Quantity)))

		line := LineDTO{
			ID:             row.ID,
			UnitID:         row.UnitID,
			ProductID:      row.Unit.ProductID,
			UnitName:       row.Unit.Name,
			Quantity:       row.Quantity,
			UnitPrice:      row.Unit.Price,
			ResolvedPrice:  result.Price,
			DiscountAmount: result.DiscountAmount,
			LineTotal:      lineTotal,
			Stock:          row.Unit.Stock,
		}
		if row.Unit.Product != nil {
			line.ProductName = row.Unit.Product.Name
		}
		dto.Items = append(dto.Items, line)
		dto.Total = dto.Total.Add(lineTotal)
	}
	return dto, nil
}

// UpdateQuantity sets a line's quantity, removing the line when zero.
func (s *service) UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if _, err := s.loadLine(ctx, userID, lineID); err != nil {
		return err
	}
	if quantity == 0 {
		if err := s.repo.Remove(ctx, userID, lineID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
		}
		return nil
	}
	if err := s.repo.UpdateQuantity(ctx, userID, lineID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return nil
}

// Remove deletes one line from the user's cart.
func (s *service) Remove(ctx context.Context, userID, lineID int64) error {
	if _, err := s.loadLine(ctx, userID, lineID); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, userID, lineID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

// Clear empties the user's cart.
func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) loadLine(ctx context.Context, userID, lineID int64) (*models.CartItem, error) {
	line, err := s.repo.FindLine(ctx, userID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	return line, nil
}
