package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	"github.com/lokapasar/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

// Service exposes discount management operations.
type Service interface {
	Create(ctx context.Context, input DiscountInput) (*DiscountDTO, error)
	Update(ctx context.Context, id int64, input DiscountInput) (*DiscountDTO, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*DiscountDTO, error)
	List(ctx context.Context) ([]DiscountDTO, error)
}

// TierInput holds one validated tier of a tiered discount.
type TierInput struct {
	Label       *string
	MinQuantity *int64
	MaxQuantity *int64
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	ValueType   enums.DiscountValueType
	Value       decimal.Decimal
	Priority    int
}

// DiscountInput holds the validated payload to create or replace a discount.
type DiscountInput struct {
	Name       string
	ScopeType  enums.DiscountScope
	ValueType  enums.DiscountValueType
	Value      decimal.Decimal
	ProductIDs []int64
	UnitIDs    []int64
	Active     bool
	StartAt    *time.Time
	EndAt      *time.Time
	Tiers      []TierInput
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a discount service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

// Create validates and persists a discount with its tiers atomically.
func (s *service) Create(ctx context.Context, input DiscountInput) (*DiscountDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	row := buildModel(input, now)

	var createdID int64
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, row)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "discount name already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert discount")
		}
		createdID = created.ID
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount")
	}

	return s.loadDTO(ctx, createdID)
}

// Update replaces the discount row and its tier set wholesale.
func (s *service) Update(ctx context.Context, id int64, input DiscountInput) (*DiscountDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}

	now := s.now()
	row := buildModel(input, now)
	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	tiers := row.Tiers
	row.Tiers = nil
	for i := range tiers {
		tiers[i].DiscountID = existing.ID
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "discount name already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update discount")
		}
		if err := txRepo.ReplaceTiers(ctx, existing.ID, tiers); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace discount tiers")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount")
	}

	return s.loadDTO(ctx, existing.ID)
}

// Delete removes the discount and its tiers.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount")
	}
	return nil
}

// Get returns one discount, refreshing the persisted is_active_now flag
// first so the response reflects the schedule at read time.
func (s *service) Get(ctx context.Context, id int64) (*DiscountDTO, error) {
	if err := s.repo.RefreshActiveNow(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh discount flags")
	}
	return s.loadDTO(ctx, id)
}

// List returns every discount after refreshing the is_active_now flags.
func (s *service) List(ctx context.Context) ([]DiscountDTO, error) {
	if err := s.repo.RefreshActiveNow(ctx, s.now()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh discount flags")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	dtos := make([]DiscountDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewDiscountDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) loadDTO(ctx context.Context, id int64) (*DiscountDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	return NewDiscountDTO(row), nil
}

func buildModel(input DiscountInput, now time.Time) *models.Discount {
	row := &models.Discount{
		Name:       strings.TrimSpace(input.Name),
		ScopeType:  input.ScopeType,
		ValueType:  input.ValueType,
		Value:      input.Value,
		ProductIDs: append([]int64{}, input.ProductIDs...),
		UnitIDs:    append([]int64{}, input.UnitIDs...),
		Active:     input.Active,
		StartAt:    input.StartAt,
		EndAt:      input.EndAt,
	}
	row.ActiveNow = row.IsActiveNow(now)
	for _, tier := range input.Tiers {
		row.Tiers = append(row.Tiers, models.DiscountTier{
			Label:     tier.Label,
			MinQty:    tier.MinQuantity,
			MaxQty:    tier.MaxQuantity,
			MinAmount: tier.MinAmount,
			MaxAmount: tier.MaxAmount,
			ValueType: tier.ValueType,
			Value:     tier.Value,
			Priority:  tier.Priority,
		})
	}
	return row
}

var percentCeiling = decimal.NewFromInt(100)

func validateInput(input DiscountInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.ScopeType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "scope_type must be product or unit")
	}
	if !input.ValueType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "value_type must be percentage, nominal, or tiered")
	}

	switch input.ScopeType {
	case enums.DiscountScopeProduct:
		if len(input.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product scope requires product_ids")
		}
		if len(input.UnitIDs) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product scope cannot carry unit_ids")
		}
	case enums.DiscountScopeUnit:
		if len(input.UnitIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit scope requires unit_ids")
		}
		if len(input.ProductIDs) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit scope cannot carry product_ids")
		}
	}

	if input.StartAt != nil && input.EndAt != nil && input.EndAt.Before(*input.StartAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_at must not precede start_at")
	}

	switch input.ValueType {
	case enums.DiscountValuePercentage:
		if err := validatePercent(input.Value); err != nil {
			return err
		}
		if len(input.Tiers) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tiers are only allowed on tiered discounts")
		}
	case enums.DiscountValueNominal:
		if input.Value.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "nominal value must be non-negative")
		}
		if len(input.Tiers) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tiers are only allowed on tiered discounts")
		}
	case enums.DiscountValueTiered:
		if len(input.Tiers) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tiered discount requires at least one tier")
		}
		for i, tier := range input.Tiers {
			if err := validateTier(i, tier); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateTier(index int, tier TierInput) error {
	if !tier.ValueType.IsTierAllowed() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: value_type must be percentage or nominal", index))
	}
	if tier.ValueType == enums.DiscountValuePercentage {
		if err := validatePercent(tier.Value); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("tier %d: percentage value must be between 0 and 100", index))
		}
	}
	if tier.ValueType == enums.DiscountValueNominal && tier.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: nominal value must be non-negative", index))
	}

	hasQty := tier.MinQuantity != nil || tier.MaxQuantity != nil
	hasAmount := tier.MinAmount != nil || tier.MaxAmount != nil
	if !hasQty && !hasAmount {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: at least one quantity or amount bound is required", index))
	}
	if tier.MinQuantity != nil && *tier.MinQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: min_quantity must be non-negative", index))
	}
	if tier.MinQuantity != nil && tier.MaxQuantity != nil && *tier.MinQuantity > *tier.MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: min_quantity exceeds max_quantity", index))
	}
	if tier.MinAmount != nil && tier.MinAmount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: min_amount must be non-negative", index))
	}
	if tier.MinAmount != nil && tier.MaxAmount != nil && tier.MinAmount.GreaterThan(*tier.MaxAmount) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("tier %d: min_amount exceeds max_amount", index))
	}
	return nil
}

func validatePercent(value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(percentCeiling) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be between 0 and 100")
	}
	return nil
}
