package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/internal/pricing"
	"github.com/lokapasar/lokapasar-backend/pkg/db"
	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
	pkgerrors "github.com/lokapasar/lokapasar-backend/pkg/errors"
)

// Service exposes catalog management and public browsing operations.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, name string) (*CategoryDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID int64, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID int64) error
	GetProduct(ctx context.Context, productID int64) (*ProductDTO, error)
	ListProducts(ctx context.Context, publicOnly bool) ([]ProductDTO, error)

	CreateUnit(ctx context.Context, productID int64, input UnitInput) (*UnitDTO, error)
	UpdateUnit(ctx context.Context, unitID int64, input UnitInput) (*UnitDTO, error)
	DeleteUnit(ctx context.Context, unitID int64) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	ImagePath   *string
	CategoryID  *int64
	IsActive    bool
	Units       []UnitInput
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	ImagePath   *string
	CategoryID  *int64
	IsActive    *bool
}

// UnitInput holds the validated payload for a sellable unit.
type UnitInput struct {
	Name       string
	QtyPerUnit int
	Price      decimal.Decimal
	Stock      int
}

type activeDiscountLister interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

type service struct {
	repo         *Repository
	dbClient     *db.Client
	discountRepo activeDiscountLister
	now          func() time.Time
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, discountRepo activeDiscountLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{
		repo:         repo,
		dbClient:     dbClient,
		discountRepo: discountRepo,
		now:          time.Now,
	}, nil
}

// ListCategories returns every category.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewCategoryDTO(&rows[i]))
	}
	return dtos, nil
}

// CreateCategory inserts a category with a unique name.
func (s *service) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	created, err := s.repo.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return NewCategoryDTO(created), nil
}

// CreateProduct creates the product and its initial units atomically.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	for i, unit := range input.Units {
		if err := validateUnitInput(i, unit); err != nil {
			return nil, err
		}
	}

	var createdID int64
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			ImagePath:   input.ImagePath,
			CategoryID:  input.CategoryID,
			IsActive:    input.IsActive,
		}
		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = created.ID

		for _, unit := range input.Units {
			row := &models.Unit{
				ProductID:  created.ID,
				Name:       strings.TrimSpace(unit.Name),
				QtyPerUnit: unit.QtyPerUnit,
				Price:      unit.Price,
				Stock:      unit.Stock,
			}
			if _, err := txRepo.CreateUnit(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert unit")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.GetProduct(ctx, createdID)
}

// UpdateProduct applies partial updates to a product row.
func (s *service) UpdateProduct(ctx context.Context, productID int64, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = trimmed
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImagePath != nil {
		product.ImagePath = input.ImagePath
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes a product unless any of its units appear on an
// order. Historical order snapshots must keep a resolvable unit row.
func (s *service) DeleteProduct(ctx context.Context, productID int64) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	referenced, err := s.repo.CountOrderItemsByProduct(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product has order history and cannot be deleted")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// GetProduct returns one product with promo-annotated units.
func (s *service) GetProduct(ctx context.Context, productID int64) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resolver, discounts, err := s.pricingPass(ctx)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, resolver, discounts), nil
}

// ListProducts returns the catalog. publicOnly restricts to active rows
// the storefront shows.
func (s *service) ListProducts(ctx context.Context, publicOnly bool) ([]ProductDTO, error) {
	rows, err := s.repo.ListProducts(ctx, publicOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	resolver, discounts, err := s.pricingPass(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i], resolver, discounts))
	}
	return dtos, nil
}

// CreateUnit adds a sellable unit to an existing product.
func (s *service) CreateUnit(ctx context.Context, productID int64, input UnitInput) (*UnitDTO, error) {
	if err := validateUnitInput(0, input); err != nil {
		return nil, err
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateUnit(ctx, &models.Unit{
		ProductID:  productID,
		Name:       strings.TrimSpace(input.Name),
		QtyPerUnit: input.QtyPerUnit,
		Price:      input.Price,
		Stock:      input.Stock,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert unit")
	}
	return unitDTO(created), nil
}

// UpdateUnit replaces the mutable fields of a unit. Price and stock set
// here are the authoritative values order placement reads.
func (s *service) UpdateUnit(ctx context.Context, unitID int64, input UnitInput) (*UnitDTO, error) {
	if err := validateUnitInput(0, input); err != nil {
		return nil, err
	}
	unit, err := s.loadUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	unit.Name = strings.TrimSpace(input.Name)
	unit.QtyPerUnit = input.QtyPerUnit
	unit.Price = input.Price
	unit.Stock = input.Stock
	if _, err := s.repo.UpdateUnit(ctx, unit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update unit")
	}
	return unitDTO(unit), nil
}

// DeleteUnit removes a unit unless it appears on an order.
func (s *service) DeleteUnit(ctx context.Context, unitID int64) error {
	if _, err := s.loadUnit(ctx, unitID); err != nil {
		return err
	}
	referenced, err := s.repo.CountOrderItemsByUnit(ctx, unitID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unit references")
	}
	if referenced > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "unit has order history and cannot be deleted")
	}
	if err := s.repo.DeleteUnit(ctx, unitID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete unit")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadUnit(ctx context.Context, id int64) (*models.Unit, error) {
	unit, err := s.repo.FindUnitByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	return unit, nil
}

func (s *service) pricingPass(ctx context.Context) (*pricing.Resolver, []models.Discount, error) {
	now := s.now()
	discounts, err := s.discountRepo.ListActive(ctx, now)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active discounts")
	}
	return pricing.NewResolver(now), discounts, nil
}

func unitDTO(unit *models.Unit) *UnitDTO {
	return &UnitDTO{
		ID:         unit.ID,
		ProductID:  unit.ProductID,
		Name:       unit.Name,
		QtyPerUnit: unit.QtyPerUnit,
		Price:      unit.Price,
		Stock:      unit.Stock,
	}
}

func validateUnitInput(index int, input UnitInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit %d: name is required", index))
	}
	if input.QtyPerUnit <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit %d: qty_per_unit must be positive", index))
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit %d: price must be non-negative", index))
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit %d: stock must be non-negative", index))
	}
	return nil
}
