package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/lokapasar/lokapasar-backend/pkg/db/models"
)

// Repository wires catalog persistence for categories, products and units.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Units", "Category").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product; unit rows go with it via FK cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// FindProductByID loads a product with its category and units.
func (r *Repository) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns products with categories and units preloaded.
// When activeOnly is set, inactive products are filtered out.
func (r *Repository) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("id ASC")
	if activeOnly {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Product
	err := qb.Find(&rows).Error
	return rows, err
}

// CreateUnit inserts a unit row.
func (r *Repository) CreateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if err := r.db.WithContext(ctx).Create(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

// UpdateUnit saves an existing unit row.
func (r *Repository) UpdateUnit(ctx context.Context, unit *models.Unit) (*models.Unit, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Save(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

// DeleteUnit removes a unit row.
func (r *Repository) DeleteUnit(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Unit{}).Error
}

// FindUnitByID loads a unit with its parent product.
func (r *Repository) FindUnitByID(ctx context.Context, id int64) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&unit, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// CountOrderItemsByUnit reports how many order line items reference the
// unit. Units with history cannot be deleted.
func (r *Repository) CountOrderItemsByUnit(ctx context.Context, unitID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("unit_id = ?", unitID).
		Count(&count).
		Error
	return count, err
}

// CountOrderItemsByProduct reports how many order line items reference any
// unit of the product.
func (r *Repository) CountOrderItemsByProduct(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN units ON units.id = order_items.unit_id").
		Where("units.product_id = ?", productID).
		Count(&count).
		Error
	return count, err
}
