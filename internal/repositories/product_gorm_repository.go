package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estoque/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product; the database assigns its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = 0
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update saves every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, res.Error)
	}
	// RowsAffected is not checked: MySQL reports 0 when no value changed.
	return nil
}

// Delete removes a product by its ID with a single DELETE statement.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// FindByNameLike returns the products whose name contains name, ignoring case.
func (r *GORMProductRepository) FindByNameLike(ctx context.Context, name string) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Where("LOWER(nome) LIKE ?", likePattern(name)).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name %q: %w", name, err)
	}
	return products, nil
}

// FindByNameLikeAndMaxPrice returns the products whose name contains name,
// ignoring case, and whose price does not exceed maxPrice.
func (r *GORMProductRepository) FindByNameLikeAndMaxPrice(ctx context.Context, name string, maxPrice float64) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Where("LOWER(nome) LIKE ? AND preco <= ?", likePattern(name), maxPrice).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name %q and price <= %v: %w", name, maxPrice, err)
	}
	return products, nil
}

// likePattern lowers name and wraps it for a substring match. LIKE wildcards
// inside name are passed through.
func likePattern(name string) string {
	return "%" + strings.ToLower(name) + "%"
}
