package repositories

import (
	"context"
	"errors"

	"estoque/internal/models"
)

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = errors.New("Produto não encontrado")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// Create inserts product and sets its ID.
	Create(ctx context.Context, product *models.Product) error
	// Update writes every column of product over the stored row.
	Update(ctx context.Context, product *models.Product) error
	// Delete issues a single delete statement without loading the row first.
	Delete(ctx context.Context, id uint) error
	// FindByNameLike returns products whose name contains name, ignoring case.
	FindByNameLike(ctx context.Context, name string) ([]models.Product, error)
	// FindByNameLikeAndMaxPrice narrows FindByNameLike to price <= maxPrice.
	FindByNameLikeAndMaxPrice(ctx context.Context, name string, maxPrice float64) ([]models.Product, error)
}
