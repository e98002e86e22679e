package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estoque/internal/models"
	"estoque/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrProductNotFound is returned when an operation references a missing product.
var ErrProductNotFound = repositories.ErrProductNotFound

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no product events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product and reads it back by its assigned ID.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := input.ToProduct()
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm product %d after insert: %w", product.ID, err)
	}

	s.publish(EventProductCreated, created.ID, created)
	return created, nil
}

// UpdateProduct overwrites every mutable field of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input models.ProductInput) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	replacement := input.ToProduct()
	product.Name = replacement.Name
	product.Description = replacement.Description
	product.Price = replacement.Price
	product.StockQuantity = replacement.StockQuantity

	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.publish(EventProductUpdated, product.ID, product)
	return nil
}

// PatchProduct overwrites only the fields present in patch and saves the
// merged product once.
func (s *ProductService) PatchProduct(ctx context.Context, id uint, patch models.ProductPatch) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	patch.ApplyTo(product)

	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.publish(EventProductUpdated, product.ID, product)
	return nil
}

// DeleteProduct deletes a product by its ID after checking it exists.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(EventProductDeleted, id, nil)
	return nil
}

// SearchByName returns products whose name contains name, ignoring case.
func (s *ProductService) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	return s.repo.FindByNameLike(ctx, name)
}

// SearchByNameAndMaxPrice returns products whose name contains name,
// ignoring case, priced at or below maxPrice.
func (s *ProductService) SearchByNameAndMaxPrice(ctx context.Context, name string, maxPrice float64) ([]models.Product, error) {
	return s.repo.FindByNameLikeAndMaxPrice(ctx, name, maxPrice)
}

// publish emits a product event. Failures are logged and never reach the caller.
func (s *ProductService) publish(eventType string, productID uint, product *models.Product) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Uint("product_id", productID).Msg("failed to marshal product event")
		return
	}

	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Warn().Err(err).Str("event", eventType).Uint("product_id", productID).Msg("failed to publish product event")
	}
}
