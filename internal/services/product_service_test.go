package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindByNameLike(ctx context.Context, name string) ([]models.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNameLikeAndMaxPrice(ctx context.Context, name string, maxPrice float64) ([]models.Product, error) {
	args := m.Called(ctx, name, maxPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int { return &i }

func pen() models.ProductInput {
	return models.ProductInput{
		Name:          strPtr("Caneta Azul"),
		Description:   strPtr("Caneta esferográfica azul"),
		Price:         floatPtr(2.5),
		StockQuantity: intPtr(100),
	}
}

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Description: "First", Price: 10.0, StockQuantity: 100},
		{ID: 2, Name: "Product B", Description: "Second", Price: 20.0, StockQuantity: 50},
	}

	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: 1, Name: "Product A", Description: "First", Price: 10.0, StockQuantity: 100}

	mockRepo.On("GetByID", ctx, uint(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, repositories.ErrProductNotFound).Once()
	product, err = service.GetProductByID(ctx, 99)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Product).ID = 7 }).
		Return(nil).Once()
	stored := &models.Product{ID: 7, Name: "Caneta Azul", Description: "Caneta esferográfica azul", Price: 2.5, StockQuantity: 100}
	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil).Once()

	created, err := service.CreateProduct(ctx, pen())

	require.NoError(t, err)
	assert.Equal(t, stored, created)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(fmt.Errorf("database error")).Once()

	created, err := service.CreateProduct(ctx, pen())

	assert.Nil(t, created)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	assert.NotErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_OverwritesAllFields(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: 3, Name: "Old", Description: "Old description", Price: 1, StockQuantity: 1}
	mockRepo.On("GetByID", ctx, uint(3)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, &models.Product{
		ID: 3, Name: "Caneta Azul", Description: "Caneta esferográfica azul", Price: 2.5, StockQuantity: 100,
	}).Return(nil).Once()

	err := service.UpdateProduct(ctx, 3, pen())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, repositories.ErrProductNotFound).Once()

	err := service.UpdateProduct(ctx, 99, pen())

	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_PatchProduct_OnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: 4, Name: "Caneta Azul", Description: "Caneta esferográfica azul", Price: 2.5, StockQuantity: 100}
	mockRepo.On("GetByID", ctx, uint(4)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, &models.Product{
		ID: 4, Name: "Caneta Azul", Description: "Caneta esferográfica azul", Price: 3.0, StockQuantity: 100,
	}).Return(nil).Once()

	err := service.PatchProduct(ctx, 4, models.ProductPatch{Price: floatPtr(3.0)})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_PatchProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", ctx, uint(5)).Return(nil, repositories.ErrProductNotFound).Once()

	err := service.PatchProduct(ctx, 5, models.ProductPatch{Name: strPtr("Lapis")})

	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1}, nil).Once()
	mockRepo.On("Delete", ctx, uint(1)).Return(nil).Once()
	assert.NoError(t, service.DeleteProduct(ctx, 1))

	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, repositories.ErrProductNotFound).Once()
	err := service.DeleteProduct(ctx, 99)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProductService_Search(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	widgets := []models.Product{{ID: 1, Name: "Widget", Description: "A widget", Price: 5, StockQuantity: 1}}
	mockRepo.On("FindByNameLike", ctx, "wid").Return(widgets, nil).Once()
	mockRepo.On("FindByNameLikeAndMaxPrice", ctx, "wid", 4.0).Return([]models.Product{}, nil).Once()

	byName, err := service.SearchByName(ctx, "wid")
	require.NoError(t, err)
	assert.Equal(t, widgets, byName)

	byPrice, err := service.SearchByNameAndMaxPrice(ctx, "wid", 4.0)
	require.NoError(t, err)
	assert.Empty(t, byPrice)
	mockRepo.AssertExpectations(t)
}

func TestProductService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	publisher := new(MockPublisher)
	service := services.NewProductService(repo, publisher)

	var events []services.ProductEvent
	publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			var ev services.ProductEvent
			require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &ev))
			assert.Equal(t, args.String(0), ev.Type)
			events = append(events, ev)
		}).
		Return(nil)

	created, err := service.CreateProduct(ctx, pen())
	require.NoError(t, err)
	require.NoError(t, service.PatchProduct(ctx, created.ID, models.ProductPatch{StockQuantity: intPtr(5)}))
	require.NoError(t, service.DeleteProduct(ctx, created.ID))

	require.Len(t, events, 3)
	assert.Equal(t, services.EventProductCreated, events[0].Type)
	assert.Equal(t, services.EventProductUpdated, events[1].Type)
	assert.Equal(t, 5, events[1].Product.StockQuantity)
	assert.Equal(t, services.EventProductDeleted, events[2].Type)
	assert.Nil(t, events[2].Product)
	for _, ev := range events {
		assert.Equal(t, created.ID, ev.ProductID)
		assert.NotEmpty(t, ev.ID)
	}
}

func TestProductService_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	publisher := new(MockPublisher)
	publisher.On("Publish", services.EventProductCreated, mock.Anything).Return(fmt.Errorf("broker down")).Once()
	service := services.NewProductService(repositories.NewMockProductRepository(), publisher)

	created, err := service.CreateProduct(ctx, pen())

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	publisher.AssertExpectations(t)
}

func TestProductService_PatchLeavesOmittedFieldsUnchanged(t *testing.T) {
	ctx := context.Background()
	service := services.NewProductService(repositories.NewMockProductRepository(), nil)

	created, err := service.CreateProduct(ctx, pen())
	require.NoError(t, err)

	require.NoError(t, service.PatchProduct(ctx, created.ID, models.ProductPatch{Price: floatPtr(3.0)}))

	after, err := service.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, after.Price)
	assert.Equal(t, created.Name, after.Name)
	assert.Equal(t, created.Description, after.Description)
	assert.Equal(t, created.StockQuantity, after.StockQuantity)
	assert.Equal(t, created.ID, after.ID)
}

func TestProductService_MissingIDNeverMutates(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo, nil)

	created, err := service.CreateProduct(ctx, pen())
	require.NoError(t, err)

	assert.ErrorIs(t, service.UpdateProduct(ctx, 42, pen()), services.ErrProductNotFound)
	assert.ErrorIs(t, service.PatchProduct(ctx, 42, models.ProductPatch{Name: strPtr("Lapis")}), services.ErrProductNotFound)
	assert.ErrorIs(t, service.DeleteProduct(ctx, 42), services.ErrProductNotFound)

	all, err := service.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{*created}, all)
}
