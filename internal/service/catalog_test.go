package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricewise/catalog-admin/internal/domain"
	"github.com/pricewise/catalog-admin/internal/ingest"
	"github.com/pricewise/catalog-admin/internal/repository"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) CreateGraph(ctx context.Context, graph *domain.ProductGraph) error {
	args := m.Called(ctx, graph)
	return args.Error(0)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockVariantRepository struct {
	mock.Mock
}

func (m *mockVariantRepository) CreateGraph(ctx context.Context, graph *domain.VariantGraph) error {
	args := m.Called(ctx, graph)
	return args.Error(0)
}

func (m *mockVariantRepository) GetByID(ctx context.Context, id string) (*domain.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variant), args.Error(1)
}

func (m *mockVariantRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockVariantRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.CatalogRow, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CatalogRow), args.Int(1), args.Error(2)
}

type mockPriceRepository struct {
	mock.Mock
}

func (m *mockPriceRepository) Add(ctx context.Context, price *domain.Price) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishVariantCreated(ctx context.Context, v *domain.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishVariantDeleted(ctx context.Context, id string, productDeleted bool) error {
	args := m.Called(ctx, id, productDeleted)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishPriceAdded(ctx context.Context, price *domain.Price) error {
	args := m.Called(ctx, price)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testDeps struct {
	products *mockProductRepository
	variants *mockVariantRepository
	prices   *mockPriceRepository
	stats    *mockStatsRepository
	events   *mockEventPublisher
}

func newTestCatalogService() (*CatalogService, *testDeps) {
	deps := &testDeps{
		products: new(mockProductRepository),
		variants: new(mockVariantRepository),
		prices:   new(mockPriceRepository),
		stats:    new(mockStatsRepository),
		events:   new(mockEventPublisher),
	}
	svc := NewCatalogService(deps.products, deps.variants, deps.prices, deps.stats, deps.events, newTestLogger())
	return svc, deps
}

// --- Product Tests ---

func TestCreateProduct_Success(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.products.On("CreateGraph", ctx, mock.AnythingOfType("*domain.ProductGraph")).Return(nil)

	input := CreateProductInput{
		Localization: LocalizationInput{
			Name:  "Samsung Galaxy S24",
			Brand: "Samsung",
		},
		Specifications: []ingest.SpecPair{{Name: "Brand", Value: "Samsung"}},
		Countries:      []string{"PH", "SG"},
	}

	product, err := svc.CreateProduct(ctx, &input)

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "samsung-galaxy-s24", product.Slug)
	assert.Equal(t, domain.ProductStatusDraft, product.Status)
	assert.Equal(t, "smartphones", product.Category)
	assert.NotZero(t, product.CreatedAt)

	graph := deps.products.Calls[0].Arguments.Get(1).(*domain.ProductGraph)
	require.Len(t, graph.Localizations, 1)
	assert.Equal(t, "PH", graph.Localizations[0].Country)
	assert.Equal(t, "en", graph.Localizations[0].Language)
	assert.Len(t, graph.Specifications, 1)
	assert.Len(t, graph.Availability, 2)

	deps.products.AssertExpectations(t)
}

func TestCreateProduct_EmptyName(t *testing.T) {
	svc, _ := newTestCatalogService()

	product, err := svc.CreateProduct(context.Background(), &CreateProductInput{})

	assert.Nil(t, product)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateProduct_InvalidStatus(t *testing.T) {
	svc, _ := newTestCatalogService()

	input := CreateProductInput{
		Status:       "archived",
		Localization: LocalizationInput{Name: "Galaxy S24"},
	}

	product, err := svc.CreateProduct(context.Background(), &input)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateProduct_UserSlugKept(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.products.On("CreateGraph", ctx, mock.AnythingOfType("*domain.ProductGraph")).Return(nil)

	input := CreateProductInput{
		Slug:         "my-custom-slug",
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	product, err := svc.CreateProduct(ctx, &input)

	require.NoError(t, err)
	assert.Equal(t, "my-custom-slug", product.Slug)
}

func TestCreateProduct_SlugConflictRetried(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	conflict := apperrors.AlreadyExists("product", "slug", "samsung-galaxy-s24")
	deps.products.On("CreateGraph", ctx, mock.AnythingOfType("*domain.ProductGraph")).Return(conflict).Once()
	deps.products.On("CreateGraph", ctx, mock.AnythingOfType("*domain.ProductGraph")).Return(nil).Once()

	input := CreateProductInput{
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	product, err := svc.CreateProduct(ctx, &input)

	require.NoError(t, err)
	assert.Equal(t, "samsung-galaxy-s24-2", product.Slug)
	deps.products.AssertNumberOfCalls(t, "CreateGraph", 2)
}

func TestCreateProduct_SlugConflictExhausted(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	conflict := apperrors.AlreadyExists("product", "slug", "samsung-galaxy-s24")
	deps.products.On("CreateGraph", ctx, mock.AnythingOfType("*domain.ProductGraph")).Return(conflict)

	input := CreateProductInput{
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	product, err := svc.CreateProduct(ctx, &input)

	assert.Nil(t, product)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	deps.products.AssertNumberOfCalls(t, "CreateGraph", maxSlugAttempts+1)
}

// --- Variant Tests ---

func TestCreateVariant_ExistingProduct(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	existing := &domain.Product{ID: "prod-1", Slug: "samsung-galaxy-s24"}
	deps.products.On("GetBySlug", ctx, "samsung-galaxy-s24").Return(existing, nil)
	deps.variants.On("CreateGraph", ctx, mock.AnythingOfType("*domain.VariantGraph")).Return(nil)
	deps.events.On("PublishVariantCreated", ctx, mock.AnythingOfType("*domain.Variant")).Return(nil)

	input := CreateVariantInput{
		SKU:          "6571234",
		Color:        "Onyx Black",
		Storage:      "256GB",
		RAM:          "8GB",
		Localization: LocalizationInput{Name: "Samsung Galaxy S24", Brand: "Samsung"},
	}

	variant, err := svc.CreateVariant(ctx, &input)

	require.NoError(t, err)
	assert.NotEmpty(t, variant.ID)
	assert.Equal(t, "prod-1", variant.ProductID)
	assert.Equal(t, "6571234", variant.SKU)
	assert.Regexp(t, `^samsung-galaxy-s24-\d{6}$`, variant.Slug)
	assert.Equal(t, "Onyx Black", variant.Color)

	graph := deps.variants.Calls[0].Arguments.Get(1).(*domain.VariantGraph)
	assert.Nil(t, graph.NewProduct)

	deps.products.AssertExpectations(t)
	deps.variants.AssertExpectations(t)
	deps.events.AssertExpectations(t)
}

func TestCreateVariant_NewProductGraph(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.products.On("GetBySlug", ctx, "samsung-galaxy-s24").
		Return(nil, apperrors.NotFound("product", "samsung-galaxy-s24"))
	deps.variants.On("CreateGraph", ctx, mock.AnythingOfType("*domain.VariantGraph")).Return(nil)
	deps.events.On("PublishVariantCreated", ctx, mock.AnythingOfType("*domain.Variant")).Return(nil)

	input := CreateVariantInput{
		SKU:          "6571234",
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
		ProductSpecs: []ingest.SpecPair{{Name: "Brand", Value: "Samsung"}},
		VariantSpecs: []ingest.SpecPair{{Name: "Color", Value: "Onyx Black"}},
		Countries:    []string{"PH"},
	}

	variant, err := svc.CreateVariant(ctx, &input)

	require.NoError(t, err)

	graph := deps.variants.Calls[0].Arguments.Get(1).(*domain.VariantGraph)
	require.NotNil(t, graph.NewProduct)
	assert.Equal(t, "samsung-galaxy-s24", graph.NewProduct.Product.Slug)
	assert.Equal(t, graph.NewProduct.Product.ID, variant.ProductID)
	assert.Len(t, graph.NewProduct.Specifications, 1)
	assert.Len(t, graph.NewProduct.Availability, 1)
	assert.Len(t, graph.Specifications, 1)
}

func TestCreateVariant_MissingSKU(t *testing.T) {
	svc, _ := newTestCatalogService()

	input := CreateVariantInput{
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	variant, err := svc.CreateVariant(context.Background(), &input)

	assert.Nil(t, variant)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateVariant_SKUConflictNotRetried(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	existing := &domain.Product{ID: "prod-1", Slug: "samsung-galaxy-s24"}
	deps.products.On("GetBySlug", ctx, "samsung-galaxy-s24").Return(existing, nil)

	conflict := apperrors.AlreadyExists("variant", "sku", "6571234")
	deps.variants.On("CreateGraph", ctx, mock.AnythingOfType("*domain.VariantGraph")).Return(conflict)

	input := CreateVariantInput{
		SKU:          "6571234",
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	variant, err := svc.CreateVariant(ctx, &input)

	assert.Nil(t, variant)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	deps.variants.AssertNumberOfCalls(t, "CreateGraph", 1)
}

func TestCreateVariant_PublishFailureIgnored(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	existing := &domain.Product{ID: "prod-1", Slug: "samsung-galaxy-s24"}
	deps.products.On("GetBySlug", ctx, "samsung-galaxy-s24").Return(existing, nil)
	deps.variants.On("CreateGraph", ctx, mock.AnythingOfType("*domain.VariantGraph")).Return(nil)
	deps.events.On("PublishVariantCreated", ctx, mock.AnythingOfType("*domain.Variant")).
		Return(errors.New("broker unavailable"))

	input := CreateVariantInput{
		SKU:          "6571234",
		Localization: LocalizationInput{Name: "Samsung Galaxy S24"},
	}

	variant, err := svc.CreateVariant(ctx, &input)

	require.NoError(t, err)
	assert.NotNil(t, variant)
}

func TestDeleteVariant_LastVariant(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.variants.On("Delete", ctx, "var-1").Return(true, nil)
	deps.events.On("PublishVariantDeleted", ctx, "var-1", true).Return(nil)

	err := svc.DeleteVariant(ctx, "var-1")

	require.NoError(t, err)
	deps.variants.AssertExpectations(t)
	deps.events.AssertExpectations(t)
}

func TestDeleteVariant_NotFound(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.variants.On("Delete", ctx, "missing").Return(false, apperrors.NotFound("variant", "missing"))

	err := svc.DeleteVariant(ctx, "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	deps.events.AssertNotCalled(t, "PublishVariantDeleted", mock.Anything, mock.Anything, mock.Anything)
}

// --- Price Tests ---

func TestAddPrice_Success(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.prices.On("Add", ctx, mock.AnythingOfType("*domain.Price")).Return(nil)
	deps.events.On("PublishPriceAdded", ctx, mock.AnythingOfType("*domain.Price")).Return(nil)

	input := PriceInput{
		VariantID: "var-1",
		StoreName: "Best Buy",
		Country:   "PH",
		Price:     54990.00,
		Currency:  "php",
	}

	price, err := svc.AddPrice(ctx, &input)

	require.NoError(t, err)
	assert.NotEmpty(t, price.ID)
	assert.Equal(t, "PHP", price.Currency)
	assert.Equal(t, 54990.00, price.Price)
	deps.prices.AssertExpectations(t)
	deps.events.AssertExpectations(t)
}

func TestAddPrice_NonPositive(t *testing.T) {
	svc, _ := newTestCatalogService()

	input := PriceInput{
		VariantID: "var-1",
		StoreName: "Best Buy",
		Price:     0,
		Currency:  "PHP",
	}

	price, err := svc.AddPrice(context.Background(), &input)

	assert.Nil(t, price)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddPrice_VariantGone(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.prices.On("Add", ctx, mock.AnythingOfType("*domain.Price")).
		Return(apperrors.NotFound("variant", "var-1"))

	input := PriceInput{
		VariantID: "var-1",
		StoreName: "Best Buy",
		Price:     100.00,
		Currency:  "PHP",
	}

	price, err := svc.AddPrice(ctx, &input)

	assert.Nil(t, price)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	deps.events.AssertNotCalled(t, "PublishPriceAdded", mock.Anything, mock.Anything)
}

// --- Listing and Stats Tests ---

func TestListCatalog(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	rows := []domain.CatalogRow{{VariantID: "var-1", Name: "Samsung Galaxy S24"}}
	filter := repository.CatalogFilter{Page: 1, PerPage: 20}
	deps.variants.On("List", ctx, filter).Return(rows, 1, nil)

	got, total, err := svc.ListCatalog(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, got, 1)
}

func TestStats(t *testing.T) {
	svc, deps := newTestCatalogService()
	ctx := context.Background()

	deps.stats.On("Stats", ctx).Return(&domain.Stats{Products: 3, Variants: 7}, nil)

	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Products)
	assert.Equal(t, 7, stats.Variants)
}
