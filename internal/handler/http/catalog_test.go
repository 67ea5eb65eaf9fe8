package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricewise/catalog-admin/internal/bestbuy"
	"github.com/pricewise/catalog-admin/internal/domain"
	"github.com/pricewise/catalog-admin/internal/repository"
	"github.com/pricewise/catalog-admin/internal/service"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
	"github.com/pricewise/catalog-admin/pkg/httputil"
)

// ============================================================================
// Mocks
// ============================================================================

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

type fakeFetcher struct {
	record *bestbuy.Record
	raw    map[string]any
	err    error
}

func (f *fakeFetcher) Fetch(ctx context.Context, sku string) (*bestbuy.Record, map[string]any, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.record, f.raw, nil
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type catalogMocks struct {
	products *mockProductRepository
	variants *mockVariantRepository
	prices   *mockPriceRepository
	stats    *mockStatsRepository
	events   *mockEventPublisher
}

func newCatalogMocks() *catalogMocks {
	return &catalogMocks{
		products: new(mockProductRepository),
		variants: new(mockVariantRepository),
		prices:   new(mockPriceRepository),
		stats:    new(mockStatsRepository),
		events:   new(mockEventPublisher),
	}
}

// setupRouter creates a chi router matching the production route layout.
func setupRouter(mocks *catalogMocks, fetcher service.Fetcher) *chi.Mux {
	logger := testLogger()
	catalogSvc := service.NewCatalogService(mocks.products, mocks.variants, mocks.prices, mocks.stats, mocks.events, logger)
	prefillSvc := service.NewPrefillService(fetcher, nil, time.Hour, logger)

	catalogHandler := NewCatalogHandler(catalogSvc, logger)
	prefillHandler := NewPrefillHandler(prefillSvc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", catalogHandler.CreateProduct)
		r.Post("/variants", catalogHandler.CreateVariant)
		r.Get("/variants", catalogHandler.ListVariants)
		r.Post("/variants/prefill", prefillHandler.Prefill)
		r.Delete("/variants/{id}", catalogHandler.DeleteVariant)
		r.Post("/prices", catalogHandler.AddPrice)
		r.Get("/stats", catalogHandler.GetStats)
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func postJSON(router http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validCreateProductJSON() []byte {
	req := CreateProductRequest{
		Localization: LocalizationRequest{
			Country: "PH",
			Name:    "Samsung Galaxy S24",
			Brand:   "Samsung",
		},
		Specifications: []SpecificationRequest{{Name: "Brand", Value: "Samsung"}},
		Countries:      []string{"PH"},
	}
	b, _ := json.Marshal(req)
	return b
}

func validCreateVariantJSON() []byte {
	req := CreateVariantRequest{
		SKU:   "6571234",
		Color: "Onyx Black",
		Localization: LocalizationRequest{
			Name:  "Samsung Galaxy S24",
			Brand: "Samsung",
		},
		VariantSpecs: []SpecificationRequest{{Name: "Color", Value: "Onyx Black"}},
		Countries:    []string{"PH"},
	}
	b, _ := json.Marshal(req)
	return b
}

// ============================================================================
// POST /api/v1/products
// ============================================================================

func TestCreateProduct_Created(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	mocks.products.On("CreateGraph", mock.Anything, mock.AnythingOfType("*domain.ProductGraph")).Return(nil)

	rec := postJSON(router, "/api/v1/products", validCreateProductJSON())

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	mocks.products.AssertExpectations(t)
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	rec := postJSON(router, "/api/v1/products", []byte(`{invalid json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCreateProduct_MissingName(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	rec := postJSON(router, "/api/v1/products", []byte(`{"localization":{"country":"PH"}}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "name")
}

func TestCreateProduct_BadCountryCode(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	body := []byte(`{"localization":{"name":"Galaxy S24"},"countries":["Philippines"]}`)
	rec := postJSON(router, "/api/v1/products", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateProduct_SlugConflict(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	conflict := apperrors.AlreadyExists("product", "slug", "samsung-galaxy-s24")
	mocks.products.On("CreateGraph", mock.Anything, mock.AnythingOfType("*domain.ProductGraph")).Return(conflict)

	rec := postJSON(router, "/api/v1/products", validCreateProductJSON())

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================================================
// POST /api/v1/variants
// ============================================================================

func TestCreateVariant_Created(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	existing := &domain.Product{ID: "550e8400-e29b-41d4-a716-446655440001", Slug: "samsung-galaxy-s24"}
	mocks.products.On("GetBySlug", mock.Anything, "samsung-galaxy-s24").Return(existing, nil)
	mocks.variants.On("CreateGraph", mock.Anything, mock.AnythingOfType("*domain.VariantGraph")).Return(nil)
	mocks.events.On("PublishVariantCreated", mock.Anything, mock.AnythingOfType("*domain.Variant")).Return(nil)

	rec := postJSON(router, "/api/v1/variants", validCreateVariantJSON())

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "6571234", data["sku"])
	mocks.variants.AssertExpectations(t)
}

func TestCreateVariant_MissingSKU(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	rec := postJSON(router, "/api/v1/variants", []byte(`{"localization":{"name":"Galaxy S24"}}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "sku")
}

func TestCreateVariant_DuplicateSKU(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	existing := &domain.Product{ID: "550e8400-e29b-41d4-a716-446655440001", Slug: "samsung-galaxy-s24"}
	mocks.products.On("GetBySlug", mock.Anything, "samsung-galaxy-s24").Return(existing, nil)
	mocks.variants.On("CreateGraph", mock.Anything, mock.AnythingOfType("*domain.VariantGraph")).
		Return(apperrors.AlreadyExists("variant", "sku", "6571234"))

	rec := postJSON(router, "/api/v1/variants", validCreateVariantJSON())

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================================================
// GET /api/v1/variants
// ============================================================================

func TestListVariants_PaginatedEnvelope(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	rows := []domain.CatalogRow{
		{VariantID: "var-1", SKU: "6571234", Name: "Samsung Galaxy S24", Countries: []string{"PH"}},
	}
	mocks.variants.On("List", mock.Anything, mock.AnythingOfType("repository.CatalogFilter")).Return(rows, 45, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variants?page=2&per_page=20&status=active", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[domain.CatalogRow]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 45, resp.TotalCount)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.Len(t, resp.Data, 1)

	filter := mocks.variants.Calls[0].Arguments.Get(1).(repository.CatalogFilter)
	assert.Equal(t, 2, filter.Page)
	require.NotNil(t, filter.Status)
	assert.Equal(t, "active", *filter.Status)
}

func TestListVariants_DefaultsApplied(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	mocks.variants.On("List", mock.Anything, mock.AnythingOfType("repository.CatalogFilter")).
		Return([]domain.CatalogRow{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variants", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	filter := mocks.variants.Calls[0].Arguments.Get(1).(repository.CatalogFilter)
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PerPage)
	assert.Nil(t, filter.Status)
}

// ============================================================================
// DELETE /api/v1/variants/{id}
// ============================================================================

func TestDeleteVariant_NoContent(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	id := "550e8400-e29b-41d4-a716-446655440002"
	mocks.variants.On("Delete", mock.Anything, id).Return(true, nil)
	mocks.events.On("PublishVariantDeleted", mock.Anything, id, true).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/variants/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	mocks.variants.AssertExpectations(t)
}

func TestDeleteVariant_InvalidUUID(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/variants/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestDeleteVariant_NotFound(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	id := "550e8400-e29b-41d4-a716-446655440003"
	mocks.variants.On("Delete", mock.Anything, id).Return(false, apperrors.NotFound("variant", id))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/variants/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// POST /api/v1/prices
// ============================================================================

func TestAddPrice_Created(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	mocks.prices.On("Add", mock.Anything, mock.AnythingOfType("*domain.Price")).Return(nil)
	mocks.events.On("PublishPriceAdded", mock.Anything, mock.AnythingOfType("*domain.Price")).Return(nil)

	body := []byte(`{
		"variant_id": "550e8400-e29b-41d4-a716-446655440002",
		"store_name": "Best Buy",
		"country": "PH",
		"price": 54990.00,
		"currency": "PHP",
		"affiliate_link": "https://example.com/deal"
	}`)
	rec := postJSON(router, "/api/v1/prices", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	mocks.prices.AssertExpectations(t)
}

func TestAddPrice_BadCurrency(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	body := []byte(`{
		"variant_id": "550e8400-e29b-41d4-a716-446655440002",
		"store_name": "Best Buy",
		"price": 100.00,
		"currency": "pesos"
	}`)
	rec := postJSON(router, "/api/v1/prices", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "currency")
}

// ============================================================================
// POST /api/v1/variants/prefill
// ============================================================================

func TestPrefill_ReturnsProjection(t *testing.T) {
	mocks := newCatalogMocks()
	fetcher := &fakeFetcher{
		record: &bestbuy.Record{
			SKU:          "6571234",
			Name:         "Samsung Galaxy S24",
			Manufacturer: "Samsung",
			Details:      []bestbuy.Detail{{Name: "Color", Value: "Onyx Black"}},
		},
		raw: map[string]any{"sku": float64(6571234)},
	}
	router := setupRouter(mocks, fetcher)

	rec := postJSON(router, "/api/v1/variants/prefill", []byte(`{"sku":"6571234"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "6571234", data["sku"])
	projection := data["projection"].(map[string]any)
	assert.Equal(t, "Samsung Galaxy S24", projection["name"])
}

func TestPrefill_MissingSKU(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	rec := postJSON(router, "/api/v1/variants/prefill", []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestPrefill_UpstreamFailure(t *testing.T) {
	mocks := newCatalogMocks()
	fetcher := &fakeFetcher{err: apperrors.RemoteService("bestbuy", 502)}
	router := setupRouter(mocks, fetcher)

	rec := postJSON(router, "/api/v1/variants/prefill", []byte(`{"sku":"6571234"}`))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
}

func TestPrefill_NotConfigured(t *testing.T) {
	mocks := newCatalogMocks()
	fetcher := &fakeFetcher{err: apperrors.Configuration("BESTBUY_API_KEY")}
	router := setupRouter(mocks, fetcher)

	rec := postJSON(router, "/api/v1/variants/prefill", []byte(`{"sku":"6571234"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ============================================================================
// GET /api/v1/stats
// ============================================================================

func TestGetStats_OK(t *testing.T) {
	mocks := newCatalogMocks()
	router := setupRouter(mocks, &fakeFetcher{})

	mocks.stats.On("Stats", mock.Anything).Return(&domain.Stats{Products: 3, Variants: 8, Prices: 12}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(3), data["products"])
	assert.Equal(t, float64(8), data["variants"])
}
