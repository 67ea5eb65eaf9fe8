package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pricewise/catalog-admin/internal/ingest"
	"github.com/pricewise/catalog-admin/internal/repository"
	"github.com/pricewise/catalog-admin/internal/service"
	"github.com/pricewise/catalog-admin/pkg/httputil"
	"github.com/pricewise/catalog-admin/pkg/validator"
)

// maxBodySize limits request bodies to 1 MB.
const maxBodySize = 1 << 20

// CatalogHandler handles HTTP requests for catalog administration.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// LocalizationRequest is the localized text bundle in create requests.
type LocalizationRequest struct {
	Country          string `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Language         string `json:"language" validate:"omitempty,len=2"`
	Name             string `json:"name" validate:"required,min=1,max=500"`
	Brand            string `json:"brand" validate:"max=255"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	MetaTitle        string `json:"meta_title" validate:"max=255"`
	MetaDescription  string `json:"meta_description"`
	CanonicalURL     string `json:"canonical_url" validate:"omitempty,url"`
}

// SpecificationRequest is one name/value pair in create requests.
type SpecificationRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Value string `json:"value" validate:"required"`
}

// ImageRequest is one image reference in create requests.
type ImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	IsMain   bool   `json:"is_main"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Slug           string                 `json:"slug" validate:"max=255"`
	Status         string                 `json:"status" validate:"omitempty,oneof=draft active"`
	Category       string                 `json:"category" validate:"max=100"`
	Localization   LocalizationRequest    `json:"localization" validate:"required"`
	Specifications []SpecificationRequest `json:"specifications" validate:"dive"`
	Images         []ImageRequest         `json:"images" validate:"dive"`
	Countries      []string               `json:"countries" validate:"dive,iso3166_1_alpha2"`
}

// PriceRequest is one store offer in create requests.
type PriceRequest struct {
	StoreName     string  `json:"store_name" validate:"required,max=255"`
	Country       string  `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"required,iso4217"`
	AffiliateLink string  `json:"affiliate_link" validate:"omitempty,url"`
}

// CreateVariantRequest is the JSON request body for creating a variant.
type CreateVariantRequest struct {
	SKU          string                 `json:"sku" validate:"required,max=100"`
	Status       string                 `json:"status" validate:"omitempty,oneof=draft active"`
	Category     string                 `json:"category" validate:"max=100"`
	ProductSlug  string                 `json:"product_slug" validate:"max=255"`
	Color        string                 `json:"color" validate:"max=100"`
	Storage      string                 `json:"storage" validate:"max=100"`
	RAM          string                 `json:"ram" validate:"max=100"`
	Localization LocalizationRequest    `json:"localization" validate:"required"`
	ProductSpecs []SpecificationRequest `json:"product_specs" validate:"dive"`
	VariantSpecs []SpecificationRequest `json:"variant_specs" validate:"dive"`
	Images       []ImageRequest         `json:"images" validate:"dive"`
	Countries    []string               `json:"countries" validate:"dive,iso3166_1_alpha2"`
	Prices       []PriceRequest         `json:"prices" validate:"dive"`
}

// AddPriceRequest is the JSON request body for attaching a store offer.
type AddPriceRequest struct {
	VariantID     string  `json:"variant_id" validate:"required,uuid"`
	StoreName     string  `json:"store_name" validate:"required,max=255"`
	Country       string  `json:"country" validate:"omitempty,iso3166_1_alpha2"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"required,iso4217"`
	AffiliateLink string  `json:"affiliate_link" validate:"omitempty,url"`
}

func toLocalizationInput(req LocalizationRequest) service.LocalizationInput {
	return service.LocalizationInput{
		Country:          req.Country,
		Language:         req.Language,
		Name:             req.Name,
		Brand:            req.Brand,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		MetaTitle:        req.MetaTitle,
		MetaDescription:  req.MetaDescription,
		CanonicalURL:     req.CanonicalURL,
	}
}

func toSpecPairs(reqs []SpecificationRequest) []ingest.SpecPair {
	pairs := make([]ingest.SpecPair, 0, len(reqs))
	for _, r := range reqs {
		pairs = append(pairs, ingest.SpecPair{Name: r.Name, Value: r.Value})
	}
	return pairs
}

func toImageRefs(reqs []ImageRequest) []ingest.ImageRef {
	refs := make([]ingest.ImageRef, 0, len(reqs))
	for _, r := range reqs {
		refs = append(refs, ingest.ImageRef{ImageURL: r.ImageURL, IsMain: r.IsMain})
	}
	return refs
}

// --- Handlers ---

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Struct(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateProductInput{
		Slug:           req.Slug,
		Status:         req.Status,
		Category:       req.Category,
		Localization:   toLocalizationInput(req.Localization),
		Specifications: toSpecPairs(req.Specifications),
		Images:         toImageRefs(req.Images),
		Countries:      req.Countries,
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// CreateVariant handles POST /api/v1/variants
func (h *CatalogHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req CreateVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Struct(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateVariantInput{
		SKU:          req.SKU,
		Status:       req.Status,
		Category:     req.Category,
		ProductSlug:  req.ProductSlug,
		Color:        req.Color,
		Storage:      req.Storage,
		RAM:          req.RAM,
		Localization: toLocalizationInput(req.Localization),
		ProductSpecs: toSpecPairs(req.ProductSpecs),
		VariantSpecs: toSpecPairs(req.VariantSpecs),
		Images:       toImageRefs(req.Images),
		Countries:    req.Countries,
	}
	for _, p := range req.Prices {
		input.Prices = append(input.Prices, service.PriceInput{
			StoreName:     p.StoreName,
			Country:       p.Country,
			Price:         p.Price,
			Currency:      p.Currency,
			AffiliateLink: p.AffiliateLink,
		})
	}

	variant, err := h.service.CreateVariant(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: variant})
}

// ListVariants handles GET /api/v1/variants
func (h *CatalogHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	filter := repository.CatalogFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil && perPage > 0 && perPage <= 100 {
			filter.PerPage = perPage
		}
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	if v := r.URL.Query().Get("country"); v != "" {
		filter.Country = &v
	}

	rows, total, err := h.service.ListCatalog(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(rows, total, filter.Page, filter.PerPage))
}

// DeleteVariant handles DELETE /api/v1/variants/{id}
func (h *CatalogHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteVariant(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPrice handles POST /api/v1/prices
func (h *CatalogHandler) AddPrice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req AddPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Struct(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.PriceInput{
		VariantID:     req.VariantID,
		StoreName:     req.StoreName,
		Country:       req.Country,
		Price:         req.Price,
		Currency:      req.Currency,
		AffiliateLink: req.AffiliateLink,
	}

	price, err := h.service.AddPrice(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: price})
}

// GetStats handles GET /api/v1/stats
func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
