package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pricewise/catalog-admin/internal/domain"
	"github.com/pricewise/catalog-admin/internal/form"
	"github.com/pricewise/catalog-admin/internal/ingest"
	"github.com/pricewise/catalog-admin/internal/repository"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
	"github.com/pricewise/catalog-admin/pkg/slug"
)

// maxSlugAttempts bounds how many counter suffixes are tried when the slug
// unique constraint rejects an insert.
const maxSlugAttempts = 3

// EventPublisher publishes catalog domain events. Satisfied by
// event.Producer.
type EventPublisher interface {
	PublishVariantCreated(ctx context.Context, v *domain.Variant) error
	PublishVariantDeleted(ctx context.Context, id string, productDeleted bool) error
	PublishPriceAdded(ctx context.Context, price *domain.Price) error
}

// CatalogService implements the business logic for catalog administration.
type CatalogService struct {
	products repository.ProductRepository
	variants repository.VariantRepository
	prices   repository.PriceRepository
	stats    repository.StatsRepository
	events   EventPublisher
	logger   *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(
	products repository.ProductRepository,
	variants repository.VariantRepository,
	prices repository.PriceRepository,
	stats repository.StatsRepository,
	events EventPublisher,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products: products,
		variants: variants,
		prices:   prices,
		stats:    stats,
		events:   events,
		logger:   logger,
	}
}

// LocalizationInput holds the localized text bundle for a create operation.
type LocalizationInput struct {
	Country          string
	Language         string
	Name             string
	Brand            string
	ShortDescription string
	LongDescription  string
	MetaTitle        string
	MetaDescription  string
	CanonicalURL     string
}

// CreateProductInput holds the parameters for creating a product graph.
type CreateProductInput struct {
	Slug           string
	Status         string
	Category       string
	Localization   LocalizationInput
	Specifications []ingest.SpecPair
	Images         []ingest.ImageRef
	Countries      []string
}

// CreateProduct creates a product with its localization, specifications,
// images, and availability in one transaction. A missing slug is derived
// from the display name; constraint collisions are retried with a counter
// suffix.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Localization.Name) == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}

	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("status must be draft or active")
	}

	baseSlug := input.Slug
	if baseSlug == "" {
		baseSlug = slug.Generate(input.Localization.Name)
	}
	if baseSlug == "" {
		return nil, apperrors.InvalidInput("product name yields an empty slug")
	}

	category := input.Category
	if category == "" {
		category = form.DefaultCategory
	}

	graph := s.buildProductGraph(baseSlug, status, category, input.Localization, input.Specifications, input.Images, input.Countries)

	for attempt := 0; ; attempt++ {
		err := s.products.CreateGraph(ctx, graph)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) && attempt < maxSlugAttempts {
			graph.Product.Slug = slug.WithCounter(baseSlug, attempt+2)
			s.logger.WarnContext(ctx, "product slug taken, retrying with counter",
				slog.String("slug", graph.Product.Slug),
			)
			continue
		}
		return nil, fmt.Errorf("create product graph: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", graph.Product.ID),
		slog.String("slug", graph.Product.Slug),
	)

	product := graph.Product
	return &product, nil
}

// PriceInput holds the parameters for one store offer.
type PriceInput struct {
	VariantID     string
	StoreName     string
	Country       string
	Price         float64
	Currency      string
	AffiliateLink string
}

// CreateVariantInput holds the parameters for creating a variant graph.
type CreateVariantInput struct {
	SKU          string
	Status       string
	Category     string
	ProductSlug  string
	Color        string
	Storage      string
	RAM          string
	Localization LocalizationInput
	ProductSpecs []ingest.SpecPair
	VariantSpecs []ingest.SpecPair
	Images       []ingest.ImageRef
	Countries    []string
	Prices       []PriceInput
}

// CreateVariant creates a variant with its children in one transaction.
// When no product exists under the base slug, the owning product graph
// (carrying the product-level specs and availability) is created in the same
// transaction; otherwise the variant attaches to the existing product.
func (s *CatalogService) CreateVariant(ctx context.Context, input *CreateVariantInput) (*domain.Variant, error) {
	name := strings.TrimSpace(input.Localization.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("variant name is required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, apperrors.InvalidInput("sku is required")
	}

	status := input.Status
	if status == "" {
		status = domain.ProductStatusDraft
	}
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("status must be draft or active")
	}

	productSlug := input.ProductSlug
	if productSlug == "" {
		productSlug = slug.Generate(name)
	}
	if productSlug == "" {
		return nil, apperrors.InvalidInput("variant name yields an empty slug")
	}

	category := input.Category
	if category == "" {
		category = form.DefaultCategory
	}

	now := time.Now().UTC()
	graph := &domain.VariantGraph{
		Variant: domain.Variant{
			ID:        uuid.New().String(),
			SKU:       strings.TrimSpace(input.SKU),
			Slug:      slug.Variant(name),
			Status:    status,
			Color:     input.Color,
			Storage:   input.Storage,
			RAM:       input.RAM,
			CreatedAt: now,
		},
	}

	existing, err := s.products.GetBySlug(ctx, productSlug)
	switch {
	case err == nil:
		graph.Variant.ProductID = existing.ID
	case errors.Is(err, apperrors.ErrNotFound):
		newProduct := s.buildProductGraph(productSlug, status, category, input.Localization, input.ProductSpecs, nil, input.Countries)
		graph.NewProduct = newProduct
		graph.Variant.ProductID = newProduct.Product.ID
	default:
		return nil, fmt.Errorf("resolve owning product: %w", err)
	}

	graph.Localizations = s.buildLocalizations(input.Localization, now)
	for _, spec := range input.VariantSpecs {
		graph.Specifications = append(graph.Specifications, domain.Specification{
			ID: uuid.New().String(), Name: spec.Name, Value: spec.Value, CreatedAt: now,
		})
	}
	for _, img := range input.Images {
		graph.Images = append(graph.Images, domain.Image{
			ID: uuid.New().String(), ImageURL: img.ImageURL, IsMain: img.IsMain, CreatedAt: now,
		})
	}
	for _, pr := range input.Prices {
		graph.Prices = append(graph.Prices, domain.Price{
			ID: uuid.New().String(), StoreName: pr.StoreName, Country: pr.Country,
			Price: pr.Price, Currency: pr.Currency, AffiliateLink: pr.AffiliateLink, CreatedAt: now,
		})
	}

	baseVariantSlug := graph.Variant.Slug
	for attempt := 0; ; attempt++ {
		err := s.variants.CreateGraph(ctx, graph)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) && strings.Contains(err.Error(), "slug") && attempt < maxSlugAttempts {
			graph.Variant.Slug = slug.WithCounter(baseVariantSlug, attempt+2)
			s.logger.WarnContext(ctx, "variant slug taken, retrying with counter",
				slog.String("slug", graph.Variant.Slug),
			)
			continue
		}
		return nil, fmt.Errorf("create variant graph: %w", err)
	}

	if err := s.events.PublishVariantCreated(ctx, &graph.Variant); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish variant.created event",
			slog.String("variant_id", graph.Variant.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "variant created",
		slog.String("variant_id", graph.Variant.ID),
		slog.String("sku", graph.Variant.SKU),
		slog.String("slug", graph.Variant.Slug),
	)

	variant := graph.Variant
	return &variant, nil
}

// DeleteVariant removes a variant and its children; the owning product goes
// too when this was its last variant.
func (s *CatalogService) DeleteVariant(ctx context.Context, id string) error {
	productDeleted, err := s.variants.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}

	if err := s.events.PublishVariantDeleted(ctx, id, productDeleted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish variant.deleted event",
			slog.String("variant_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "variant deleted",
		slog.String("variant_id", id),
		slog.Bool("product_deleted", productDeleted),
	)
	return nil
}

// ListCatalog returns flattened catalog rows for the admin listing.
func (s *CatalogService) ListCatalog(ctx context.Context, filter repository.CatalogFilter) ([]domain.CatalogRow, int, error) {
	rows, total, err := s.variants.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog: %w", err)
	}
	return rows, total, nil
}

// AddPrice attaches a store offer to a variant.
func (s *CatalogService) AddPrice(ctx context.Context, input *PriceInput) (*domain.Price, error) {
	if input.VariantID == "" {
		return nil, apperrors.InvalidInput("variant id is required")
	}
	if strings.TrimSpace(input.StoreName) == "" {
		return nil, apperrors.InvalidInput("store name is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if len(input.Currency) != 3 {
		return nil, apperrors.InvalidInput("currency must be a 3-letter ISO code")
	}

	price := &domain.Price{
		ID:            uuid.New().String(),
		VariantID:     input.VariantID,
		StoreName:     strings.TrimSpace(input.StoreName),
		Country:       input.Country,
		Price:         input.Price,
		Currency:      strings.ToUpper(input.Currency),
		AffiliateLink: input.AffiliateLink,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.prices.Add(ctx, price); err != nil {
		return nil, fmt.Errorf("add price: %w", err)
	}

	if err := s.events.PublishPriceAdded(ctx, price); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish price.added event",
			slog.String("price_id", price.ID),
			slog.String("error", err.Error()),
		)
	}

	return price, nil
}

// Stats returns catalog-wide counts for the dashboard.
func (s *CatalogService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

func (s *CatalogService) buildProductGraph(
	productSlug, status, category string,
	loc LocalizationInput,
	specs []ingest.SpecPair,
	images []ingest.ImageRef,
	countries []string,
) *domain.ProductGraph {
	now := time.Now().UTC()
	graph := &domain.ProductGraph{
		Product: domain.Product{
			ID:        uuid.New().String(),
			Slug:      productSlug,
			Status:    status,
			Category:  category,
			CreatedAt: now,
		},
	}

	graph.Localizations = s.buildLocalizations(loc, now)
	for _, spec := range specs {
		graph.Specifications = append(graph.Specifications, domain.Specification{
			ID: uuid.New().String(), Name: spec.Name, Value: spec.Value, CreatedAt: now,
		})
	}
	for _, img := range images {
		graph.Images = append(graph.Images, domain.Image{
			ID: uuid.New().String(), ImageURL: img.ImageURL, IsMain: img.IsMain, CreatedAt: now,
		})
	}

	seen := make(map[string]struct{}, len(countries))
	for _, country := range countries {
		if _, ok := seen[country]; ok {
			continue
		}
		seen[country] = struct{}{}
		graph.Availability = append(graph.Availability, domain.Availability{
			ID: uuid.New().String(), Country: country, CreatedAt: now,
		})
	}

	return graph
}

func (s *CatalogService) buildLocalizations(loc LocalizationInput, now time.Time) []domain.Localization {
	country := loc.Country
	if country == "" {
		country = form.DefaultCountry
	}
	language := loc.Language
	if language == "" {
		language = form.DefaultLanguage
	}

	return []domain.Localization{{
		ID:               uuid.New().String(),
		Country:          country,
		Language:         language,
		Name:             loc.Name,
		Brand:            loc.Brand,
		ShortDescription: loc.ShortDescription,
		LongDescription:  loc.LongDescription,
		MetaTitle:        loc.MetaTitle,
		MetaDescription:  loc.MetaDescription,
		CanonicalURL:     loc.CanonicalURL,
		CreatedAt:        now,
	}}
}
