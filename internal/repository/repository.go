package repository

import (
	"context"

	"github.com/pricewise/catalog-admin/internal/domain"
)

// CatalogFilter defines filter criteria for the flattened variant listing.
type CatalogFilter struct {
	Search   *string
	Status   *string
	Category *string
	Country  *string
	Page     int
	PerPage  int
}

// ProductRepository persists product graphs.
type ProductRepository interface {
	// CreateGraph inserts a product with all of its child rows in one
	// transaction.
	CreateGraph(ctx context.Context, graph *domain.ProductGraph) error

	// GetBySlug retrieves a product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

// VariantRepository persists variant graphs and serves the admin listing.
type VariantRepository interface {
	// CreateGraph inserts a variant with all of its child rows in one
	// transaction. When graph.NewProduct is set, the owning product graph is
	// created in the same transaction.
	CreateGraph(ctx context.Context, graph *domain.VariantGraph) error

	// GetByID retrieves a variant by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Variant, error)

	// Delete removes a variant and its child rows. If it was the last
	// variant of its product, the product and its children are removed too.
	// Reports whether the owning product was also deleted.
	Delete(ctx context.Context, id string) (productDeleted bool, err error)

	// List returns flattened catalog rows matching the filter with the
	// total count.
	List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogRow, int, error)
}

// PriceRepository persists store offers.
type PriceRepository interface {
	// Add inserts a price row for a variant.
	Add(ctx context.Context, price *domain.Price) error
}

// StatsRepository serves the dashboard summary.
type StatsRepository interface {
	// Stats returns catalog-wide counts.
	Stats(ctx context.Context) (*domain.Stats, error)
}
