package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pricewise/catalog-admin/internal/domain"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateGraph inserts the product and all of its child rows in a single
// transaction, so a failure partway through leaves no orphans.
func (r *ProductRepository) CreateGraph(ctx context.Context, graph *domain.ProductGraph) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin product graph tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertProductGraph(ctx, tx, graph); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit product graph: %w", err)
	}
	return nil
}

// GetBySlug retrieves a product by its URL slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
		SELECT id, slug, status, category, created_at
		FROM products
		WHERE slug = $1`

	var p domain.Product
	err := r.db.QueryRow(ctx, query, slug).Scan(&p.ID, &p.Slug, &p.Status, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return &p, nil
}

// insertProductGraph writes the product row and all child rows using the
// given executor. Callers own the transaction boundary.
func insertProductGraph(ctx context.Context, ex executor, graph *domain.ProductGraph) error {
	p := graph.Product

	_, err := ex.Exec(ctx, `
		INSERT INTO products (id, slug, status, category, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Slug, p.Status, p.Category, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for _, l := range graph.Localizations {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_localizations
				(id, product_id, country, language, name, brand, short_description, long_description, meta_title, meta_description, canonical_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			l.ID, p.ID, l.Country, l.Language, l.Name, l.Brand,
			l.ShortDescription, l.LongDescription, l.MetaTitle, l.MetaDescription, l.CanonicalURL, l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product localization: %w", err)
		}
	}

	for _, s := range graph.Specifications {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_specifications (id, product_id, name, value, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			s.ID, p.ID, s.Name, s.Value, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product specification: %w", err)
		}
	}

	for _, img := range graph.Images {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_images (id, product_id, image_url, is_main, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			img.ID, p.ID, img.ImageURL, img.IsMain, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	for _, av := range graph.Availability {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_availability (id, product_id, country, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, country) DO NOTHING`,
			av.ID, p.ID, av.Country, av.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product availability: %w", err)
		}
	}

	return nil
}
