package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pricewise/catalog-admin/internal/domain"
	"github.com/pricewise/catalog-admin/internal/repository"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
)

// VariantRepository implements repository.VariantRepository using PostgreSQL.
type VariantRepository struct {
	db DBTX
}

// NewVariantRepository creates a PostgreSQL-backed variant repository.
func NewVariantRepository(db DBTX) *VariantRepository {
	return &VariantRepository{db: db}
}

// CreateGraph inserts the variant and all of its child rows in a single
// transaction. When graph.NewProduct is set, the owning product graph is
// created first inside the same transaction.
func (r *VariantRepository) CreateGraph(ctx context.Context, graph *domain.VariantGraph) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin variant graph tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if graph.NewProduct != nil {
		if err := insertProductGraph(ctx, tx, graph.NewProduct); err != nil {
			return err
		}
	}

	if err := insertVariantGraph(ctx, tx, graph); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit variant graph: %w", err)
	}
	return nil
}

// GetByID retrieves a variant by its identifier.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*domain.Variant, error) {
	query := `
		SELECT id, product_id, sku, slug, status, color, storage, ram, created_at
		FROM product_variants
		WHERE id = $1`

	var v domain.Variant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Slug, &v.Status, &v.Color, &v.Storage, &v.RAM, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("variant", id)
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

// Delete removes the variant and its child rows inside one transaction. If
// the variant was the last one of its product, the product and its children
// are removed in the same transaction.
func (r *VariantRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin variant delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID string
	err = tx.QueryRow(ctx, `SELECT product_id FROM product_variants WHERE id = $1`, id).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NotFound("variant", id)
		}
		return false, fmt.Errorf("resolve variant product: %w", err)
	}

	variantChildren := []string{
		`DELETE FROM product_prices WHERE variant_id = $1`,
		`DELETE FROM product_variant_images WHERE variant_id = $1`,
		`DELETE FROM product_variant_specifications WHERE variant_id = $1`,
		`DELETE FROM product_variant_localizations WHERE variant_id = $1`,
	}
	for _, q := range variantChildren {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return false, fmt.Errorf("delete variant children: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("delete variant: %w", err)
	}

	var remaining int
	err = tx.QueryRow(ctx, `SELECT count(*) FROM product_variants WHERE product_id = $1`, productID).Scan(&remaining)
	if err != nil {
		return false, fmt.Errorf("count remaining variants: %w", err)
	}

	productDeleted := false
	if remaining == 0 {
		productChildren := []string{
			`DELETE FROM product_availability WHERE product_id = $1`,
			`DELETE FROM product_images WHERE product_id = $1`,
			`DELETE FROM product_specifications WHERE product_id = $1`,
			`DELETE FROM product_localizations WHERE product_id = $1`,
			`DELETE FROM products WHERE id = $1`,
		}
		for _, q := range productChildren {
			if _, err := tx.Exec(ctx, q, productID); err != nil {
				return false, fmt.Errorf("delete orphaned product: %w", err)
			}
		}
		productDeleted = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit variant delete: %w", err)
	}
	return productDeleted, nil
}

// List returns flattened catalog rows: the variant joined with its product,
// preferred localization, main image, latest price, and availability.
func (r *VariantRepository) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.CatalogRow, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("v.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}
	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(v.sku ILIKE $%d OR v.slug ILIKE $%d OR l.name ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}
	if filter.Country != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(COALESCE(av.countries, '{}'))", argIndex))
		args = append(args, *filter.Country)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT v.id, v.product_id, v.sku, v.slug, v.status, p.category,
		       v.color, v.storage, v.ram, v.created_at,
		       COALESCE(l.name, '') AS name, COALESCE(l.brand, '') AS brand,
		       COALESCE(img.image_url, '') AS main_image,
		       pr.id, pr.store_name, pr.country, pr.price, pr.currency, pr.affiliate_link,
		       COALESCE(av.countries, '{}') AS countries,
		       count(*) OVER() AS total_count
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		LEFT JOIN LATERAL (
			SELECT name, brand FROM product_variant_localizations
			WHERE variant_id = v.id
			ORDER BY (country = 'PH' AND language = 'en') DESC, created_at ASC
			LIMIT 1
		) l ON true
		LEFT JOIN LATERAL (
			SELECT image_url FROM product_variant_images
			WHERE variant_id = v.id
			ORDER BY is_main DESC, created_at ASC
			LIMIT 1
		) img ON true
		LEFT JOIN LATERAL (
			SELECT id, store_name, country, price, currency, affiliate_link
			FROM product_prices
			WHERE variant_id = v.id
			ORDER BY created_at DESC
			LIMIT 1
		) pr ON true
		LEFT JOIN LATERAL (
			SELECT array_agg(country ORDER BY country) AS countries
			FROM product_availability
			WHERE product_id = v.product_id
		) av ON true
		%s
		ORDER BY v.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()

	var (
		result     []domain.CatalogRow
		totalCount int
	)

	for rows.Next() {
		var (
			row           domain.CatalogRow
			priceID       *string
			storeName     *string
			priceCountry  *string
			priceValue    *float64
			priceCurrency *string
			affiliateLink *string
		)

		if err := rows.Scan(
			&row.VariantID, &row.ProductID, &row.SKU, &row.Slug, &row.Status, &row.Category,
			&row.Color, &row.Storage, &row.RAM, &row.CreatedAt,
			&row.Name, &row.Brand,
			&row.MainImage,
			&priceID, &storeName, &priceCountry, &priceValue, &priceCurrency, &affiliateLink,
			&row.Countries,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan catalog row: %w", err)
		}

		if priceID != nil {
			row.LatestPrice = &domain.Price{
				ID:        *priceID,
				VariantID: row.VariantID,
				StoreName: deref(storeName),
				Country:   deref(priceCountry),
				Currency:  deref(priceCurrency),
			}
			if priceValue != nil {
				row.LatestPrice.Price = *priceValue
			}
			if affiliateLink != nil {
				row.LatestPrice.AffiliateLink = *affiliateLink
			}
		}

		if row.Countries == nil {
			row.Countries = []string{}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate catalog rows: %w", err)
	}

	if result == nil {
		result = []domain.CatalogRow{}
	}
	return result, totalCount, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// insertVariantGraph writes the variant row and its children using the given
// executor.
func insertVariantGraph(ctx context.Context, ex executor, graph *domain.VariantGraph) error {
	v := graph.Variant

	_, err := ex.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, sku, slug, status, color, storage, ram, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.ProductID, v.SKU, v.Slug, v.Status, v.Color, v.Storage, v.RAM, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "sku") {
				return apperrors.AlreadyExists("variant", "sku", v.SKU)
			}
			return apperrors.AlreadyExists("variant", "slug", v.Slug)
		}
		return fmt.Errorf("insert variant: %w", err)
	}

	for _, l := range graph.Localizations {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_variant_localizations
				(id, variant_id, country, language, name, brand, short_description, long_description, meta_title, meta_description, canonical_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			l.ID, v.ID, l.Country, l.Language, l.Name, l.Brand,
			l.ShortDescription, l.LongDescription, l.MetaTitle, l.MetaDescription, l.CanonicalURL, l.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert variant localization: %w", err)
		}
	}

	for _, s := range graph.Specifications {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_variant_specifications (id, variant_id, name, value, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			s.ID, v.ID, s.Name, s.Value, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert variant specification: %w", err)
		}
	}

	for _, img := range graph.Images {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_variant_images (id, variant_id, image_url, is_main, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			img.ID, v.ID, img.ImageURL, img.IsMain, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert variant image: %w", err)
		}
	}

	for _, pr := range graph.Prices {
		_, err := ex.Exec(ctx, `
			INSERT INTO product_prices (id, variant_id, store_name, country, price, currency, affiliate_link, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			pr.ID, v.ID, pr.StoreName, pr.Country, pr.Price, pr.Currency, pr.AffiliateLink, pr.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert variant price: %w", err)
		}
	}

	return nil
}
