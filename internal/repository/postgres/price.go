package postgres

import (
	"context"
	"fmt"

	"github.com/pricewise/catalog-admin/internal/domain"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
)

// PriceRepository implements repository.PriceRepository using PostgreSQL.
type PriceRepository struct {
	db DBTX
}

// NewPriceRepository creates a PostgreSQL-backed price repository.
func NewPriceRepository(db DBTX) *PriceRepository {
	return &PriceRepository{db: db}
}

// Add inserts a price row for a variant.
func (r *PriceRepository) Add(ctx context.Context, price *domain.Price) error {
	query := `
		INSERT INTO product_prices (id, variant_id, store_name, country, price, currency, affiliate_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		price.ID, price.VariantID, price.StoreName, price.Country,
		price.Price, price.Currency, price.AffiliateLink, price.CreatedAt,
	)
	if err != nil {
		// foreign key violation means the variant is gone
		if containsCode(err, "23503") {
			return apperrors.NotFound("variant", price.VariantID)
		}
		return fmt.Errorf("insert price: %w", err)
	}
	return nil
}
