package postgres

import (
	"context"
	"fmt"

	"github.com/pricewise/catalog-admin/internal/domain"
)

// StatsRepository implements repository.StatsRepository using PostgreSQL.
type StatsRepository struct {
	db DBTX
}

// NewStatsRepository creates a PostgreSQL-backed stats repository.
func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Stats returns catalog-wide counts for the dashboard in a single query.
func (r *StatsRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM products) AS products,
			(SELECT count(*) FROM product_variants) AS variants,
			(SELECT count(*) FROM product_variants WHERE status = 'active') AS active_variants,
			(SELECT count(*) FROM product_variants WHERE status = 'draft') AS draft_variants,
			(SELECT count(*) FROM product_prices) AS prices,
			(SELECT count(DISTINCT country) FROM product_availability) AS countries`

	var s domain.Stats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.Products, &s.Variants, &s.ActiveVariants, &s.DraftVariants, &s.Prices, &s.Countries,
	)
	if err != nil {
		return nil, fmt.Errorf("load catalog stats: %w", err)
	}
	return &s, nil
}
