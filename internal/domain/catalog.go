package domain

import (
	"time"
)

// CatalogRow is a flattened variant for the admin listing: the variant joined
// with its owning product, preferred localization, main image, latest price,
// and the product's availability countries.
type CatalogRow struct {
	VariantID   string    `json:"variant_id"`
	ProductID   string    `json:"product_id"`
	SKU         string    `json:"sku"`
	Slug        string    `json:"slug"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Color       string    `json:"color,omitempty"`
	Storage     string    `json:"storage,omitempty"`
	RAM         string    `json:"ram,omitempty"`
	MainImage   string    `json:"main_image,omitempty"`
	LatestPrice *Price    `json:"latest_price,omitempty"`
	Countries   []string  `json:"countries"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes the catalog for the admin dashboard.
type Stats struct {
	Products       int `json:"products"`
	Variants       int `json:"variants"`
	ActiveVariants int `json:"active_variants"`
	DraftVariants  int `json:"draft_variants"`
	Prices         int `json:"prices"`
	Countries      int `json:"countries"`
}
