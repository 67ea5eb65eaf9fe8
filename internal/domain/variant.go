package domain

import (
	"time"
)

// Variant is a sellable variation of a product, distinguished by color,
// storage, and RAM. SKU and slug are unique across the variants table.
type Variant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Color     string    `json:"color,omitempty"`
	Storage   string    `json:"storage,omitempty"`
	RAM       string    `json:"ram,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantGraph bundles a variant with all of its child rows for atomic
// creation. NewProduct carries the owning product graph when the variant is
// the first one for a new product; it is nil when attaching to an existing
// product.
type VariantGraph struct {
	Variant        Variant
	NewProduct     *ProductGraph
	Localizations  []Localization
	Specifications []Specification
	Images         []Image
	Prices         []Price
}

// Price is a store offer for a variant in one country.
type Price struct {
	ID            string    `json:"id"`
	VariantID     string    `json:"variant_id"`
	StoreName     string    `json:"store_name"`
	Country       string    `json:"country"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	AffiliateLink string    `json:"affiliate_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
