package domain

import (
	"time"
)

// Product status constants.
const (
	ProductStatusDraft  = "draft"
	ProductStatusActive = "active"
)

// ValidStatuses returns the set of valid product statuses.
func ValidStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusActive}
}

// IsValidStatus checks whether the given status is a valid product status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Product is the variant-owning root of the catalog. Its slug is unique
// across the products table.
type Product struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Localization is a per-country, per-language text bundle attached to a
// product or variant.
type Localization struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Country          string    `json:"country"`
	Language         string    `json:"language"`
	Name             string    `json:"name"`
	Brand            string    `json:"brand"`
	ShortDescription string    `json:"short_description"`
	LongDescription  string    `json:"long_description"`
	MetaTitle        string    `json:"meta_title"`
	MetaDescription  string    `json:"meta_description"`
	CanonicalURL     string    `json:"canonical_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// Specification is a free-form key/value pair attached to a product (shared
// across variants) or to a single variant.
type Specification struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Image is an image URL attached to a product or variant. Exactly one image
// per owner should be main.
type Image struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	ImageURL  string    `json:"image_url"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
}

// Availability declares a country a product may be shown in. Set semantics:
// one row per (product, country).
type Availability struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductGraph bundles a product with all of its child rows for atomic
// creation.
type ProductGraph struct {
	Product        Product
	Localizations  []Localization
	Specifications []Specification
	Images         []Image
	Availability   []Availability
}
