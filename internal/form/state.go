// Package form models the admin product form as an immutable state value
// with pure transition functions. Every transition returns a new State, so
// field updates are unit-testable without a UI harness.
package form

import (
	"github.com/pricewise/catalog-admin/internal/ingest"
	"github.com/pricewise/catalog-admin/pkg/slug"
)

// Defaults for a fresh form session.
const (
	DefaultCountry  = "PH"
	DefaultLanguage = "en"
	DefaultCategory = "smartphones"

	metaSuffix = " - Best Prices in Philippines"
)

// State is one snapshot of the product form. Transitions never mutate the
// receiver.
type State struct {
	SKU    string `json:"sku"`
	Slug   string `json:"slug"`
	Status string `json:"status"`

	Country  string `json:"country"`
	Language string `json:"language"`
	Category string `json:"category"`

	Name             string `json:"name"`
	Brand            string `json:"brand"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`

	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	CanonicalURL    string `json:"canonical_url"`

	Color   string `json:"color"`
	Storage string `json:"storage"`
	RAM     string `json:"ram"`

	ProductSpecs []ingest.SpecPair `json:"product_specs"`
	VariantSpecs []ingest.SpecPair `json:"variant_specs"`
	Images       []ingest.ImageRef `json:"images"`
	Countries    []string          `json:"countries"`
}

// NewState returns the initial form state with Philippine defaults.
func NewState() State {
	return State{
		Status:    "draft",
		Country:   DefaultCountry,
		Language:  DefaultLanguage,
		Category:  DefaultCategory,
		Countries: []string{DefaultCountry},
	}
}

// WithName sets the display name and short description, backfills meta title
// and description when the user has not set them, and derives the slug if it
// is still empty. A slug the user already chose is never overwritten.
func (s State) WithName(name, shortDescription string) State {
	s.Name = name
	s.ShortDescription = shortDescription
	if s.MetaTitle == "" {
		s.MetaTitle = name + metaSuffix
	}
	if s.MetaDescription == "" {
		s.MetaDescription = shortDescription + metaSuffix
	}
	if s.Slug == "" {
		s.Slug = slug.Generate(name)
	}
	return s
}

// WithSlug sets an explicit slug, overriding derivation.
func (s State) WithSlug(value string) State {
	s.Slug = value
	return s
}

// WithStatus sets the publication status.
func (s State) WithStatus(status string) State {
	s.Status = status
	return s
}

// WithCategory sets the category.
func (s State) WithCategory(category string) State {
	s.Category = category
	return s
}

// WithSKU sets the external SKU used for prefill.
func (s State) WithSKU(sku string) State {
	s.SKU = sku
	return s
}

// WithCanonicalURL sets the canonical URL.
func (s State) WithCanonicalURL(url string) State {
	s.CanonicalURL = url
	return s
}

// ToggleCountry adds the country to the availability set, or removes it if
// already present. The set never holds duplicates.
func (s State) ToggleCountry(code string) State {
	out := make([]string, 0, len(s.Countries)+1)
	found := false
	for _, c := range s.Countries {
		if c == code {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, code)
	}
	s.Countries = out
	return s
}

// ApplyProjection folds a fetched record projection into the form: brand,
// descriptions, variant attributes, specs, and images. Images are appended
// to any the user already added; name handling follows WithName rules.
func (s State) ApplyProjection(p ingest.Projection) State {
	s.Brand = p.Brand
	s.LongDescription = p.LongDescription
	s.Color = p.Color
	s.Storage = p.Storage
	s.RAM = p.RAM

	s.ProductSpecs = append([]ingest.SpecPair(nil), p.ProductSpecs...)
	s.VariantSpecs = append([]ingest.SpecPair(nil), p.VariantSpecs...)

	images := make([]ingest.ImageRef, 0, len(s.Images)+len(p.Images))
	images = append(images, s.Images...)
	images = append(images, p.Images...)
	s.Images = images

	return s.WithName(p.Name, p.ShortDescription)
}
