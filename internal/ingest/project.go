package ingest

import (
	"strings"

	"github.com/pricewise/catalog-admin/internal/bestbuy"
)

// MaxImages caps how many provider images are carried into the catalog.
const MaxImages = 5

// SpecPair is one classified specification entry.
type SpecPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ImageRef is one projected image; the first image of a record is main.
type ImageRef struct {
	ImageURL string `json:"image_url"`
	IsMain   bool   `json:"is_main"`
}

// Projection is the form-ready view of a fetched product record. Every field
// is a pure function of the input record.
type Projection struct {
	Name             string     `json:"name"`
	Brand            string     `json:"brand"`
	ShortDescription string     `json:"short_description"`
	LongDescription  string     `json:"long_description"`
	Color            string     `json:"color"`
	Storage          string     `json:"storage"`
	RAM              string     `json:"ram"`
	ProductSpecs     []SpecPair `json:"product_specs"`
	VariantSpecs     []SpecPair `json:"variant_specs"`
	Images           []ImageRef `json:"images"`
}

// Project derives the catalog fields from a normalized product record.
func Project(rec *bestbuy.Record) Projection {
	p := Projection{
		Name:         rec.Name,
		Brand:        rec.Manufacturer,
		Color:        rec.Color,
		ProductSpecs: []SpecPair{},
		VariantSpecs: []SpecPair{},
		Images:       []ImageRef{},
	}

	p.LongDescription = joinDescription(rec)
	p.ShortDescription = rec.ShortDescription
	if p.ShortDescription == "" && p.LongDescription != "" {
		p.ShortDescription = firstSentences(p.LongDescription, 3)
	}

	p.Storage, p.RAM = extractVariantAttrs(rec.Details)

	for _, d := range rec.Details {
		bucket, ok := Classify(d.Name, d.Value)
		if !ok {
			continue
		}
		pair := SpecPair{Name: d.Name, Value: d.Value}
		if bucket == BucketVariant {
			p.VariantSpecs = append(p.VariantSpecs, pair)
		} else {
			p.ProductSpecs = append(p.ProductSpecs, pair)
		}
	}

	for i, img := range rec.Images {
		if i >= MaxImages {
			break
		}
		p.Images = append(p.Images, ImageRef{ImageURL: img.Href, IsMain: i == 0})
	}

	return p
}

// joinDescription joins the record's long description with its feature lines
// using ". " as separator, skipping empty segments.
func joinDescription(rec *bestbuy.Record) string {
	features := make([]string, 0, len(rec.Features))
	for _, f := range rec.Features {
		if f.Feature != "" {
			features = append(features, f.Feature)
		}
	}

	parts := make([]string, 0, 2)
	if rec.LongDescription != "" {
		parts = append(parts, rec.LongDescription)
	}
	if featuresText := strings.Join(features, ". "); featuresText != "" {
		parts = append(parts, featuresText)
	}
	return strings.TrimSpace(strings.Join(parts, ". "))
}

// firstSentences returns the first n period-delimited sentences of text with
// a trailing period.
func firstSentences(text string, n int) string {
	sentences := strings.Split(text, ". ")
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.TrimSuffix(strings.Join(sentences, ". "), ".") + "."
}

// storage candidate names, in search order
var storageNames = []string{"internal storage", "built-in storage", "storage", "capacity"}

// ram candidate names, in search order
var ramNames = []string{"ram", "system memory", "memory"}

// extractVariantAttrs pulls the storage and RAM values out of the detail
// list. Candidates whose value mentions milliampere or fps are battery and
// refresh-rate false positives and are rejected. If no named storage detail
// matches, the first value that looks like a byte size (GB/TB, not a battery
// spec) is used.
func extractVariantAttrs(details []bestbuy.Detail) (storage, ram string) {
	for _, d := range details {
		n := strings.ToLower(d.Name)
		v := strings.ToLower(d.Value)

		if strings.Contains(v, "milliampere") || strings.Contains(v, "fps") {
			continue
		}

		if storage == "" {
			for _, candidate := range storageNames {
				if strings.Contains(n, candidate) {
					storage = d.Value
					break
				}
			}
		}
		if ram == "" {
			for _, candidate := range ramNames {
				if strings.Contains(n, candidate) {
					ram = d.Value
					break
				}
			}
		}
	}

	if storage == "" {
		for _, d := range details {
			v := strings.ToLower(d.Value)
			if strings.Contains(v, "milliampere") || strings.Contains(v, "fps") || strings.Contains(v, "battery") {
				continue
			}
			if strings.Contains(d.Value, "GB") || strings.Contains(d.Value, "TB") {
				storage = d.Value
				break
			}
		}
	}

	return storage, ram
}
