package bestbuy

import (
	"encoding/json"

	"github.com/pricewise/catalog-admin/internal/normalize"
)

// Detail is a named specification value on a product record.
type Detail struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Feature is a marketing feature line on a product record.
type Feature struct {
	Feature string `json:"feature"`
}

// IncludedItem is one box-content entry on a product record.
type IncludedItem struct {
	IncludedItem string `json:"includedItem"`
}

// Image is an image reference on a product record.
type Image struct {
	Href string `json:"href"`
}

// Record is the product schema returned by the Best Buy products endpoint,
// restricted to the fields the service requests.
type Record struct {
	SKU              json.Number    `json:"sku"`
	Name             string         `json:"name"`
	Manufacturer     string         `json:"manufacturer"`
	ModelNumber      string         `json:"modelNumber"`
	ShortDescription string         `json:"shortDescription"`
	LongDescription  string         `json:"longDescription"`
	Color            string         `json:"color"`
	Details          []Detail       `json:"details"`
	Features         []Feature      `json:"features"`
	IncludedItems    []IncludedItem `json:"includedItemList"`
	Images           []Image        `json:"images"`
	URL              string         `json:"url"`
}

// Normalize cleans every text field in place. Image hrefs and the product
// URL are left untouched.
func (r *Record) Normalize() {
	r.Name = normalize.String(r.Name)
	r.Manufacturer = normalize.String(r.Manufacturer)
	r.ModelNumber = normalize.String(r.ModelNumber)
	r.ShortDescription = normalize.String(r.ShortDescription)
	r.LongDescription = normalize.String(r.LongDescription)
	r.Color = normalize.String(r.Color)

	for i := range r.Details {
		r.Details[i].Name = normalize.String(r.Details[i].Name)
		r.Details[i].Value = normalize.String(r.Details[i].Value)
	}
	for i := range r.Features {
		r.Features[i].Feature = normalize.String(r.Features[i].Feature)
	}
	for i := range r.IncludedItems {
		r.IncludedItems[i].IncludedItem = normalize.String(r.IncludedItems[i].IncludedItem)
	}
}
