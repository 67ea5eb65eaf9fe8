// Package ingest turns fetched product records into the structured fields
// the catalog persists: it classifies specifications into product-level vs
// variant-level buckets and projects records into form-ready values.
package ingest

import (
	"strings"
)

// Bucket is the axis a specification pair belongs to.
type Bucket int

const (
	// BucketProduct holds specs shared across variants (battery, camera,
	// display, and all other descriptive attributes).
	BucketProduct Bucket = iota

	// BucketVariant holds the variant-defining axis: color, storage, RAM,
	// capacity.
	BucketVariant
)

// Spec names dropped outright: carrier and model-number noise from the
// provider that has no place in the catalog.
var excludedNames = []string{
	"model number",
	"carrier",
	"carrier compatibility",
	"unlocked",
}

// Classify decides which bucket a (name, value) specification pair belongs
// to. The second return value is false when the pair should be dropped:
// either side empty after trimming, or the name matching an excluded keyword.
//
// Providers mix true capacity/RAM facts with unrelated numeric specs
// (battery mAh, camera fps) under similarly named fields, so storage, memory,
// and capacity names are only variant-defining when the value does not look
// like a battery or frame-rate figure.
func Classify(name, value string) (Bucket, bool) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return BucketProduct, false
	}

	n := strings.ToLower(name)
	for _, excluded := range excludedNames {
		if strings.Contains(n, excluded) {
			return BucketProduct, false
		}
	}

	v := strings.ToLower(value)
	notBatteryOrFPS := !strings.Contains(v, "milliampere") && !strings.Contains(v, "fps")

	switch {
	case strings.Contains(n, "color"):
		return BucketVariant, true
	case strings.Contains(n, "ram"):
		return BucketVariant, true
	case strings.Contains(n, "storage") && notBatteryOrFPS:
		return BucketVariant, true
	case strings.Contains(n, "memory") && notBatteryOrFPS:
		return BucketVariant, true
	case strings.Contains(n, "capacity") && !strings.Contains(v, "milliampere"):
		return BucketVariant, true
	}

	return BucketProduct, true
}
