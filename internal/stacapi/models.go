// Package stacapi provides the discovery-catalog client: a minimal STAC API
// search consumer that turns an AOI and time window into a scene pointer.
package stacapi

import (
	"fmt"
	"strings"
	"time"

	gostac "github.com/planetlabs/go-stac"
)

// Item re-exports the STAC item type for convenience.
type Item = gostac.Item

// ItemCollection is the GeoJSON FeatureCollection a STAC search returns.
// Links carry the server's pagination links for the page that produced it.
type ItemCollection struct {
	Type     string         `json:"type"` // "FeatureCollection"
	Features []*Item        `json:"features"`
	Links    []*gostac.Link `json:"links,omitempty"`
}

// Datetime formats observed across STAC deployments. Some catalogs emit
// fractional seconds without a zone designator.
var itemTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
}

// ItemDatetime extracts and parses the acquisition datetime property.
// Returns time in UTC.
func ItemDatetime(item *Item) (time.Time, error) {
	raw, ok := item.Properties["datetime"]
	if !ok {
		return time.Time{}, fmt.Errorf("item %s has no datetime property", item.Id)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("item %s has a non-string datetime property", item.Id)
	}

	s = strings.TrimSpace(s)
	var lastErr error
	for _, format := range itemTimeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("failed to parse item datetime %q: %w", s, lastErr)
}

// AssetHref returns the href of a named item asset, or "" when absent.
func AssetHref(item *Item, key string) string {
	asset, ok := item.Assets[key]
	if !ok || asset == nil {
		return ""
	}
	return asset.Href
}
