package stacapi

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
)

// SearchParams represents parameters for STAC item searches.
type SearchParams struct {
	// Collections to search (STAC collection IDs).
	Collections []string

	// AOI is the spatial filter, expressed as a bbox query parameter.
	AOI *geo.AOI

	// Temporal filter, inclusive on both ends.
	Start time.Time
	End   time.Time

	// Limit caps the number of returned items (0 means server default).
	Limit int
}

// ToURLValues converts SearchParams to url.Values for query string building.
func (p *SearchParams) ToURLValues() url.Values {
	values := url.Values{}

	if len(p.Collections) > 0 {
		values.Set("collections", strings.Join(p.Collections, ","))
	}

	if p.AOI != nil {
		parts := []string{
			strconv.FormatFloat(p.AOI.MinLon, 'f', -1, 64),
			strconv.FormatFloat(p.AOI.MinLat, 'f', -1, 64),
			strconv.FormatFloat(p.AOI.MaxLon, 'f', -1, 64),
			strconv.FormatFloat(p.AOI.MaxLat, 'f', -1, 64),
		}
		values.Set("bbox", strings.Join(parts, ","))
	}

	if !p.Start.IsZero() || !p.End.IsZero() {
		start, end := "..", ".."
		if !p.Start.IsZero() {
			start = p.Start.UTC().Format(time.RFC3339)
		}
		if !p.End.IsZero() {
			end = p.End.UTC().Format(time.RFC3339)
		}
		values.Set("datetime", start+"/"+end)
	}

	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}

	return values
}
