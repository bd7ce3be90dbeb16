// Package geo provides the area-of-interest type and the geometry helpers
// shared by the catalog matcher and the raster clipper.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// AOI is a WGS84 bounding box. It is immutable once constructed; every
// pipeline stage consumes it read-only.
type AOI struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// NewAOI validates the four bounds and returns an AOI.
// Longitudes and latitudes are WGS84 degrees with min strictly below max.
func NewAOI(minLon, minLat, maxLon, maxLat float64) (AOI, error) {
	if minLon >= maxLon {
		return AOI{}, fmt.Errorf("invalid AOI: minLon (%v) must be < maxLon (%v)", minLon, maxLon)
	}
	if minLat >= maxLat {
		return AOI{}, fmt.Errorf("invalid AOI: minLat (%v) must be < maxLat (%v)", minLat, maxLat)
	}
	return AOI{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}, nil
}

// ParseAOI parses a comma-separated "minLon,minLat,maxLon,maxLat" string.
func ParseAOI(s string) (AOI, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return AOI{}, fmt.Errorf("invalid AOI %q: expected 4 comma-separated values, got %d", s, len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return AOI{}, fmt.Errorf("invalid AOI component %q: %w", p, err)
		}
		vals[i] = v
	}
	return NewAOI(vals[0], vals[1], vals[2], vals[3])
}

// Polygon returns the AOI as an axis-aligned rectangle: a single closed ring
// of 5 vertices in counter-clockwise lon/lat order, first and last identical.
func (a AOI) Polygon() orb.Polygon {
	ring := orb.Ring{
		{a.MinLon, a.MinLat},
		{a.MaxLon, a.MinLat},
		{a.MaxLon, a.MaxLat},
		{a.MinLon, a.MaxLat},
		{a.MinLon, a.MinLat},
	}
	return orb.Polygon{ring}
}

// Bound returns the AOI as an orb bounding box.
func (a AOI) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.MinLon, a.MinLat},
		Max: orb.Point{a.MaxLon, a.MaxLat},
	}
}

// ODataPolygonLiteral serializes the AOI in the geography literal syntax the
// OData spatial-intersects filter expects: a closed ring in "lon lat" vertex
// order. The ordering and closure are exact format requirements of the
// catalog, not a style choice.
func (a AOI) ODataPolygonLiteral() string {
	var b strings.Builder
	b.WriteString("geography'SRID=4326;POLYGON((")
	for i, p := range a.Polygon()[0] {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatCoord(p[0]))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p[1]))
	}
	b.WriteString("))'")
	return b.String()
}

// String implements fmt.Stringer for log output.
func (a AOI) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]",
		formatCoord(a.MinLon), formatCoord(a.MinLat), formatCoord(a.MaxLon), formatCoord(a.MaxLat))
}

// formatCoord formats a coordinate without trailing zeros.
func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
