package odata

import (
	"fmt"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
)

// odataTimeLayout is the timestamp format the catalog's $filter grammar
// accepts for ContentDate comparisons.
const odataTimeLayout = "2006-01-02T15:04:05.000Z"

// GRDHFilter builds the combined $filter expression for locating a
// dual-polarization ground-range-detected high-resolution product:
//
//   - collection and product-type/mode marker (IW_GRDH)
//   - a supported container-format suffix, excluding cloud-optimized
//     variants (those are resolved by a different component)
//   - spatial intersection with the AOI
//   - a sensing-start window around the discovered scene's start time
//
// The window brackets the acquisition *start* only: catalog sensing
// timestamps correspond to acquisition start, not the interval midpoint.
func GRDHFilter(aoi geo.AOI, sensingStart time.Time, tolerance time.Duration) string {
	windowStart := sensingStart.Add(-tolerance).UTC().Format(odataTimeLayout)
	windowEnd := sensingStart.Add(tolerance).UTC().Format(odataTimeLayout)

	return fmt.Sprintf(
		"Collection/Name eq 'SENTINEL-1' "+
			"and contains(Name,'IW_GRDH') "+
			"and (endswith(Name,'.SAFE') or endswith(Name,'.safe')) "+
			"and not contains(Name,'_COG') "+
			"and OData.CSC.Intersects(area=%s) "+
			"and ContentDate/Start ge %s and ContentDate/Start le %s",
		aoi.ODataPolygonLiteral(), windowStart, windowEnd,
	)
}
