// Script to compare discovery-catalog and product-catalog results for an
// AOI and time window, to diagnose cross-catalog resolution gaps.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/odata"
	"github.com/npapad/s1rgb/internal/scene"
	"github.com/npapad/s1rgb/internal/stacapi"
)

const (
	stacBaseURL  = "https://stac.dataspace.copernicus.eu/v1"
	odataBaseURL = "https://catalogue.dataspace.copernicus.eu/odata/v1"
	collection   = "sentinel-1-grd"
)

// Ptolemaida basin, northern Greece
var testBBox = []float64{21.65, 40.67, 21.75, 40.76}

func main() {
	ctx := context.Background()

	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, -1, 0)

	aoi, err := geo.NewAOI(testBBox[0], testBBox[1], testBBox[2], testBBox[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad bbox: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Catalog Comparison: Sentinel-1 GRD (Last Month) ===")
	fmt.Printf("Date range: %s to %s\n", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	fmt.Printf("Bounding box: %v\n\n", testBBox)

	fmt.Println("Querying STAC catalog...")
	items, err := queryDiscovery(ctx, aoi, startDate, endDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "STAC query failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("STAC items: %d\n\n", len(items))

	fmt.Println("Resolving each scene against the OData catalog...")
	matcher := odata.NewMatcher(odata.NewClient(odataBaseURL, 60*time.Second))

	resolved, unresolved := 0, 0
	for _, item := range items {
		ptr, err := scene.ParsePointer(item.Id)
		if err != nil {
			fmt.Printf("  %s: unparsable identifier\n", item.Id)
			unresolved++
			continue
		}
		product, err := matcher.Resolve(ctx, aoi, ptr)
		if err != nil {
			fmt.Printf("  %s: %v\n", item.Id, err)
			unresolved++
			continue
		}
		fmt.Printf("  %s -> %s\n", item.Id, product.Name)
		resolved++
	}

	fmt.Println("\n=== Comparison ===")
	fmt.Printf("Discovered: %d scenes\n", len(items))
	fmt.Printf("Resolved:   %d products\n", resolved)
	if unresolved == 0 {
		fmt.Println("All discovered scenes resolved.")
	} else {
		fmt.Printf("Unresolved: %d\n", unresolved)
		fmt.Println("\nNote: Gaps may occur due to:")
		fmt.Println("  - Different indexing/update times between the two catalogs")
		fmt.Println("  - Sensing-timestamp drift beyond the matching window")
		fmt.Println("  - Products republished under a different variant suffix")
	}
}

func queryDiscovery(ctx context.Context, aoi geo.AOI, start, end time.Time) ([]*stacapi.Item, error) {
	client := stacapi.NewClient(stacBaseURL, 60*time.Second)
	result, err := client.Search(ctx, stacapi.SearchParams{
		Collections: []string{collection},
		AOI:         &aoi,
		Start:       start,
		End:         end,
		Limit:       100,
	})
	if err != nil {
		return nil, err
	}
	return result.Features, nil
}
