package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/scene"
	"github.com/npapad/s1rgb/internal/stacapi"
)

// discoverPageSize is the per-page item limit requested from the search
// endpoint. The client follows pagination, so this only sizes the pages;
// without it some servers default to pages of 10.
const discoverPageSize = 100

// STACDiscovery discovers scenes through a STAC API search endpoint and
// selects the latest acquisition in the window.
type STACDiscovery struct {
	client     *stacapi.Client
	collection string
}

// NewSTACDiscovery creates a discovery over the given client and
// collection.
func NewSTACDiscovery(client *stacapi.Client, collection string) *STACDiscovery {
	return &STACDiscovery{client: client, collection: collection}
}

// Discover searches the collection for the AOI and window and returns the
// latest scene, with its identifier parsed into a pointer.
func (d *STACDiscovery) Discover(ctx context.Context, aoi geo.AOI, start, end time.Time) (*Scene, error) {
	item, err := d.client.LatestItem(ctx, stacapi.SearchParams{
		Collections: []string{d.collection},
		AOI:         &aoi,
		Start:       start,
		End:         end,
		Limit:       discoverPageSize,
	})
	if err != nil {
		return nil, err
	}

	ptr, err := scene.ParsePointer(item.Id)
	if err != nil {
		return nil, fmt.Errorf("discovered scene has an unusable identifier: %w", err)
	}

	sc := &Scene{Pointer: ptr, Assets: map[string]string{}}
	if dt, err := stacapi.ItemDatetime(item); err == nil {
		sc.Datetime = dt
	}
	for key := range item.Assets {
		if href := stacapi.AssetHref(item, key); href != "" {
			sc.Assets[key] = href
		}
	}
	return sc, nil
}
