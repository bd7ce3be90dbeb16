package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// WriteAOIGeoJSON writes the AOI as a GeoJSON FeatureCollection holding a
// single Polygon Feature with empty properties. The sidecar is written once
// per run and handed to the external geocoding engine as its footprint.
func WriteAOIGeoJSON(aoi AOI, path string) error {
	feature := geojson.NewFeature(aoi.Polygon())
	feature.Properties = geojson.Properties{}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal AOI feature collection: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write AOI geojson: %w", err)
	}

	return nil
}
