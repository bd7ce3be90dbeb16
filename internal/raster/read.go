package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// ReadBand reads the first band of a raster into a row-major float64 slice
// of length Width*Height, alongside its georeferencing metadata. Values are
// returned as stored; nodata masking is the caller's concern.
func ReadBand(path string) ([]float64, Info, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	info, err := datasetInfo(ds)
	if err != nil {
		return nil, Info{}, err
	}

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, Info{}, fmt.Errorf("raster %s has no bands", path)
	}

	data := make([]float64, info.Width*info.Height)
	if err := bands[0].Read(0, 0, data, info.Width, info.Height); err != nil {
		return nil, Info{}, fmt.Errorf("failed to read band from %s: %w", path, err)
	}

	return data, info, nil
}
