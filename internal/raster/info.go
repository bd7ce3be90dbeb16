// Package raster clips single-band rasters to an AOI footprint and proves
// that clipped bands share an identical pixel grid before any band math.
package raster

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
)

// ErrNoCRS is returned when a raster declares no coordinate reference
// system and cannot be clipped in affine mode.
var ErrNoCRS = errors.New("raster declares no coordinate reference system")

// Info is the georeferencing metadata of a single-band raster, captured as
// plain values so grids can be compared without keeping datasets open.
type Info struct {
	// Projection is the CRS as WKT, empty when the raster carries none.
	Projection string

	// Transform is the affine geotransform in GDAL order
	// (originX, pixelWidth, rowRot, originY, colRot, pixelHeight).
	Transform [6]float64

	Width  int
	Height int

	// NoData is the declared nodata value, nil when absent.
	NoData *float64

	// GCPCount is the number of ground control points attached to the
	// raster. Non-zero means the raster is GCP-referenced rather than
	// affine-referenced.
	GCPCount int
}

// ReadInfo opens a raster read-only and captures its georeferencing.
func ReadInfo(path string) (Info, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	return datasetInfo(ds)
}

func datasetInfo(ds *godal.Dataset) (Info, error) {
	structure := ds.Structure()
	info := Info{
		Projection: ds.Projection(),
		Width:      structure.SizeX,
		Height:     structure.SizeY,
		GCPCount:   len(ds.GCPs()),
	}

	// A GCP-referenced raster has no meaningful geotransform.
	if gt, err := ds.GeoTransform(); err == nil {
		info.Transform = gt
	}

	if structure.NBands > 0 {
		if nodata, ok := ds.Bands()[0].NoData(); ok {
			info.NoData = &nodata
		}
	}

	return info, nil
}
