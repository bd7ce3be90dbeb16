package composite

import (
	"fmt"

	"github.com/airbusgeo/godal"

	"github.com/npapad/s1rgb/internal/raster"
)

// WriteRGB persists three [0,1] channels as an unsigned 8-bit 3-band
// GeoTIFF carrying the clipped pair's georeferencing. No nodata is declared
// on the output: this is a visualization product, not an analytic one.
func WriteRGB(path string, r, g, b []float64, ref raster.Info) error {
	expected := ref.Width * ref.Height
	for _, ch := range [][]float64{r, g, b} {
		if len(ch) != expected {
			return fmt.Errorf("channel length %d does not match %dx%d grid", len(ch), ref.Width, ref.Height)
		}
	}

	ds, err := godal.Create(godal.GTiff, path, 3, godal.Byte, ref.Width, ref.Height,
		godal.CreationOption("TILED=YES", "COMPRESS=ZSTD"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeChannels(ds, r, g, b, ref); err != nil {
		ds.Close()
		return err
	}

	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func writeChannels(ds *godal.Dataset, r, g, b []float64, ref raster.Info) error {
	if ref.Projection != "" {
		if err := ds.SetProjection(ref.Projection); err != nil {
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}
	if err := ds.SetGeoTransform(ref.Transform); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}

	bands := ds.Bands()
	for i, ch := range [][]float64{r, g, b} {
		if err := bands[i].Write(0, 0, ToByte(ch), ref.Width, ref.Height); err != nil {
			return fmt.Errorf("failed to write channel %d: %w", i+1, err)
		}
	}
	return nil
}
