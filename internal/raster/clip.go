package raster

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/airbusgeo/godal"

	"github.com/npapad/s1rgb/internal/geo"
)

// ClipToAOI crops or warps a single-band raster to the AOI footprint,
// selecting the geolocation mode from the source raster's own metadata:
// rasters carrying ground control points are warped, affine-referenced
// rasters are cropped in their native CRS. The two modes are not
// interchangeable — they produce different output-extent semantics.
func ClipToAOI(ctx context.Context, srcPath, dstPath string, aoi geo.AOI, logger *slog.Logger) error {
	info, err := ReadInfo(srcPath)
	if err != nil {
		return err
	}

	if info.GCPCount > 0 {
		logger.DebugContext(ctx, "clipping GCP-referenced raster",
			slog.String("src", srcPath),
			slog.Int("gcp_count", info.GCPCount),
		)
		return WarpGCP(srcPath, dstPath, aoi)
	}

	logger.DebugContext(ctx, "clipping affine-referenced raster",
		slog.String("src", srcPath),
	)
	return ClipAffine(srcPath, dstPath, aoi)
}

// ClipAffine crops an affine-referenced raster to the AOI. The AOI polygon
// is transformed into the raster's native CRS and the raster is cropped to
// the transformed extent, with the output transform and grid size recomputed
// from the actual cropped window. The output keeps the source CRS.
func ClipAffine(srcPath, dstPath string, aoi geo.AOI) error {
	ds, err := godal.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open raster %s: %w", srcPath, err)
	}
	defer ds.Close()

	if ds.Projection() == "" {
		return fmt.Errorf("%w: %s", ErrNoCRS, srcPath)
	}

	wgs84, err := geo.WGS84()
	if err != nil {
		return err
	}
	defer wgs84.Close()

	native, err := geo.SpatialRefFromWKT(ds.Projection())
	if err != nil {
		return fmt.Errorf("raster %s: %w", srcPath, err)
	}
	defer native.Close()

	footprint, err := geo.TransformPolygon(aoi.Polygon(), wgs84, native)
	if err != nil {
		return fmt.Errorf("failed to project AOI into raster CRS: %w", err)
	}
	bound := footprint.Bound()

	// -projwin takes the window as ulx uly lrx lry in georeferenced units.
	switches := []string{
		"-projwin",
		formatFloat(bound.Min[0]), formatFloat(bound.Max[1]),
		formatFloat(bound.Max[0]), formatFloat(bound.Min[1]),
		"-co", "TILED=YES",
		"-co", "COMPRESS=ZSTD",
		"-co", "BIGTIFF=IF_SAFER",
	}

	out, err := ds.Translate(dstPath, switches)
	if err != nil {
		return fmt.Errorf("affine clip of %s failed: %w", srcPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dstPath, err)
	}
	return nil
}

// WarpGCP warps a GCP-referenced raster (as produced by raw,
// non-georeferenced product archives) onto the AOI using a thin-plate-spline
// transform. GCP coordinates are interpreted as WGS84 and the output is in
// WGS84 with bounds fixed exactly to the AOI box, unlike the affine mode
// which crops to the transformed source extent. Nodata is 0 on both sides,
// samples are unsigned 16-bit digital numbers, resampling is bilinear, and
// the warp runs multithreaded.
func WarpGCP(srcPath, dstPath string, aoi geo.AOI) error {
	ds, err := godal.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open raster %s: %w", srcPath, err)
	}
	defer ds.Close()

	switches := []string{
		"-tps",
		"-s_srs", "EPSG:4326",
		"-t_srs", "EPSG:4326",
		"-te",
		formatFloat(aoi.MinLon), formatFloat(aoi.MinLat),
		formatFloat(aoi.MaxLon), formatFloat(aoi.MaxLat),
		"-te_srs", "EPSG:4326",
		"-r", "bilinear",
		"-srcnodata", "0",
		"-dstnodata", "0",
		"-ot", "UInt16",
		"-multi",
		"-wo", "NUM_THREADS=ALL_CPUS",
		"-co", "TILED=YES",
		"-co", "COMPRESS=ZSTD",
		"-co", "BIGTIFF=IF_SAFER",
		"-overwrite",
	}

	out, err := ds.Warp(dstPath, switches)
	if err != nil {
		return fmt.Errorf("GCP warp of %s failed: %w", srcPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dstPath, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
