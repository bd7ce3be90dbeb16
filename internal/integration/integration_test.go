//go:build integration

// Package integration exercises the raster path end to end against a real
// GDAL installation. Run with: go test -v ./internal/integration -tags=integration
package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"

	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/pipeline"
	"github.com/npapad/s1rgb/internal/raster"
	"github.com/npapad/s1rgb/internal/scene"
)

func TestMain(m *testing.M) {
	godal.RegisterAll()
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSyntheticBand creates an affine-referenced UInt16 raster spanning
// lon [20,23], lat [39,42] on a 300x300 grid, with a value gradient and a
// zero-valued nodata border.
func writeSyntheticBand(t *testing.T, path string, scale uint16) {
	t.Helper()

	const size = 300
	ds, err := godal.Create(godal.GTiff, path, 1, godal.UInt16, size, size)
	if err != nil {
		t.Fatalf("failed to create synthetic raster: %v", err)
	}

	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		t.Fatalf("failed to create EPSG:4326: %v", err)
	}
	defer sr.Close()
	wkt, err := sr.WKT()
	if err != nil {
		t.Fatalf("failed to export WKT: %v", err)
	}
	if err := ds.SetProjection(wkt); err != nil {
		t.Fatalf("failed to set projection: %v", err)
	}
	if err := ds.SetGeoTransform([6]float64{20, 0.01, 0, 42, 0, -0.01}); err != nil {
		t.Fatalf("failed to set geotransform: %v", err)
	}

	data := make([]uint16, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if row < 10 || col < 10 {
				continue // nodata border
			}
			data[row*size+col] = uint16(1+(row+col)%500) * scale
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(0); err != nil {
		t.Fatalf("failed to set nodata: %v", err)
	}
	if err := band.Write(0, 0, data, size, size); err != nil {
		t.Fatalf("failed to write band: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("failed to close synthetic raster: %v", err)
	}
}

// bandDiscovery returns a fixed scene without touching any catalog.
type bandDiscovery struct{}

func (bandDiscovery) Discover(ctx context.Context, aoi geo.AOI, start, end time.Time) (*pipeline.Scene, error) {
	ptr, err := scene.ParsePointer("S1A_IW_GRDH_1SDV_20251209T163027_20251209T163052_061321_079DEF_1234")
	if err != nil {
		return nil, err
	}
	return &pipeline.Scene{Pointer: ptr, Datetime: ptr.Start}, nil
}

// fileBands serves pre-built rasters instead of fetching a product.
type fileBands struct {
	vv, vh string
}

func (p fileBands) Bands(ctx context.Context, sc *pipeline.Scene, env pipeline.RunEnv) (pipeline.BandPaths, error) {
	return pipeline.BandPaths{VV: p.vv, VH: p.vh, InDecibels: false}, nil
}

func (p fileBands) Name() string { return "raw" }

func TestPipelineEndToEnd(t *testing.T) {
	srcDir := t.TempDir()
	vvPath := filepath.Join(srcDir, "vv.tif")
	vhPath := filepath.Join(srcDir, "vh.tif")
	writeSyntheticBand(t, vvPath, 4)
	writeSyntheticBand(t, vhPath, 1)

	aoi, err := geo.NewAOI(20.5, 39.5, 22.5, 41.5)
	if err != nil {
		t.Fatal(err)
	}

	outRoot := t.TempDir()
	p := pipeline.New(bandDiscovery{}, fileBands{vv: vvPath, vh: vhPath}, outRoot, testLogger())

	result, err := p.Run(context.Background(), aoi, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	for _, path := range []string{result.VVClip, result.VHClip, result.Composite} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing run artifact: %v", err)
		}
	}

	vvInfo, err := raster.ReadInfo(result.VVClip)
	if err != nil {
		t.Fatalf("failed to inspect VV clip: %v", err)
	}
	vhInfo, err := raster.ReadInfo(result.VHClip)
	if err != nil {
		t.Fatalf("failed to inspect VH clip: %v", err)
	}
	if err := raster.VerifyAligned(vvInfo, vhInfo); err != nil {
		t.Errorf("clipped pair should share one grid: %v", err)
	}

	// The clip covers the AOI, not the full source grid.
	if vvInfo.Width >= 300 || vvInfo.Height >= 300 {
		t.Errorf("clip did not crop the source: %dx%d", vvInfo.Width, vvInfo.Height)
	}

	rgbInfo, err := raster.ReadInfo(result.Composite)
	if err != nil {
		t.Fatalf("failed to inspect composite: %v", err)
	}
	if rgbInfo.Width != vvInfo.Width || rgbInfo.Height != vvInfo.Height {
		t.Errorf("composite grid %dx%d does not match clip grid %dx%d",
			rgbInfo.Width, rgbInfo.Height, vvInfo.Width, vvInfo.Height)
	}
	if rgbInfo.Transform != vvInfo.Transform {
		t.Errorf("composite transform %v does not match clip transform %v",
			rgbInfo.Transform, vvInfo.Transform)
	}

	band, _, err := raster.ReadBand(result.Composite)
	if err != nil {
		t.Fatalf("failed to read composite band: %v", err)
	}
	nonZero := 0
	for _, v := range band {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("composite red channel is entirely zero")
	}
}

func TestClipAffinePreservesCRS(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "src.tif")
	writeSyntheticBand(t, srcPath, 1)

	aoi, err := geo.NewAOI(20.5, 39.5, 22.5, 41.5)
	if err != nil {
		t.Fatal(err)
	}

	dstPath := filepath.Join(t.TempDir(), "clip.tif")
	if err := raster.ClipAffine(srcPath, dstPath, aoi); err != nil {
		t.Fatalf("ClipAffine failed: %v", err)
	}

	srcInfo, err := raster.ReadInfo(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	dstInfo, err := raster.ReadInfo(dstPath)
	if err != nil {
		t.Fatal(err)
	}

	if dstInfo.Projection != srcInfo.Projection {
		t.Error("affine clip must keep the source CRS")
	}
	if dstInfo.Width >= srcInfo.Width || dstInfo.Height >= srcInfo.Height {
		t.Errorf("clip did not shrink the grid: %dx%d", dstInfo.Width, dstInfo.Height)
	}
	if dstInfo.NoData == nil || *dstInfo.NoData != 0 {
		t.Errorf("nodata should carry through the clip: %v", dstInfo.NoData)
	}
}
