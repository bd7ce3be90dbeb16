// Package pipeline wires discovery, product resolution, raster
// harmonization, and compositing into one linear run. The pipeline body is
// engine-agnostic; the variants differ only in which Discovery and
// BandProvider implementations are plugged in.
package pipeline

import (
	"context"
	"time"

	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/scene"
)

// Scene is a discovered acquisition: the parsed pointer plus whatever the
// discovery catalog exposed about it. It lives for a single run.
type Scene struct {
	Pointer  scene.Pointer
	Datetime time.Time

	// Assets maps asset keys (e.g. "vv", "vh") to hrefs for catalogs that
	// expose per-band cloud-native assets. Empty for archive-only catalogs.
	Assets map[string]string
}

// Discovery locates the scene to process for an AOI and time window.
type Discovery interface {
	Discover(ctx context.Context, aoi geo.AOI, start, end time.Time) (*Scene, error)
}

// RunEnv is the per-run environment handed to a band provider: the shared
// read-only AOI, the AOI GeoJSON sidecar path, and the run's working
// directory. No state crosses runs.
type RunEnv struct {
	AOI     geo.AOI
	AOIPath string
	Workdir string
}

// BandPaths are the raw single-band rasters a provider materialized, plus
// whether their values are already decibel-scaled. The encoding is declared
// by the provider, never sniffed from pixel values.
type BandPaths struct {
	VV         string
	VH         string
	InDecibels bool
}

// BandProvider turns a discovered scene into raw VV/VH raster paths on
// disk. Implementations own resolution against their product store and any
// transfer or external processing needed to produce the bands.
type BandProvider interface {
	// Bands materializes the VV and VH rasters under env.Workdir.
	Bands(ctx context.Context, sc *Scene, env RunEnv) (BandPaths, error)

	// Name returns the provider name used in working-directory stamps.
	Name() string
}
