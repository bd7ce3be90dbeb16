package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/npapad/s1rgb/internal/composite"
	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/raster"
)

const workdirStampLayout = "20060102_150405"

// Result lists the artifacts of a completed run. Artifacts from a failed
// run stay on disk for diagnosis; nothing is cleaned up on error.
type Result struct {
	Workdir   string
	SceneID   string
	VVClip    string
	VHClip    string
	Composite string
}

// Pipeline is one configured variant: a discovery source, a band provider,
// and the shared harmonization/compositing core.
type Pipeline struct {
	discovery Discovery
	provider  BandProvider
	outRoot   string
	logger    *slog.Logger

	// now is stubbed in tests to pin working-directory stamps.
	now func() time.Time
}

// New assembles a pipeline writing its runs under outRoot.
func New(discovery Discovery, provider BandProvider, outRoot string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		discovery: discovery,
		provider:  provider,
		outRoot:   outRoot,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one strictly sequential pass: discover, provide bands, clip
// both polarizations, verify grid alignment, composite. Every stage error
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, aoi geo.AOI, start, end time.Time) (*Result, error) {
	env, err := p.prepareRun(aoi)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "pipeline run started",
		slog.String("workdir", env.Workdir),
		slog.String("aoi", aoi.String()),
		slog.String("provider", p.provider.Name()),
	)

	sc, err := p.discovery.Discover(ctx, aoi, start, end)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	p.logger.InfoContext(ctx, "scene discovered",
		slog.String("scene_id", sc.Pointer.ID),
		slog.Time("sensing_start", sc.Pointer.Start),
	)

	bands, err := p.provider.Bands(ctx, sc, env)
	if err != nil {
		return nil, fmt.Errorf("band provider %s failed: %w", p.provider.Name(), err)
	}

	distDir := filepath.Join(env.Workdir, "dist")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	vvClip := filepath.Join(distDir, "VV_clip.tif")
	vhClip := filepath.Join(distDir, "VH_clip.tif")
	if err := raster.ClipToAOI(ctx, bands.VV, vvClip, aoi, p.logger); err != nil {
		return nil, fmt.Errorf("VV clip failed: %w", err)
	}
	if err := raster.ClipToAOI(ctx, bands.VH, vhClip, aoi, p.logger); err != nil {
		return nil, fmt.Errorf("VH clip failed: %w", err)
	}

	rgbPath, err := p.composite(ctx, vvClip, vhClip, distDir, bands.InDecibels)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("composite", rgbPath),
	)
	return &Result{
		Workdir:   env.Workdir,
		SceneID:   sc.Pointer.ID,
		VVClip:    vvClip,
		VHClip:    vhClip,
		Composite: rgbPath,
	}, nil
}

// prepareRun creates the per-run working directory and the AOI sidecar.
func (p *Pipeline) prepareRun(aoi geo.AOI) (RunEnv, error) {
	workdir := filepath.Join(p.outRoot, p.runStamp())
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return RunEnv{}, fmt.Errorf("failed to create working directory: %w", err)
	}

	aoiPath := filepath.Join(workdir, "aoi.geojson")
	if err := geo.WriteAOIGeoJSON(aoi, aoiPath); err != nil {
		return RunEnv{}, err
	}

	return RunEnv{AOI: aoi, AOIPath: aoiPath, Workdir: workdir}, nil
}

// runStamp names the working directory after the invocation time and the
// provider variant.
func (p *Pipeline) runStamp() string {
	return p.now().Format(workdirStampLayout) + "_S1_" + p.provider.Name()
}

// composite verifies the clipped pair shares one grid, then builds and
// writes the false-color product. Verification is a hard gate: no band math
// happens on misaligned grids.
func (p *Pipeline) composite(ctx context.Context, vvClip, vhClip, distDir string, inDecibels bool) (string, error) {
	vv, vvInfo, err := raster.ReadBand(vvClip)
	if err != nil {
		return "", err
	}
	vh, vhInfo, err := raster.ReadBand(vhClip)
	if err != nil {
		return "", err
	}

	if err := raster.VerifyAligned(vvInfo, vhInfo); err != nil {
		return "", err
	}
	p.logger.DebugContext(ctx, "clipped pair verified",
		slog.Int("width", vvInfo.Width),
		slog.Int("height", vvInfo.Height),
	)

	composite.MaskNoData(vv, vvInfo.NoData)
	composite.MaskNoData(vh, vhInfo.NoData)
	if !inDecibels {
		vv = composite.ToDecibel(vv)
		vh = composite.ToDecibel(vh)
	}

	r, g, b, err := composite.BuildComposite(vv, vh)
	if err != nil {
		return "", err
	}

	rgbPath := filepath.Join(distDir, "S1_RGB.tif")
	if err := composite.WriteRGB(rgbPath, r, g, b, vvInfo); err != nil {
		return "", err
	}
	return rgbPath, nil
}
