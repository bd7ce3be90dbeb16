package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/npapad/s1rgb/internal/geocode"
	"github.com/npapad/s1rgb/internal/odata"
)

// RTCProvider resolves and downloads the product archive, then hands it to
// the external terrain-correction engine, which leaves geocoded single-band
// GeoTIFFs behind. Engine outputs are affine-referenced and already
// decibel-scaled.
type RTCProvider struct {
	matcher    *odata.Matcher
	tokens     *odata.TokenSource
	downloader *odata.Downloader
	engine     *geocode.Engine
	logger     *slog.Logger
}

// NewRTCProvider assembles the terrain-corrected band provider.
func NewRTCProvider(matcher *odata.Matcher, tokens *odata.TokenSource, downloader *odata.Downloader, engine *geocode.Engine, logger *slog.Logger) *RTCProvider {
	return &RTCProvider{matcher: matcher, tokens: tokens, downloader: downloader, engine: engine, logger: logger}
}

// Name implements BandProvider.
func (p *RTCProvider) Name() string { return "rtc" }

// Bands implements BandProvider.
func (p *RTCProvider) Bands(ctx context.Context, sc *Scene, env RunEnv) (BandPaths, error) {
	archive, err := fetchArchive(ctx, p.matcher, p.tokens, p.downloader, sc, env)
	if err != nil {
		return BandPaths{}, err
	}

	rtcDir := filepath.Join(env.Workdir, "rtc_out")
	if err := p.engine.Run(ctx, archive, env.AOIPath, rtcDir); err != nil {
		return BandPaths{}, err
	}

	vv, err := geocode.FindBand(rtcDir, "VV")
	if err != nil {
		return BandPaths{}, err
	}
	vh, err := geocode.FindBand(rtcDir, "VH")
	if err != nil {
		return BandPaths{}, err
	}
	p.logger.InfoContext(ctx, "geocoded bands located",
		slog.String("vv", vv),
		slog.String("vh", vh),
	)

	return BandPaths{VV: vv, VH: vh, InDecibels: true}, nil
}
