package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/npapad/s1rgb/internal/odata"
	"github.com/npapad/s1rgb/internal/safe"
)

// RawProvider resolves the discovered scene against the product catalog,
// downloads the product archive, and serves the raw measurement rasters
// straight out of it. The measurements are GCP-referenced digital numbers
// in linear power.
type RawProvider struct {
	matcher    *odata.Matcher
	tokens     *odata.TokenSource
	downloader *odata.Downloader
	logger     *slog.Logger
}

// NewRawProvider assembles the raw-archive band provider.
func NewRawProvider(matcher *odata.Matcher, tokens *odata.TokenSource, downloader *odata.Downloader, logger *slog.Logger) *RawProvider {
	return &RawProvider{matcher: matcher, tokens: tokens, downloader: downloader, logger: logger}
}

// Name implements BandProvider.
func (p *RawProvider) Name() string { return "raw" }

// Bands implements BandProvider.
func (p *RawProvider) Bands(ctx context.Context, sc *Scene, env RunEnv) (BandPaths, error) {
	archive, err := fetchArchive(ctx, p.matcher, p.tokens, p.downloader, sc, env)
	if err != nil {
		return BandPaths{}, err
	}

	extractDir := filepath.Join(env.Workdir, "extract")
	productDir, err := safe.Extract(archive, extractDir)
	if err != nil {
		return BandPaths{}, err
	}
	p.logger.InfoContext(ctx, "product archive extracted",
		slog.String("product_dir", productDir),
	)

	vv, err := safe.MeasurementTIFF(productDir, "vv")
	if err != nil {
		return BandPaths{}, err
	}
	vh, err := safe.MeasurementTIFF(productDir, "vh")
	if err != nil {
		return BandPaths{}, err
	}

	return BandPaths{VV: vv, VH: vh, InDecibels: false}, nil
}

// fetchArchive resolves the authoritative product record and downloads its
// archive into the working directory, reusing an existing file.
func fetchArchive(ctx context.Context, matcher *odata.Matcher, tokens *odata.TokenSource, downloader *odata.Downloader, sc *Scene, env RunEnv) (string, error) {
	product, err := matcher.Resolve(ctx, env.AOI, sc.Pointer)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(env.Workdir, product.Name+".zip")

	token, err := tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}

	if err := downloader.Download(ctx, product.ID, token, dest); err != nil {
		return "", err
	}
	return dest, nil
}
