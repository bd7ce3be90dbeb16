package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
)

// COGProvider serves bands from the catalog's cloud-optimized assets: the
// per-polarization object keys come straight off the discovered item, no
// product-store resolution involved. Asset values are digital numbers in
// linear power.
type COGProvider struct {
	store  *minio.Client
	bucket string
	logger *slog.Logger
}

// NewCOGProvider assembles the cloud-optimized band provider.
func NewCOGProvider(store *minio.Client, bucket string, logger *slog.Logger) *COGProvider {
	return &COGProvider{store: store, bucket: bucket, logger: logger}
}

// Name implements BandProvider.
func (p *COGProvider) Name() string { return "cog" }

// Bands implements BandProvider.
func (p *COGProvider) Bands(ctx context.Context, sc *Scene, env RunEnv) (BandPaths, error) {
	cogDir := filepath.Join(env.Workdir, "cog")
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		return BandPaths{}, fmt.Errorf("failed to create COG directory: %w", err)
	}

	vv, err := p.fetchAsset(ctx, sc, "vv", filepath.Join(cogDir, "VV.tif"))
	if err != nil {
		return BandPaths{}, err
	}
	vh, err := p.fetchAsset(ctx, sc, "vh", filepath.Join(cogDir, "VH.tif"))
	if err != nil {
		return BandPaths{}, err
	}

	return BandPaths{VV: vv, VH: vh, InDecibels: false}, nil
}

func (p *COGProvider) fetchAsset(ctx context.Context, sc *Scene, key, dest string) (string, error) {
	href, ok := sc.Assets[key]
	if !ok || href == "" {
		return "", fmt.Errorf("scene %s exposes no %q asset", sc.Pointer.ID, key)
	}

	objectKey, err := p.objectKey(href)
	if err != nil {
		return "", err
	}

	p.logger.InfoContext(ctx, "downloading cloud-optimized asset",
		slog.String("asset", key),
		slog.String("object", objectKey),
	)
	if err := p.store.FGetObject(ctx, p.bucket, objectKey, dest, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to download %s asset: %w", key, err)
	}
	return dest, nil
}

// objectKey strips the s3 scheme and bucket from an asset href.
func (p *COGProvider) objectKey(href string) (string, error) {
	prefix := "s3://" + p.bucket + "/"
	if !strings.HasPrefix(href, prefix) {
		return "", fmt.Errorf("asset href %q is not in bucket %s", href, p.bucket)
	}
	return strings.TrimPrefix(href, prefix), nil
}
