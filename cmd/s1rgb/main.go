// s1rgb builds false-color Sentinel-1 VV/VH composites for an AOI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/npapad/s1rgb/internal/config"
	"github.com/npapad/s1rgb/internal/geo"
	"github.com/npapad/s1rgb/internal/geocode"
	"github.com/npapad/s1rgb/internal/odata"
	"github.com/npapad/s1rgb/internal/pipeline"
	"github.com/npapad/s1rgb/internal/scene"
	"github.com/npapad/s1rgb/internal/stacapi"
)

const dateLayout = "2006-01-02"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		bboxArg     string
		startArg    string
		endArg      string
		providerArg string
	)

	root := &cobra.Command{
		Use:           "s1rgb",
		Short:         "Sentinel-1 VV/VH false-color composite pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: discover, resolve, clip, verify, composite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), bboxArg, startArg, endArg, providerArg)
		},
	}
	runCmd.Flags().StringVar(&bboxArg, "bbox", "", "AOI as minLon,minLat,maxLon,maxLat (WGS84)")
	runCmd.Flags().StringVar(&startArg, "start", "", "start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&endArg, "end", "", "end date (YYYY-MM-DD, inclusive)")
	runCmd.Flags().StringVar(&providerArg, "provider", "", "band provider override (raw, rtc, cog)")
	for _, flag := range []string{"bbox", "start", "end"} {
		_ = runCmd.MarkFlagRequired(flag)
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <scene-id>",
		Short: "Resolve a discovered scene identifier into its product record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolve(cmd.Context(), bboxArg, args[0])
		},
	}
	resolveCmd.Flags().StringVar(&bboxArg, "bbox", "", "AOI as minLon,minLat,maxLon,maxLat (WGS84)")
	_ = resolveCmd.MarkFlagRequired("bbox")

	root.AddCommand(runCmd, resolveCmd)
	return root
}

func run(ctx context.Context, bboxArg, startArg, endArg, providerArg string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if providerArg != "" {
		cfg.Pipeline.Provider = providerArg
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	aoi, err := geo.ParseAOI(bboxArg)
	if err != nil {
		return err
	}
	start, end, err := parseWindow(startArg, endArg)
	if err != nil {
		return err
	}

	godal.RegisterAll()

	discovery := pipeline.NewSTACDiscovery(
		stacapi.NewClient(cfg.STAC.BaseURL, cfg.STAC.Timeout).WithLogger(logger),
		cfg.STAC.Collection,
	)

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting pipeline",
		"provider", cfg.Pipeline.Provider,
		"aoi", aoi.String(),
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
	)

	started := time.Now()
	result, err := pipeline.New(discovery, provider, cfg.Pipeline.OutputRoot, logger).
		Run(ctx, aoi, start, end)
	if err != nil {
		return err
	}

	logger.Info("pipeline finished",
		"scene_id", result.SceneID,
		"vv_clip", result.VVClip,
		"vh_clip", result.VHClip,
		"composite", result.Composite,
		"elapsed", time.Since(started).Round(time.Second).String(),
	)
	return nil
}

func resolve(ctx context.Context, bboxArg, sceneID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	aoi, err := geo.ParseAOI(bboxArg)
	if err != nil {
		return err
	}
	ptr, err := scene.ParsePointer(sceneID)
	if err != nil {
		return err
	}

	matcher := odata.NewMatcher(odata.NewClient(cfg.OData.BaseURL, cfg.OData.Timeout).WithLogger(logger)).
		WithTop(cfg.Pipeline.MatchTop).
		WithLogger(logger)

	product, err := matcher.Resolve(ctx, aoi, ptr)
	if err != nil {
		return err
	}

	fmt.Printf("%s\t%s\n", product.ID, product.Name)
	return nil
}

// buildProvider assembles the band provider the configuration selects.
func buildProvider(cfg *config.Config, logger *slog.Logger) (pipeline.BandProvider, error) {
	switch cfg.Pipeline.Provider {
	case config.ProviderCOG:
		store, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create object-store client: %w", err)
		}
		return pipeline.NewCOGProvider(store, cfg.S3.Bucket, logger), nil

	case config.ProviderRTC:
		matcher, tokens, downloader := buildCatalogAccess(cfg, logger)
		engine := geocode.NewEngine(cfg.Geocode.Command, cfg.Geocode.Args).WithLogger(logger)
		return pipeline.NewRTCProvider(matcher, tokens, downloader, engine, logger), nil

	default:
		matcher, tokens, downloader := buildCatalogAccess(cfg, logger)
		return pipeline.NewRawProvider(matcher, tokens, downloader, logger), nil
	}
}

func buildCatalogAccess(cfg *config.Config, logger *slog.Logger) (*odata.Matcher, *odata.TokenSource, *odata.Downloader) {
	matcher := odata.NewMatcher(odata.NewClient(cfg.OData.BaseURL, cfg.OData.Timeout).WithLogger(logger)).
		WithTop(cfg.Pipeline.MatchTop).
		WithLogger(logger)
	tokens := odata.NewTokenSource(cfg.Auth.TokenURL, cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.TokenTimeout).
		WithLogger(logger)
	downloader := odata.NewDownloader(cfg.Auth.DownloadURL, cfg.Auth.DownloadTimeout).
		WithLogger(logger)
	return matcher, tokens, downloader
}

// parseWindow turns two inclusive dates into a [start, end] interval
// covering both whole days.
func parseWindow(startArg, endArg string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, startArg, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startArg, err)
	}
	end, err := time.ParseInLocation(dateLayout, endArg, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endArg, err)
	}
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", endArg, startArg)
	}
	return start, end, nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// setupLogger writes to stderr so subcommand output on stdout (resolve's
// product line) stays machine-readable.
func setupLogger(level, format string) *slog.Logger {
	logLevel, ok := logLevels[level]
	if !ok {
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
