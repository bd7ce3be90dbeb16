package odata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// progressLogInterval is how often a streaming download reports progress.
const progressLogInterval = 256 << 20 // 256 MiB

// Downloader streams product archives from the catalog's download service.
// Transfers retry transparently on transient failures; the surrounding
// pipeline stays single-shot.
type Downloader struct {
	baseURL    string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// NewDownloader creates a downloader against the given download endpoint.
func NewDownloader(baseURL string, timeout time.Duration) *Downloader {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	client.HTTPClient.Timeout = timeout

	return &Downloader{
		baseURL:    baseURL,
		httpClient: client,
		logger:     slog.Default(),
	}
}

// WithLogger sets a custom logger for the downloader.
func (d *Downloader) WithLogger(logger *slog.Logger) *Downloader {
	d.logger = logger
	return d
}

// Download fetches a product archive by identifier into dest. A file that
// already exists at dest is reused so an interrupted run can be re-invoked
// without re-transferring the archive.
func (d *Downloader) Download(ctx context.Context, productID, token, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		d.logger.InfoContext(ctx, "product archive already present, skipping download",
			slog.String("path", dest),
		)
		return nil
	}

	downloadURL := fmt.Sprintf("%s/Products(%s)/$value", d.baseURL, productID)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("product download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("download service returned status %d: %s", resp.StatusCode, string(body))
	}

	// Stream to a partial file first so an existing dest always means a
	// completed transfer.
	partial := dest + ".part"
	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", partial, err)
	}

	written, err := d.copyWithProgress(ctx, f, resp.Body, resp.ContentLength)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("product download failed after %d bytes: %w", written, err)
	}

	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	d.logger.InfoContext(ctx, "product archive downloaded",
		slog.String("path", dest),
		slog.Int64("bytes", written),
	)
	return nil
}

func (d *Downloader) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64) (int64, error) {
	var written, lastLogged int64
	buf := make([]byte, 1<<20)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if written-lastLogged >= progressLogInterval {
				lastLogged = written
				attrs := []any{slog.Int64("bytes", written)}
				if total > 0 {
					attrs = append(attrs, slog.Float64("percent", 100*float64(written)/float64(total)))
				}
				d.logger.InfoContext(ctx, "download progress", attrs...)
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
