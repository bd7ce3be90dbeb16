// Package safe unpacks standard satellite-data archive containers and
// locates the per-polarization measurement rasters inside them.
package safe

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMeasurementMissing is returned when an extracted archive does not
// contain the expected polarization measurement raster.
var ErrMeasurementMissing = errors.New("measurement raster not found in archive")

// Extract unpacks a product zip under destDir and returns the path of the
// product directory. An already-extracted product directory is reused.
func Extract(zipPath, destDir string) (string, error) {
	productDir := filepath.Join(destDir, strings.TrimSuffix(filepath.Base(zipPath), ".zip"))
	if _, err := os.Stat(productDir); err == nil {
		return productDir, nil
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(f, destDir); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}

	if _, err := os.Stat(productDir); err != nil {
		return "", fmt.Errorf("archive did not contain expected product directory %s: %w",
			filepath.Base(productDir), err)
	}
	return productDir, nil
}

func extractFile(f *zip.File, destDir string) error {
	// Reject entries escaping the destination directory.
	target := filepath.Join(destDir, filepath.Clean(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes destination directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return err
}

// MeasurementTIFF locates the measurement raster for one polarization
// inside a product directory. Measurement file names carry the polarization
// as a lowercase marker, e.g. "...-vv-...tiff".
func MeasurementTIFF(productDir, polarization string) (string, error) {
	pattern := filepath.Join(productDir, "measurement",
		fmt.Sprintf("*-%s-*.tiff", strings.ToLower(polarization)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("bad measurement glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: polarization %s under %s",
			ErrMeasurementMissing, strings.ToUpper(polarization), productDir)
	}
	return matches[0], nil
}
