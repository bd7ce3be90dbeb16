// Package geocode drives the external terrain-correction/geocoding engine.
// The engine is opaque: it consumes a raw product archive and an AOI
// footprint, and leaves single-band GeoTIFFs per polarization on disk.
package geocode

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ToolError reports an external engine failure or missing engine outputs.
// Diagnosis belongs in the engine's own log file, which the error points at.
type ToolError struct {
	Stage   string // what the engine was asked to do
	LogPath string // engine log captured for this invocation, if any
	Err     error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("geocoding engine failed during %s", e.Stage)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.LogPath != "" {
		msg += " (see " + e.LogPath + ")"
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Engine runs a configured geocoding command. The command contract is
// positional: <archive> <aoi-geojson> <output-dir>, preceded by any
// configured extra arguments.
type Engine struct {
	command string
	args    []string
	logger  *slog.Logger
}

// NewEngine creates an engine runner for the given command and fixed
// leading arguments.
func NewEngine(command string, args []string) *Engine {
	return &Engine{
		command: command,
		args:    args,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger for the engine runner.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// Run geocodes a product archive into outDir, clipped to the AOI footprint.
// Engine stdout/stderr are captured to geocode.log inside outDir.
func (e *Engine) Run(ctx context.Context, archivePath, aoiPath, outDir string) error {
	if e.command == "" {
		return &ToolError{Stage: "startup", Err: fmt.Errorf("no geocoding command configured")}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create engine output directory: %w", err)
	}

	logPath := filepath.Join(outDir, "geocode.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create engine log file: %w", err)
	}
	defer logFile.Close()

	args := append(append([]string{}, e.args...), archivePath, aoiPath, outDir)
	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	e.logger.InfoContext(ctx, "running geocoding engine",
		slog.String("command", e.command),
		slog.String("archive", archivePath),
		slog.String("outdir", outDir),
	)

	if err := cmd.Run(); err != nil {
		return &ToolError{Stage: "geocoding", LogPath: logPath, Err: err}
	}
	return nil
}

// FindBand locates the engine's output raster for one polarization by
// walking outDir for a GeoTIFF whose name carries the polarization marker.
func FindBand(outDir, polarization string) (string, error) {
	marker := strings.ToUpper(polarization)
	var found string
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found != "" || d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.Contains(strings.ToUpper(name), marker) && strings.HasSuffix(name, ".tif") {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan engine output directory: %w", err)
	}
	if found == "" {
		return "", &ToolError{
			Stage:   "output discovery",
			LogPath: filepath.Join(outDir, "geocode.log"),
			Err:     fmt.Errorf("no %s GeoTIFF under %s", marker, outDir),
		}
	}
	return found, nil
}
