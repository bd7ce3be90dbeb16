package geocode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEngine_Run_CapturesLog(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	engine := NewEngine("sh", []string{"-c", "echo processing; exit 0", "engine"})

	if err := engine.Run(context.Background(), "/tmp/a.zip", "/tmp/aoi.geojson", outDir); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	log, err := os.ReadFile(filepath.Join(outDir, "geocode.log"))
	if err != nil {
		t.Fatalf("reading engine log: %v", err)
	}
	if !strings.Contains(string(log), "processing") {
		t.Errorf("engine output not captured: %q", log)
	}
}

func TestEngine_Run_Failure(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	engine := NewEngine("sh", []string{"-c", "echo boom >&2; exit 3", "engine"})

	err := engine.Run(context.Background(), "/tmp/a.zip", "/tmp/aoi.geojson", outDir)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.Stage != "geocoding" {
		t.Errorf("unexpected stage: %s", toolErr.Stage)
	}
	if !strings.HasSuffix(toolErr.LogPath, "geocode.log") {
		t.Errorf("error should point at the engine log: %s", toolErr.LogPath)
	}
}

func TestEngine_Run_NoCommand(t *testing.T) {
	engine := NewEngine("", nil)
	err := engine.Run(context.Background(), "a", "b", t.TempDir())
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
}

func TestFindBand(t *testing.T) {
	outDir := t.TempDir()
	nested := filepath.Join(outDir, "S1A_scene", "processed")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	files := []string{
		filepath.Join(nested, "S1A_20251209_VV_gamma0.tif"),
		filepath.Join(nested, "S1A_20251209_VH_gamma0.tif"),
		filepath.Join(nested, "S1A_20251209_VV_gamma0.tif.aux.xml"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindBand(outDir, "vv")
	if err != nil {
		t.Fatalf("FindBand failed: %v", err)
	}
	if filepath.Base(got) != "S1A_20251209_VV_gamma0.tif" {
		t.Errorf("unexpected band path: %s", got)
	}
}

func TestFindBand_Missing(t *testing.T) {
	_, err := FindBand(t.TempDir(), "VV")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.Stage != "output discovery" {
		t.Errorf("unexpected stage: %s", toolErr.Stage)
	}
}
