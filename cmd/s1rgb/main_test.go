package main

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		debugOn bool
		infoOn  bool
	}{
		{level: "debug", debugOn: true, infoOn: true},
		{level: "info", debugOn: false, infoOn: true},
		{level: "error", debugOn: false, infoOn: false},
		{level: "bogus", debugOn: false, infoOn: true}, // falls back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := setupLogger(tt.level, "text")
			ctx := context.Background()
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	start, end, err := parseWindow("2025-12-01", "2025-12-15")
	if err != nil {
		t.Fatalf("parseWindow failed: %v", err)
	}
	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %s", start)
	}
	// The end date is inclusive: the window covers its whole day.
	if !end.Equal(time.Date(2025, 12, 15, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("unexpected end: %s", end)
	}

	if _, _, err := parseWindow("2025-12-15", "2025-12-01"); err == nil {
		t.Error("expected error when end precedes start, got nil")
	}
	if _, _, err := parseWindow("December 1", "2025-12-15"); err == nil {
		t.Error("expected error for malformed start date, got nil")
	}
}
