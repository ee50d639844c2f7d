package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/config"
)

func TestNewWritesToProjectLog(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := filepath.Join(projectDir, config.SceDir, "logs", FileName)
	if logger.Path() != want {
		t.Fatalf("expected log path %s, got %s", want, logger.Path())
	}
	logger.WithField("script", "q01").Info("loaded script")
	logger.WithField("tick", 3).Debug("hidden at info level")
	logger.SetLevel(logrus.DebugLevel)
	logger.WithField("tick", 4).Debug("parked")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "loaded script") || !strings.Contains(text, "script=q01") {
		t.Fatalf("missing info line in %q", text)
	}
	if strings.Contains(text, "hidden at info level") {
		t.Fatalf("debug line written at info level: %q", text)
	}
	if !strings.Contains(text, "tick=4") {
		t.Fatalf("missing structured field in %q", text)
	}
}

func TestDiscardAndNilAreSafe(t *testing.T) {
	logger := Discard()
	logger.WithField("tick", 1).Error("dropped")
	if logger.Path() != "" {
		t.Fatalf("discard logger should have no path")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
