package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit_SetsLevelAndFormat(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	if err := Init(Options{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", Logger.GetLevel())
	}
	if _, ok := Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", Logger.Formatter)
	}
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	if err := Init(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInit_WritesToFile(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	path := filepath.Join(t.TempDir(), "tracker.log")
	if err := Init(Options{Level: "info", File: path}); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	Logger.Info("written to file")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), "written to file") {
		t.Errorf("expected message in log file, got %q", raw)
	}
}
