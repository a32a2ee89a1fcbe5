package logging

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/five82/vitrine/internal/logtail"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "vitrine.log")
	logger, err := New(Options{Path: path, Level: "warn"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Named("shelf").Info("dropped by level")
	logger.Named("shelf").Warn("snapshot write failed")
	_ = logger.Sync()

	entries, err := logtail.ReadEntries(path, 10)
	if err != nil {
		t.Fatalf("ReadEntries returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want only the warning", entries)
	}
	if entries[0].Logger != "vitrine.shelf" || entries[0].Level != "warn" {
		t.Fatalf("entry = %+v, want vitrine.shelf warn", entries[0])
	}
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitrine.log")
	logger, err := New(Options{Path: path, Level: "error", Verbose: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug not enabled with Verbose")
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel(""); err != nil || lvl != zapcore.InfoLevel {
		t.Fatalf("ParseLevel(\"\") = %v, %v", lvl, err)
	}
	if lvl, err := ParseLevel("DEBUG"); err != nil || lvl != zapcore.DebugLevel {
		t.Fatalf("ParseLevel(DEBUG) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) returned nil error")
	}
	if _, err := New(Options{}); err == nil {
		t.Fatalf("New without path returned nil error")
	}
}
