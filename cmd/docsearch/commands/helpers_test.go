package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/docsearch/internal/config"
	"github.com/thoreinstein/docsearch/internal/logging"
	"github.com/thoreinstein/docsearch/internal/match"
)

const testIndex = `packageSearchIndex = [` +
	`{"l":"All Packages","u":"allpackages-index.html"},` +
	`{"l":"mgui"},` +
	`{"l":"mgui.io"},` +
	`{"l":"mgui.io.util"},` +
	`{"l":"mgui.util"},` +
	`{"l":"mgui.interfaces"},` +
	`{"l":"mgui.interfaces.graphs"},` +
	`{"l":"mgui.interfaces.graphs.util"},` +
	`{"l":7}` +
	`];updateSearchResults();`

// writeIndex writes the test index to a temp dir and returns its path.
func writeIndex(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package-search-index.js")
	if err := os.WriteFile(path, []byte(testIndex), 0o644); err != nil {
		t.Fatalf("writing index: %v", err)
	}
	return path
}

// useDefaults resets the package configuration for the duration of a test.
func useDefaults(t *testing.T) {
	t.Helper()
	origCfg, origColor, origErr := cfg, colorMode, configLoadErr
	cfg = config.Default()
	colorMode = string(logging.ColorNever)
	configLoadErr = nil
	t.Cleanup(func() {
		cfg, colorMode, configLoadErr = origCfg, origColor, origErr
	})
}

func TestLoadCatalog_SkipsMalformed(t *testing.T) {
	useDefaults(t)

	cat, skipped, err := loadCatalog(t.Context(), writeIndex(t))
	if err != nil {
		t.Fatalf("loadCatalog() error = %v", err)
	}
	if cat.Size() != 8 {
		t.Errorf("Size() = %d, want 8", cat.Size())
	}
	if len(skipped) != 1 {
		t.Errorf("skipped = %d records, want 1", len(skipped))
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	useDefaults(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"unsupported extension", filepath.Join(dir, "index.csv"), 1},
		{"missing file", filepath.Join(dir, "missing.js"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadCatalog(t.Context(), tt.path)
			if err == nil {
				t.Fatal("loadCatalog() error = nil, want error")
			}
			if code := exitCode(err); code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestHighlighter_Label(t *testing.T) {
	useDefaults(t)

	h := newHighlighter(os.Stdout)
	h.match.EnableColor()
	defer h.match.DisableColor()

	got := h.label("mgui.util", []match.Span{{Start: 5, End: 9}})
	want := "mgui." + h.match.Sprint("util")
	if got != want {
		t.Errorf("label() = %q, want %q", got, want)
	}

	// Out-of-range spans are ignored.
	if got := h.label("abc", []match.Span{{Start: 1, End: 10}}); got != "abc" {
		t.Errorf("label() = %q, want %q", got, "abc")
	}
}
