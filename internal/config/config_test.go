package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/docsearch/internal/errors"
)

func setup(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Setenv("DOCSEARCH_CONFIG_DIR", t.TempDir())
	Init()
}

func TestInit(t *testing.T) {
	setup(t)

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if viper.GetInt("search.limit") != DefaultLimit {
		t.Errorf("expected search.limit default %d, got %d", DefaultLimit, viper.GetInt("search.limit"))
	}
	if viper.GetDuration("serve.debounce") != DefaultDebounce {
		t.Errorf("expected serve.debounce default %v, got %v", DefaultDebounce, viper.GetDuration("serve.debounce"))
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	setup(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", *cfg, *Default())
	}
	if Path() != "" {
		t.Errorf("Path() = %q, want empty when running on defaults", Path())
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	setup(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("search:\n  limit: 10\nserve:\n  debounce: 1s\n  metrics_addr: \":9090\"\n")
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Search.Limit != 10 {
		t.Errorf("Search.Limit = %d, want 10", cfg.Search.Limit)
	}
	if cfg.Search.MinFuzzyLength != DefaultMinFuzzyLength {
		t.Errorf("Search.MinFuzzyLength = %d, want default", cfg.Search.MinFuzzyLength)
	}
	if cfg.Serve.Debounce != time.Second {
		t.Errorf("Serve.Debounce = %v, want 1s", cfg.Serve.Debounce)
	}
	if cfg.Serve.MetricsAddr != ":9090" {
		t.Errorf("Serve.MetricsAddr = %q, want :9090", cfg.Serve.MetricsAddr)
	}
	if Path() != configPath {
		t.Errorf("Path() = %q, want %q", Path(), configPath)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	t.Setenv("DOCSEARCH_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("search:\n  limit: 7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Search.Limit != 7 {
		t.Errorf("Search.Limit = %d, want 7", cfg.Search.Limit)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	setup(t)
	t.Setenv("DOCSEARCH_SEARCH_LIMIT", "3")
	t.Setenv("DOCSEARCH_SERVE_WATCH", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Search.Limit != 3 {
		t.Errorf("Search.Limit = %d, want 3 from env", cfg.Search.Limit)
	}
	if !cfg.Serve.Watch {
		t.Error("Serve.Watch = false, want true from env")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	setup(t)

	_, err := Load("/non/existent/path/config.yaml")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	setup(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("search: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() with invalid YAML should error")
	}
}

func TestWriteDefault(t *testing.T) {
	setup(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("written config is not YAML: %v", err)
	}
	serve, _ := raw["serve"].(map[string]any)
	if serve["debounce"] != "250ms" {
		t.Errorf("serve.debounce = %v, want 250ms", serve["debounce"])
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written default: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round trip = %+v, want %+v", *cfg, *Default())
	}

	if err := WriteDefault(path, false); err == nil {
		t.Error("WriteDefault() should refuse to overwrite without force")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error: %v", err)
	}
}
