package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/paths"
	"github.com/thoreinstein/docsearch/pkg/fileutil"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "DOCSEARCH"

// Default values.
const (
	DefaultVersion           = 1
	DefaultLimit             = 50
	DefaultMinFuzzyLength    = 2
	DefaultParallelThreshold = 4096
	DefaultMaxSize           = fileutil.DefaultMaxSize
	DefaultDebounce          = 250 * time.Millisecond
)

// Config represents the top-level configuration structure.
type Config struct {
	Version int          `mapstructure:"version" yaml:"version"`
	Search  SearchConfig `mapstructure:"search" yaml:"search"`
	Index   IndexConfig  `mapstructure:"index" yaml:"index"`
	Serve   ServeConfig  `mapstructure:"serve" yaml:"serve"`
}

// SearchConfig controls query evaluation.
type SearchConfig struct {
	// Limit caps the number of results returned per query. 0 is unlimited.
	Limit int `mapstructure:"limit" yaml:"limit"`

	// MinFuzzyLength is the shortest query, in runes, that may produce a
	// subsequence match.
	MinFuzzyLength int `mapstructure:"min_fuzzy_length" yaml:"min_fuzzy_length"`

	// ParallelThreshold is the catalog size above which scans run in parallel.
	// 0 disables parallel scans.
	ParallelThreshold int `mapstructure:"parallel_threshold" yaml:"parallel_threshold"`
}

// IndexConfig controls index loading.
type IndexConfig struct {
	// MaxSize is the largest index, in bytes after decompression, that is read.
	MaxSize int64 `mapstructure:"max_size" yaml:"max_size"`
}

// ServeConfig controls the stdio server.
type ServeConfig struct {
	Watch       bool          `mapstructure:"watch" yaml:"watch"`
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version: DefaultVersion,
		Search: SearchConfig{
			Limit:             DefaultLimit,
			MinFuzzyLength:    DefaultMinFuzzyLength,
			ParallelThreshold: DefaultParallelThreshold,
		},
		Index: IndexConfig{
			MaxSize: DefaultMaxSize,
		},
		Serve: ServeConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", DefaultVersion)
	viper.SetDefault("search.limit", DefaultLimit)
	viper.SetDefault("search.min_fuzzy_length", DefaultMinFuzzyLength)
	viper.SetDefault("search.parallel_threshold", DefaultParallelThreshold)
	viper.SetDefault("index.max_size", DefaultMaxSize)
	viper.SetDefault("serve.watch", false)
	viper.SetDefault("serve.debounce", DefaultDebounce.String())
	viper.SetDefault("serve.metrics_addr", "")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		}
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, errors.Wrap(err, "reading config file")
		}
		// Implicit load without a file uses defaults.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	return &cfg, nil
}

// Path returns the config file in use, or "" when running on defaults.
func Path() string {
	return viper.ConfigFileUsed()
}

// WriteDefault writes the default configuration to path, creating its
// parent directory. An existing file is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Newf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAML(path, Default(), 0o644)
}
