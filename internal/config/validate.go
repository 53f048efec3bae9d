package config

import (
	"fmt"
	"net"

	"github.com/thoreinstein/docsearch/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrOutOfRange indicates a numeric field outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidAddress indicates a listen address that is not host:port.
	ErrInvalidAddress = errors.New("invalid listen address")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	check := func(field string, value any, ok bool, want string) {
		if !ok {
			errs = append(errs, &FieldError{Field: field, Value: value, Want: want, Err: ErrOutOfRange})
		}
	}
	check("search.limit", cfg.Search.Limit, cfg.Search.Limit >= 0, ">= 0")
	check("search.min_fuzzy_length", cfg.Search.MinFuzzyLength, cfg.Search.MinFuzzyLength >= 2, ">= 2")
	check("search.parallel_threshold", cfg.Search.ParallelThreshold, cfg.Search.ParallelThreshold >= 0, ">= 0")
	check("index.max_size", cfg.Index.MaxSize, cfg.Index.MaxSize > 0, "> 0")
	check("serve.debounce", cfg.Serve.Debounce, cfg.Serve.Debounce >= 0, ">= 0")

	if addr := cfg.Serve.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, &FieldError{Field: "serve.metrics_addr", Value: addr, Want: "host:port", Err: ErrInvalidAddress})
		}
	}

	return errs
}

// FieldError represents an invalid value for a specific field.
type FieldError struct {
	Field string
	Value any
	Want  string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (want %s): %v", e.Field, e.Value, e.Want, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
