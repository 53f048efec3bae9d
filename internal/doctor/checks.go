package doctor

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/config"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

// sizeWarnRatio is the share of index.max_size above which an index is
// reported as close to the limit.
const sizeWarnRatio = 0.8

// maxReportedItems caps the number of labels or reasons listed in details.
const maxReportedItems = 10

// ConfigCheck validates the loaded configuration and its file permissions.
type ConfigCheck struct {
	path    string
	cfg     *config.Config
	loadErr error
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck checks cfg, loaded from path. An empty path means the
// built-in defaults are in use. loadErr is the error, if any, returned when
// the config file was read.
func NewConfigCheck(path string, cfg *config.Config, loadErr error) *ConfigCheck {
	return &ConfigCheck{path: path, cfg: cfg, loadErr: loadErr}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run validates the configuration values and the config file mode.
func (c *ConfigCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.loadErr != nil {
		result.Status = SeverityError
		result.Message = c.loadErr.Error()
		result.Details = map[string]any{"path": c.path}
		result.FixHint = "Fix the config file syntax or run 'docsearch config init --force'"
		return result
	}

	if errs := config.Validate(c.cfg); len(errs) > 0 {
		problems := make([]string, len(errs))
		for i, err := range errs {
			problems[i] = err.Error()
		}
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%d invalid configuration value(s)", len(errs))
		result.Details = map[string]any{"path": c.path, "problems": problems}
		result.FixHint = "Fix the values in the config file or run 'docsearch config init --force'"
		return result
	}

	if c.path == "" {
		result.Status = SeverityInfo
		result.Message = "no config file found, using built-in defaults"
		result.FixHint = "Run 'docsearch config init' to create one"
		return result
	}

	info, err := os.Stat(c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat config file: %v", err)
		result.Details = map[string]any{"path": c.path}
		return result
	}

	// Unix permissions don't apply on Windows.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		result.Status = SeverityWarning
		result.Message = "config file is world-writable"
		result.Details = map[string]any{"path": c.path, "permissions": fmt.Sprintf("%04o", info.Mode().Perm())}
		result.FixHint = "chmod 644 " + c.path
		return result
	}

	result.Status = SeverityPass
	result.Message = "configuration is valid"
	result.Details = map[string]any{"path": c.path}
	return result
}

// IndexCheck loads an index and reports load failures and malformed records.
// Checks that inspect the catalog read it from an IndexCheck that ran first.
type IndexCheck struct {
	path    string
	maxSize int64

	cat *catalog.Catalog
}

var _ Check = (*IndexCheck)(nil)

// NewIndexCheck checks the index at path, read with the given size limit.
func NewIndexCheck(path string, maxSize int64) *IndexCheck {
	return &IndexCheck{path: path, maxSize: maxSize}
}

// Name returns the unique identifier for this check.
func (c *IndexCheck) Name() string {
	return "index-load"
}

// Category returns the grouping for this check.
func (c *IndexCheck) Category() string {
	return "index"
}

// Catalog returns the catalog loaded by Run, or nil if loading failed or
// Run has not been called.
func (c *IndexCheck) Catalog() *catalog.Catalog {
	return c.cat
}

// Run loads the index.
func (c *IndexCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	cat, skipped, err := catalog.LoadFile(c.path, catalog.WithMaxSize(c.maxSize))
	if err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		result.Details = map[string]any{"path": c.path}
		result.FixHint = "Regenerate the index or check its format and extension"
		return result
	}
	c.cat = cat

	result.Details = map[string]any{
		"path":    c.path,
		"entries": cat.Size(),
		"groups":  len(cat.Groups()),
	}

	if len(skipped) > 0 {
		reasons := make([]string, 0, min(len(skipped), maxReportedItems))
		for _, err := range skipped[:min(len(skipped), maxReportedItems)] {
			reasons = append(reasons, err.Error())
		}
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("loaded %d entries, skipped %d malformed record(s)", cat.Size(), len(skipped))
		result.Details["malformed"] = len(skipped)
		result.Details["reasons"] = reasons
		result.FixHint = "Every record needs a non-empty string label under \"l\""
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("loaded %d entries", cat.Size())
	return result
}

// IndexSizeCheck reports indexes close to or above the configured size limit.
type IndexSizeCheck struct {
	path    string
	maxSize int64
}

var _ Check = (*IndexSizeCheck)(nil)

// NewIndexSizeCheck compares the index at path with maxSize.
func NewIndexSizeCheck(path string, maxSize int64) *IndexSizeCheck {
	return &IndexSizeCheck{path: path, maxSize: maxSize}
}

// Name returns the unique identifier for this check.
func (c *IndexSizeCheck) Name() string {
	return "index-size"
}

// Category returns the grouping for this check.
func (c *IndexSizeCheck) Category() string {
	return "index"
}

// Run compares the file size with the limit. Compressed indexes are
// measured on disk, so their result is only informational.
func (c *IndexSizeCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	info, err := os.Stat(c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat index: %v", err)
		return result
	}

	size := info.Size()
	result.Details = map[string]any{"bytes": size, "max_size": c.maxSize}

	_, comp, err := catalog.DetectFormat(c.path)
	if err == nil && comp != catalog.CompressionNone {
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%s-compressed index is %d bytes on disk", comp, size)
		return result
	}

	switch {
	case size > c.maxSize:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("index is %d bytes, above the %d byte limit", size, c.maxSize)
		result.FixHint = "Raise index.max_size in the config file"
	case float64(size) > sizeWarnRatio*float64(c.maxSize):
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("index is %d bytes, close to the %d byte limit", size, c.maxSize)
		result.FixHint = "Raise index.max_size in the config file"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("index is %d bytes", size)
	}
	return result
}

// DuplicateLabelCheck lists labels that occur more than once, ignoring case.
// Duplicates are legal and are all returned by queries.
type DuplicateLabelCheck struct {
	index *IndexCheck
}

var _ Check = (*DuplicateLabelCheck)(nil)

// NewDuplicateLabelCheck inspects the catalog loaded by index.
func NewDuplicateLabelCheck(index *IndexCheck) *DuplicateLabelCheck {
	return &DuplicateLabelCheck{index: index}
}

// Name returns the unique identifier for this check.
func (c *DuplicateLabelCheck) Name() string {
	return "duplicate-labels"
}

// Category returns the grouping for this check.
func (c *DuplicateLabelCheck) Category() string {
	return "index"
}

// Run scans the catalog for duplicate labels.
func (c *DuplicateLabelCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	cat := c.index.Catalog()
	if cat == nil {
		result.Status = SeverityInfo
		result.Message = "skipped, index did not load"
		return result
	}

	seen := make(map[string]bool)
	var dups []string
	for _, e := range cat.All() {
		key := normalize.Fold(strings.TrimSpace(e.Label))
		if seen[key] {
			continue
		}
		seen[key] = true
		if len(cat.Lookup(e.Label)) > 1 {
			dups = append(dups, e.Label)
		}
	}

	if len(dups) == 0 {
		result.Status = SeverityPass
		result.Message = "all labels are unique"
		return result
	}

	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("%d label(s) occur more than once", len(dups))
	result.Details = map[string]any{"labels": dups[:min(len(dups), maxReportedItems)]}
	return result
}
