package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/pkg/fileutil"
)

// Format identifies the encoding of an index payload.
type Format string

// Supported index formats.
const (
	FormatJS   Format = "js"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Compression identifies the compression wrapping an index payload.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// document is the object form of an index payload.
type document struct {
	Entries []any `json:"entries" yaml:"entries" toml:"entries"`
}

// toRecords converts decoded array items to records. Items that are not
// objects become nil records, which Load reports as malformed.
func toRecords(items []any) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			records[i] = Record(m)
		}
	}
	return records
}

// DetectFormat determines the format and compression of the index at path
// from its extensions, e.g. "index.json.zst".
func DetectFormat(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	comp := CompressionNone
	switch {
	case strings.HasSuffix(name, ".gz"):
		comp = CompressionGzip
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		comp = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	}

	switch ext := filepath.Ext(name); ext {
	case ".js":
		return FormatJS, comp, nil
	case ".json":
		return FormatJSON, comp, nil
	case ".yaml", ".yml":
		return FormatYAML, comp, nil
	case ".toml":
		return FormatTOML, comp, nil
	default:
		return "", comp, errors.Wrapf(errors.ErrUnsupportedFormat, "extension %q", ext)
	}
}

// ReadIndex decodes the records of an uncompressed index payload. Input
// larger than fileutil.DefaultMaxSize is rejected.
func ReadIndex(r io.Reader, format Format) ([]Record, error) {
	data, err := fileutil.ReadAllWithLimit(r, fileutil.DefaultMaxSize)
	if err != nil {
		return nil, err
	}
	return decode(data, format)
}

// LoadOption configures LoadFile.
type LoadOption func(*loadOptions)

type loadOptions struct {
	maxSize int64
	logger  *slog.Logger
}

// WithMaxSize caps the number of (decompressed) bytes read from an index.
func WithMaxSize(n int64) LoadOption {
	return func(o *loadOptions) {
		o.maxSize = n
	}
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(l *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = l
	}
}

// LoadFile reads, decodes and loads the index at path. The returned error is
// set for structural failures only; skipped records are reported in the
// slice of per-record errors.
func LoadFile(path string, opts ...LoadOption) (*Catalog, []error, error) {
	o := loadOptions{maxSize: fileutil.DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}

	format, comp, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := readPayload(path, comp, o.maxSize)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading index %s", path)
	}

	records, err := decode(data, format)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decoding index %s", path)
	}

	cat, errs := Load(records)
	if o.logger != nil {
		for _, e := range errs {
			o.logger.Warn("skipping index record", "path", path, "error", e)
		}
		o.logger.Debug("loaded index", "path", path, "format", format, "entries", cat.Size(), "skipped", len(errs))
	}
	return cat, errs, nil
}

func readPayload(path string, comp Compression, limit int64) ([]byte, error) {
	if comp == CompressionNone {
		return fileutil.ReadFileWithLimit(path, limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip stream")
		}
		defer zr.Close()
		return fileutil.ReadAllWithLimit(zr, limit)
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "opening zstd stream")
		}
		defer zr.Close()
		return fileutil.ReadAllWithLimit(zr, limit)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "compression %q", comp)
	}
}

func decode(data []byte, format Format) ([]Record, error) {
	switch format {
	case FormatJS:
		return decodeJS(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing TOML")
		}
		return toRecords(doc.Entries), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "format %q", format)
	}
}

// decodeJS extracts the array literal assigned in a generated search index,
// ignoring whatever statements follow it.
func decodeJS(data []byte) ([]Record, error) {
	eq := bytes.IndexByte(data, '=')
	if eq < 0 {
		return nil, errors.New("parsing JS index: no assignment found")
	}
	start := bytes.IndexByte(data[eq:], '[')
	if start < 0 {
		return nil, errors.New("parsing JS index: no array literal after assignment")
	}

	var items []any
	dec := json.NewDecoder(bytes.NewReader(data[eq+start:]))
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "parsing JS index")
	}
	return toRecords(items), nil
}

func decodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing JSON")
		}
		return toRecords(doc.Entries), nil
	}

	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}
	return toRecords(items), nil
}

func decodeYAML(data []byte) ([]Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "parsing YAML")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "parsing YAML")
		}
		return toRecords(doc.Entries), nil
	}

	var items []any
	if err := root.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "parsing YAML")
	}
	return toRecords(items), nil
}
