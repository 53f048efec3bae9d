package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/docsearch/internal/errors"
)

// DefaultMaxSize is the read limit used when a caller passes a limit <= 0.
const DefaultMaxSize int64 = 32 << 20

// ErrFileTooLarge indicates that input exceeded the read limit.
var ErrFileTooLarge = errors.New("input exceeds maximum size")

// ReadFileWithLimit reads the file at path, failing with ErrFileTooLarge when
// it holds more than limit bytes.
func ReadFileWithLimit(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	return ReadAllWithLimit(f, limit)
}

// ReadAllWithLimit reads r to EOF, failing with ErrFileTooLarge once more than
// limit bytes have been produced.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "limit %d", limit)
	}
	return data, nil
}
