// Package logging provides structured logging for docsearch using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package; the text format goes through [Handler], which
// colorizes output when the destination is a terminal.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("catalog loaded", "entries", cat.Size())
//
// # Context
//
// Commands attach their logger to the command context with [NewContext];
// library code retrieves it with [FromContext], which falls back to
// [slog.Default].
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
