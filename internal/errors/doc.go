// Package errors provides error handling conventions for docsearch.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors so the
// rest of the module has one import for constructing, wrapping and inspecting
// errors, defines sentinel errors for common failure conditions, and an
// ExitError type for CLI exit code handling.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrMalformedEntry) {
//	    // a record in the index had no usable label
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (bad index path, invalid flags, configuration)
//   - ExitSystem (2): System-related error (I/O, permissions)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and an optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrUnsupportedFormat, "Use a .js, .json, .yaml or .toml index")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
