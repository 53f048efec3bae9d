package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ColorMode controls whether ANSI colors are emitted.
type ColorMode string

const (
	// ColorAuto enables color only for terminals that support it.
	ColorAuto ColorMode = "auto"
	// ColorAlways forces color output.
	ColorAlways ColorMode = "always"
	// ColorNever disables color output.
	ColorNever ColorMode = "never"
)

// IsTTY returns true if the given writer is a terminal.
// It supports os.File and any wrapper that provides an Fd() method.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor returns true if the given writer supports ANSI color codes
// under ColorAuto rules.
func SupportsColor(w io.Writer) bool {
	return UseColor(w, ColorAuto)
}

// UseColor resolves mode against the writer and environment.
// NO_COLOR (https://no-color.org) and TERM=dumb disable auto color;
// ColorAlways and ColorNever ignore the environment.
func UseColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return supportsColor(IsTTY(w))
	}
}

func supportsColor(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
