// Package paths resolves the locations docsearch reads its configuration from.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// compliance (~/.config on Linux, ~/Library/Application Support on macOS,
// %LOCALAPPDATA% on Windows). DOCSEARCH_CONFIG_DIR overrides the config
// directory entirely, which tests use to isolate themselves from the user's
// real configuration.
package paths
