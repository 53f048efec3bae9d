// Package catalog holds the immutable set of entries a search runs against.
//
// A Catalog is built once from raw index records and never changes
// afterwards, so it can be shared by any number of concurrent readers
// without locking. Records without a usable label are reported as
// *MalformedEntryError values and skipped; they never abort a load.
//
// Index payloads are read by ReadIndex and LoadFile. The generated
// JavaScript index of documentation tools is supported directly:
//
//	packageSearchIndex = [{"l":"mgui.util","u":"mgui/util/package-summary.html"}];updateSearchResults();
//
// as are JSON, YAML and TOML renditions of the same records, optionally
// gzip or zstd compressed.
//
// Dotted labels are indexed in a patricia trie so callers can walk the
// hierarchy with Children, Descendants and Groups. The hierarchy is a
// browsing aid only; matching treats every label as an opaque string.
package catalog
