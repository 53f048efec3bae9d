// Package fileutil provides bounded reads and atomic writes.
//
// Index payloads are read through [ReadFileWithLimit] and [ReadAllWithLimit]
// so that a truncated or hostile index (including a compressed one that
// expands without bound) cannot exhaust memory. Files docsearch writes, the
// default config and exported catalogs, go through [AtomicWriteFile] so an
// interrupted write never leaves a half-written file behind.
package fileutil
