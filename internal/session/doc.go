// Package session evaluates queries against a catalog and holds the live
// query state of one consumer.
//
// An Engine owns a loaded Catalog and the normalized form of every label.
// Engines are read-only after construction and may be shared by any number
// of Sessions. Evaluate runs the normalize, match and rank pipeline; large
// catalogs are scanned in parallel with identical results.
//
// A Session holds the current raw query and the last published results.
// Every SetQuery, SetQueryAsync or Reset call supersedes the ones before it:
// only the newest call may publish, so a slow evaluation can never
// overwrite the results of a later one.
package session
