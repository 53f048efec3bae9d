// Package match decides whether and how a query matches a catalog entry.
//
// Policies are tried in priority order and the first one satisfied
// determines the match Class:
//
//  1. Exact: the normalized label equals the normalized query.
//  2. Prefix: the normalized label starts with the query.
//  3. SegmentPrefix: some dot or whitespace delimited segment of the label
//     starts with the query.
//  4. Substring: the label contains the query.
//  5. Subsequence: every rune of the query occurs in the label in order.
//     Only tried for queries of at least MinSubsequenceLength runes.
//
// An empty normalized query matches nothing. Spans are reported as half-open
// byte ranges of the original, unnormalized label.
package match
