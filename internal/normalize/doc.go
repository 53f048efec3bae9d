// Package normalize turns labels and queries into comparable forms.
//
// A Form holds the case-folded, trimmed text of its input together with
// the dot and whitespace delimited segments of that text. Every byte of the
// folded text maps back to the rune of the original string it came from, so
// a span matched against the folded text can be reported in original
// offsets for highlighting.
//
// Folding is simple Unicode case folding applied rune by rune through
// golang.org/x/text/cases. It does not depend on the process locale.
package normalize
