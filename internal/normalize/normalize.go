package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Segment is one non-empty piece of a Form's text.
type Segment struct {
	// Text is the folded segment text.
	Text string

	// Start is the byte offset of the segment within Form.Text.
	Start int
}

// Form is the normalized representation of a string.
type Form struct {
	// Text is the trimmed, case-folded input.
	Text string

	// Segments are the non-empty pieces of Text split on '.' and whitespace.
	Segments []Segment

	// origStart and origEnd give, for every byte of Text, the byte range of
	// the original rune that produced it.
	origStart []int
	origEnd   []int
}

// Empty reports whether the normalized text is empty.
func (f Form) Empty() bool {
	return f.Text == ""
}

// RuneCount returns the number of runes in the normalized text.
func (f Form) RuneCount() int {
	return utf8.RuneCountInString(f.Text)
}

// Original maps the half-open byte range [start, end) of Text to the
// corresponding half-open byte range of the original string. A range that
// starts or ends inside the folded expansion of a single rune widens to
// cover the whole rune.
func (f Form) Original(start, end int) (int, int) {
	if start < 0 || end > len(f.Text) || start >= end {
		return 0, 0
	}
	return f.origStart[start], f.origEnd[end-1]
}

// Normalize folds and segments text. It is pure and deterministic.
func Normalize(text string) Form {
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	trail := len(strings.TrimRightFunc(text, unicode.IsSpace))
	if lead >= trail {
		return Form{}
	}

	folder := cases.Fold()
	var b strings.Builder
	b.Grow(trail - lead)
	starts := make([]int, 0, trail-lead)
	ends := make([]int, 0, trail-lead)

	for i := lead; i < trail; {
		r, size := utf8.DecodeRuneInString(text[i:])
		folded := foldRune(folder, text[i:i+size], r)
		b.WriteString(folded)
		for range len(folded) {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		i += size
	}

	out := b.String()
	return Form{
		Text:      out,
		Segments:  split(out),
		origStart: starts,
		origEnd:   ends,
	}
}

// Fold returns the case-folded form of s without trimming or segmenting.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func foldRune(folder cases.Caser, raw string, r rune) string {
	if r < utf8.RuneSelf {
		if 'A' <= r && r <= 'Z' {
			return string(r + ('a' - 'A'))
		}
		return raw
	}
	if r == utf8.RuneError {
		return raw
	}
	return folder.String(raw)
}

func isDelimiter(r rune) bool {
	return r == '.' || unicode.IsSpace(r)
}

func split(text string) []Segment {
	var segs []Segment
	start := -1
	for i, r := range text {
		if isDelimiter(r) {
			if start >= 0 {
				segs = append(segs, Segment{Text: text[start:i], Start: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		segs = append(segs, Segment{Text: text[start:], Start: start})
	}
	return segs
}
