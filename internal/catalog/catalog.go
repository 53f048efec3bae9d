package catalog

import (
	"fmt"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/normalize"
)

// Record keys recognized for the label and locator of an entry. The first
// key present wins.
var (
	labelKeys   = []string{"l", "label"}
	locatorKeys = []string{"u", "url", "locator"}
)

// Record is one raw index record as decoded from an index payload.
type Record map[string]any

// Entry is one indexable catalog item.
type Entry struct {
	// Label is the display name exactly as given in the record.
	Label string

	// Locator is the opaque target reference, valid only when HasLocator is set.
	Locator string

	// HasLocator reports whether the entry is navigable.
	HasLocator bool

	// GroupKey is the trimmed label up to its last '.', or empty for labels
	// without a dot.
	GroupKey string

	// Index is the entry's position in the catalog.
	Index int
}

// MalformedEntryError reports a record that was skipped during Load.
type MalformedEntryError struct {
	// Record is the position of the record in the input.
	Record int

	// Reason describes what was wrong with the record.
	Reason string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Record, e.Reason, errors.ErrMalformedEntry)
}

// Unwrap returns ErrMalformedEntry so callers can match with errors.Is.
func (e *MalformedEntryError) Unwrap() error {
	return errors.ErrMalformedEntry
}

// Catalog is an immutable, ordered collection of entries.
type Catalog struct {
	entries []Entry
	trie    *patricia.Trie

	// groups maps a folded group key to the indices of its children.
	groups map[string][]int
	// groupNames maps a folded group key to the first spelling seen.
	groupNames map[string]string
}

// Load builds a Catalog from raw records. Records lacking a usable label
// are skipped, each producing a *MalformedEntryError; the remaining records
// are always loaded.
func Load(records []Record) (*Catalog, []error) {
	c := &Catalog{
		entries:    make([]Entry, 0, len(records)),
		trie:       patricia.NewTrie(),
		groups:     make(map[string][]int),
		groupNames: make(map[string]string),
	}

	var errs []error
	for i, rec := range records {
		label, reason := recordLabel(rec)
		if reason != "" {
			errs = append(errs, &MalformedEntryError{Record: i, Reason: reason})
			continue
		}

		e := Entry{
			Label:    label,
			GroupKey: groupKey(strings.TrimSpace(label)),
			Index:    len(c.entries),
		}
		e.Locator, e.HasLocator = recordLocator(rec)
		c.add(e)
	}

	return c, errs
}

// Strings builds a Catalog of locator-less entries from labels. Blank labels
// are skipped the same way Load skips them.
func Strings(labels ...string) (*Catalog, []error) {
	records := make([]Record, len(labels))
	for i, l := range labels {
		records[i] = Record{"l": l}
	}
	return Load(records)
}

func (c *Catalog) add(e Entry) {
	c.entries = append(c.entries, e)

	key := patricia.Prefix(normalize.Normalize(e.Label).Text)
	if item := c.trie.Get(key); item != nil {
		c.trie.Set(key, append(item.([]int), e.Index))
	} else {
		c.trie.Insert(key, []int{e.Index})
	}

	folded := normalize.Fold(e.GroupKey)
	c.groups[folded] = append(c.groups[folded], e.Index)
	if _, ok := c.groupNames[folded]; !ok {
		c.groupNames[folded] = e.GroupKey
	}
}

// All returns the entries in insertion order. The returned slice is a copy.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Size returns the number of entries.
func (c *Catalog) Size() int {
	return len(c.entries)
}

// Entry returns the entry at index i.
func (c *Catalog) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, false
	}
	return c.entries[i], true
}

func recordLabel(rec Record) (string, string) {
	if rec == nil {
		return "", "not an object"
	}
	for _, key := range labelKeys {
		v, ok := rec[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Sprintf("label %q is %T, not a string", key, v)
		}
		if strings.TrimSpace(s) == "" {
			return "", "empty label"
		}
		return s, ""
	}
	return "", "missing label"
}

func recordLocator(rec Record) (string, bool) {
	for _, key := range locatorKeys {
		if s, ok := rec[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func groupKey(label string) string {
	i := strings.LastIndexByte(label, '.')
	if i < 0 {
		return ""
	}
	return label[:i]
}
