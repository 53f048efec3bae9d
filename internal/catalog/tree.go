package catalog

import (
	"slices"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/thoreinstein/docsearch/internal/normalize"
)

// Lookup returns the entries whose label equals label, ignoring case and
// surrounding whitespace.
func (c *Catalog) Lookup(label string) []Entry {
	key := normalize.Normalize(label).Text
	if key == "" {
		return nil
	}
	item := c.trie.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	return c.collect(slices.Clone(item.([]int)))
}

// Children returns the entries whose GroupKey equals group, compared
// case-insensitively, in insertion order. An empty group returns the
// top-level entries.
func (c *Catalog) Children(group string) []Entry {
	return c.collect(slices.Clone(c.groups[normalize.Fold(strings.TrimSpace(group))]))
}

// Descendants returns the entries whose label equals prefix or lies beneath
// it in the dotted hierarchy, in insertion order.
func (c *Catalog) Descendants(prefix string) []Entry {
	p := normalize.Normalize(prefix).Text
	if p == "" {
		return nil
	}

	var indices []int
	_ = c.trie.VisitSubtree(patricia.Prefix(p), func(key patricia.Prefix, item patricia.Item) error {
		k := string(key)
		if k == p || strings.HasPrefix(k, p+".") {
			indices = append(indices, item.([]int)...)
		}
		return nil
	})
	slices.Sort(indices)
	return c.collect(indices)
}

// Groups returns the distinct non-empty group keys sorted case-insensitively.
// Each group is reported with the spelling of its first entry.
func (c *Catalog) Groups() []string {
	folded := make([]string, 0, len(c.groupNames))
	for k := range c.groupNames {
		if k != "" {
			folded = append(folded, k)
		}
	}
	slices.Sort(folded)

	out := make([]string, len(folded))
	for i, k := range folded {
		out[i] = c.groupNames[k]
	}
	return out
}

func (c *Catalog) collect(indices []int) []Entry {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Entry, len(indices))
	for i, idx := range indices {
		out[i] = c.entries[idx]
	}
	return out
}
