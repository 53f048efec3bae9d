package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/session"
)

func init() {
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse <index> [query]",
	Short: "Pick an entry interactively",
	Long: `Open an interactive picker over the entries of an index and print the
selected entry.

With a query, the picker starts from the ranked matches for that query;
without one it lists every entry in index order.`,
	Example: `  # Browse every entry
  docsearch browse package-search-index.js

  # Browse the matches for "graphs"
  docsearch browse package-search-index.js graphs

See Also: docsearch query`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBrowse,
}

// finder picks one of n candidates; it is replaced in tests.
var finder = func(candidates []candidate) (int, error) {
	return fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i].entry.Label
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return candidates[i].preview()
		}),
	)
}

// candidate is one entry offered by the picker.
type candidate struct {
	entry catalog.Entry
	class string
}

func (c candidate) preview() string {
	locator := "(none)"
	if c.entry.HasLocator {
		locator = c.entry.Locator
	}
	group := c.entry.GroupKey
	if group == "" {
		group = "(top level)"
	}
	s := fmt.Sprintf("Label:   %s\nLocator: %s\nGroup:   %s", c.entry.Label, locator, group)
	if c.class != "" {
		s += "\nMatch:   " + c.class
	}
	return s
}

func runBrowse(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) > 1 {
		query = args[1]
	}
	return runBrowseWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0], query)
}

// runBrowseWithWriter allows injecting a writer for testing.
func runBrowseWithWriter(ctx context.Context, w io.Writer, index, query string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := loadEngine(ctx, index)
	if err != nil {
		return err
	}

	candidates, err := browseCandidates(ctx, engine, query)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	idx, err := finder(candidates)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive browse failed")
	}

	e := candidates[idx].entry
	fmt.Fprintln(w, e.Label)
	if e.HasLocator {
		fmt.Fprintln(w, e.Locator)
	}
	return nil
}

// browseCandidates returns the ranked matches for query, or every entry
// when the query is empty.
func browseCandidates(ctx context.Context, engine *session.Engine, query string) ([]candidate, error) {
	sess := session.New(engine, session.WithLimit(cfg.Search.Limit))
	res, err := sess.SetQueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating query")
	}

	if sess.State() == session.Idle {
		entries := engine.Catalog().All()
		out := make([]candidate, len(entries))
		for i, e := range entries {
			out[i] = candidate{entry: e}
		}
		return out, nil
	}

	out := make([]candidate, len(res.Matches))
	for i, m := range res.Matches {
		out[i] = fromMatch(m)
	}
	return out, nil
}

func fromMatch(m match.Match) candidate {
	return candidate{entry: m.Entry, class: m.Class.String()}
}
