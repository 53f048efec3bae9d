package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/match"
	"github.com/thoreinstein/docsearch/internal/session"
)

var (
	queryLimit int
	queryJSON  bool
)

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of results, 0 for unlimited (default: search.limit)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <index> [query]",
	Short: "Search an index",
	Long: `Search the labels of an index and print the ranked matches.

Results are ordered by match quality: exact matches, then prefix matches,
then matches at the start of a dotted segment, then substring matches, then
fuzzy matches whose characters appear in order. Within a class, shorter
labels rank first.

An empty query prints no results.`,
	Example: `  # Find every "util" package
  docsearch query package-search-index.js util

  # Fuzzy match, top 5, as JSON
  docsearch query package-search-index.js mguiiu -n 5 --json

See Also: docsearch browse`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

// jsonResult is the --json rendition of a match.
type jsonResult struct {
	Label   string       `json:"label"`
	Locator string       `json:"locator,omitempty"`
	Class   string       `json:"class"`
	Spans   []match.Span `json:"spans"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	limit := cfg.Search.Limit
	if cmd.Flags().Changed("limit") {
		limit = queryLimit
	}
	if limit < 0 {
		return errors.NewUserError(errors.Newf("invalid limit %d", limit), "Use --limit 0 for unlimited results")
	}

	var query string
	if len(args) > 1 {
		query = args[1]
	}
	return runQueryWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0], query, limit)
}

// runQueryWithWriter allows injecting a writer for testing.
func runQueryWithWriter(ctx context.Context, w io.Writer, index, query string, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := loadEngine(ctx, index)
	if err != nil {
		return err
	}

	sess := session.New(engine, session.WithLimit(limit))
	res, err := sess.SetQueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, "evaluating query")
	}

	if queryJSON {
		return outputQueryJSON(w, res.Matches)
	}
	return outputQueryTabular(w, res)
}

func outputQueryJSON(w io.Writer, matches []match.Match) error {
	out := make([]jsonResult, len(matches))
	for i, m := range matches {
		out[i] = jsonResult{
			Label:   m.Entry.Label,
			Locator: m.Entry.Locator,
			Class:   m.Class.String(),
			Spans:   m.Spans,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputQueryTabular(w io.Writer, res session.Results) error {
	if len(res.Matches) == 0 {
		fmt.Fprintln(w, "No matches.")
		return nil
	}

	h := newHighlighter(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", h.bold.Sprint("CLASS"), h.bold.Sprint("LOCATOR"), h.bold.Sprint("LABEL"))

	for _, m := range res.Matches {
		locator := h.dim.Sprint("-")
		if m.Entry.HasLocator {
			locator = m.Entry.Locator
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Class, locator, h.label(m.Entry.Label, m.Spans))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if res.Total > len(res.Matches) {
		fmt.Fprintf(w, "\nShowing %d of %d matches.\n", len(res.Matches), res.Total)
	}
	return nil
}
