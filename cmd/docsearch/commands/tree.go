package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/internal/catalog"
)

var treeAll bool

func init() {
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "list every descendant, not only direct children")
	rootCmd.AddCommand(treeCmd)
}

var treeCmd = &cobra.Command{
	Use:   "tree <index> [group]",
	Short: "Show the package hierarchy",
	Long: `Show the dotted hierarchy of an index.

Without a group, lists every group (the label up to its last dot) with the
number of entries directly inside it. With a group, lists the entries
directly inside that group, or with --all every entry below it.`,
	Example: `  # List groups
  docsearch tree package-search-index.js

  # Direct children of mgui.interfaces
  docsearch tree package-search-index.js mgui.interfaces

  # Everything below mgui.io
  docsearch tree package-search-index.js mgui.io --all

See Also: docsearch query`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	var group string
	if len(args) > 1 {
		group = args[1]
	}
	return runTreeWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0], group)
}

// runTreeWithWriter allows injecting a writer for testing.
func runTreeWithWriter(ctx context.Context, w io.Writer, index, group string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cat, _, err := loadCatalog(ctx, index)
	if err != nil {
		return err
	}

	if group == "" && !treeAll {
		return outputGroups(w, cat)
	}

	var entries []catalog.Entry
	if treeAll {
		entries = cat.Descendants(group)
		if group == "" {
			entries = cat.All()
		}
	} else {
		entries = cat.Children(group)
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No entries under %q.\n", group)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.Label)
	}
	return nil
}

func outputGroups(w io.Writer, cat *catalog.Catalog) error {
	groups := cat.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(w, "No groups found.")
		return nil
	}

	h := newHighlighter(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", h.bold.Sprint("GROUP"), h.bold.Sprint("ENTRIES"))
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\n", g, len(cat.Children(g)))
	}
	return tw.Flush()
}
