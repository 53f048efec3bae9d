package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/internal/catalog"
	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/pkg/fileutil"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <index> <output>",
	Short: "Convert an index to JSON or YAML",
	Long: `Write the well-formed entries of an index to a JSON or YAML file.

The output format follows the extension of the output file (.json, .yaml or
.yml). Each entry is written as a record with an "l" label and, when
present, a "u" locator, so the result can be loaded again by every command.
Malformed records of the input are dropped.`,
	Example: `  # Convert the generated JavaScript index to YAML
  docsearch export package-search-index.js index.yaml

See Also: docsearch query`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

// exportRecord is the serialized form of an entry.
type exportRecord struct {
	Label   string `json:"l" yaml:"l"`
	Locator string `json:"u,omitempty" yaml:"u,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	return runExportWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
}

// runExportWithWriter allows injecting a writer for testing.
func runExportWithWriter(ctx context.Context, w io.Writer, index, output string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return errors.NewUserError(errors.Wrapf(errors.ErrUnsupportedFormat, "output %s", output), "Use a .json, .yaml or .yml output file")
	}

	cat, skipped, err := loadCatalog(ctx, index)
	if err != nil {
		return err
	}

	records := exportRecords(cat)
	if ext == ".json" {
		err = fileutil.AtomicWriteJSON(output, records, 0o644)
	} else {
		err = fileutil.AtomicWriteYAML(output, records, 0o644)
	}
	if err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "writing %s", output), "Check that the output directory exists and is writable")
	}

	fmt.Fprintf(w, "Exported %d entries to %s", len(records), output)
	if len(skipped) > 0 {
		fmt.Fprintf(w, " (%d malformed records skipped)", len(skipped))
	}
	fmt.Fprintln(w)
	return nil
}

func exportRecords(cat *catalog.Catalog) []exportRecord {
	entries := cat.All()
	out := make([]exportRecord, len(entries))
	for i, e := range entries {
		out[i] = exportRecord{Label: e.Label}
		if e.HasLocator {
			out[i].Locator = e.Locator
		}
	}
	return out
}
