package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/internal/config"
	"github.com/thoreinstein/docsearch/internal/doctor"
	"github.com/thoreinstein/docsearch/internal/errors"
)

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [index]",
	Short: "Diagnose configuration and index issues",
	Long: `Run diagnostic checks on the docsearch configuration and, when given, an
index file.

Index checks report load failures, malformed records, duplicate labels and
indexes close to the index.max_size limit.

Output modes:
  (default)   Show errors and warnings
  -v          Show all checks including passed ones
  -q          No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the configuration
  docsearch doctor

  # Check the configuration and an index
  docsearch doctor package-search-index.js -v

See Also: docsearch config`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")

func runDoctor(cmd *cobra.Command, args []string) error {
	var index string
	if len(args) > 0 {
		index = args[0]
	}
	return runDoctorWithWriter(cmd.OutOrStdout(), index)
}

// runDoctorWithWriter allows injecting a writer for testing.
func runDoctorWithWriter(w io.Writer, index string) error {
	runner := doctor.NewRunner(doctor.NewConfigCheck(config.Path(), cfg, configLoadErr))
	if index != "" {
		load := doctor.NewIndexCheck(index, cfg.Index.MaxSize)
		runner.AddCheck(doctor.NewIndexSizeCheck(index, cfg.Index.MaxSize))
		runner.AddCheck(load)
		runner.AddCheck(doctor.NewDuplicateLabelCheck(load))
	}

	report := runner.Run()
	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if quiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	return outputDoctorText(w, report)
}

func outputDoctorText(w io.Writer, report *doctor.Report) error {
	showAll := verbosity > 0
	h := newHighlighter(w)

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && (problem || showAll) {
			fmt.Fprintf(w, "  %s %s\n", h.dim.Sprint("hint:"), result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}
