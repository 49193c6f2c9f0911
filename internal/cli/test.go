package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/oneof/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // glob over scenario file names
}

// ScenarioOutcome is the verdict on one scenario file.
type ScenarioOutcome struct {
	Scenario      string   `json:"scenario"`
	Union         string   `json:"union,omitempty"`
	Pass          bool     `json:"pass"`
	GoldenUpdated bool     `json:"golden_updated,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

func (s ScenarioOutcome) fail(errs ...string) ScenarioOutcome {
	s.Pass = false
	s.Errors = errs
	return s
}

// TestReport summarizes a run of the test command.
type TestReport struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run codec conformance scenarios",
		Long: `Run conformance scenarios against the envelope codec.

Each scenario file names a union from the catalog and a list of
roundtrip, bson and decode steps. The step trace is compared against
golden/<name>.golden next to the scenario when that file exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  oneof test ./scenarios
  oneof test ./scenarios --filter "classes_*"
  oneof test ./scenarios --update
  oneof test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to find scenarios: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	report := TestReport{Scenarios: make([]ScenarioOutcome, 0, len(files)), Total: len(files)}
	for _, file := range files {
		outcome := opts.runScenario(file)
		report.Scenarios = append(report.Scenarios, outcome)
		if outcome.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
		if opts.Format != "json" {
			printOutcome(w, outcome)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, report)
	}
	return outputTestText(cmd, report)
}

// findScenarioFiles lists the .yaml and .yml files under dir whose base
// name matches filter, skipping golden directories.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario loads and runs one scenario file. A golden file, when
// present, must match the trace byte for byte; with --update it is
// rewritten instead and expectations are not judged.
func (o *TestOptions) runScenario(file string) ScenarioOutcome {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioOutcome{Scenario: filepath.Base(file)}.fail(fmt.Sprintf("load error: %v", err))
	}
	out := ScenarioOutcome{Scenario: scenario.Name, Union: scenario.Union}

	result, err := harness.RunWithCatalog(scenario, o.catalog(), o.registry())
	if err != nil {
		return out.fail(fmt.Sprintf("execution error: %v", err))
	}
	snapshot, err := harness.Snapshot(scenario, result)
	if err != nil {
		return out.fail(fmt.Sprintf("snapshot error: %v", err))
	}

	goldenPath := goldenFilePath(file)
	if o.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return out.fail(fmt.Sprintf("golden update error: %v", err))
		}
		out.Pass, out.GoldenUpdated = true, true
		return out
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return out.fail(fmt.Sprintf("golden read error: %v", err))
	case !bytes.Equal(want, snapshot):
		return out.fail("trace does not match golden file")
	}

	if !result.Pass {
		return out.fail(result.Errors...)
	}
	out.Pass = true
	return out
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGolden(path string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, snapshot, 0644)
}

func printOutcome(w io.Writer, o ScenarioOutcome) {
	switch {
	case o.GoldenUpdated:
		fmt.Fprintf(w, "✓ %s (golden updated)\n", o.Scenario)
	case o.Pass:
		fmt.Fprintf(w, "✓ %s\n", o.Scenario)
	default:
		fmt.Fprintf(w, "✗ %s\n", o.Scenario)
		for _, e := range o.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

func outputTestJSON(cmd *cobra.Command, report TestReport) error {
	response := CLIResponse{Status: "ok", Data: report}
	if report.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", report.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	if report.Failed > 0 {
		return NewExitError(ExitFailure, response.Error.Message)
	}
	return nil
}

func outputTestText(cmd *cobra.Command, report TestReport) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
