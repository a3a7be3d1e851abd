package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillon/hornbeam/internal/constraints"
	"github.com/quillon/hornbeam/internal/parser"
	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/term"
)

// Error codes reported in CLI error envelopes.
const (
	ErrCodeProjectLoad = "PROJECT_LOAD_ERROR"
	ErrCodeRulesLoad   = "RULES_LOAD_ERROR"
	ErrCodeResolution  = "RESOLUTION_ERROR"
)

// DefaultRulesFile is the rule script read when --rules is not given,
// relative to the project directory.
const DefaultRulesFile = "constraints.pl"

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "check [project-dir]",
		Short: "Check a project against its constraint rules",
		Long: `Check a workspace project against its constraint rules.

Loads the project manifests, runs the rule script's enforcement
generators, and reports every violation. Exits non-zero when the
project does not satisfy its constraints.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheck(rootOpts, dir, rulesPath, cmd)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "rule script path (default <project-dir>/"+DefaultRulesFile+")")

	return cmd
}

func runCheck(opts *RootOptions, dir, rulesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	snap, err := project.Load(dir)
	if err != nil {
		_ = formatter.Error(ErrCodeProjectLoad, err.Error())
		return WrapExitError(ExitCommandError, "cannot load project", err)
	}
	formatter.VerboseLog("loaded %d workspace(s) from %s", len(snap.Workspaces()), dir)

	if rulesPath == "" {
		rulesPath = filepath.Join(dir, DefaultRulesFile)
	}
	rules, err := loadRules(rulesPath)
	if err != nil {
		_ = formatter.Error(ErrCodeRulesLoad, err.Error())
		return WrapExitError(ExitCommandError, "cannot load rules", err)
	}
	slog.Debug("rules loaded", "path", rulesPath, "clauses", len(rules))

	checker, err := constraints.New(snap, rules)
	if err != nil {
		_ = formatter.Error(ErrCodeRulesLoad, err.Error())
		return WrapExitError(ExitCommandError, "cannot load rules", err)
	}
	defer checker.Close()

	report, err := checker.Check()
	if err != nil {
		_ = formatter.Error(ErrCodeResolution, err.Error())
		return WrapExitError(ExitCommandError, "constraint resolution failed", err)
	}

	return writeReport(formatter, report)
}

func loadRules(path string) ([]term.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rules, err := parser.ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// writeReport renders a constraint report and converts violations into
// the exit status.
func writeReport(formatter *OutputFormatter, report *constraints.Report) error {
	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: report}
		if !report.OK() {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    "CONSTRAINT_VIOLATIONS",
				Message: fmt.Sprintf("%d constraint violation(s)", len(report.Diagnostics)),
			}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		if report.OK() {
			fmt.Fprintln(formatter.Writer, "✓ no constraint violations")
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %d constraint violation(s)\n\n", len(report.Diagnostics))
			for _, d := range report.Diagnostics {
				fmt.Fprintf(formatter.Writer, "  %s\n", d)
			}
		}
	}

	if !report.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d constraint violation(s)", len(report.Diagnostics)))
	}
	return nil
}
