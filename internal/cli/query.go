package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillon/hornbeam/internal/bridge"
	"github.com/quillon/hornbeam/internal/engine"
	"github.com/quillon/hornbeam/internal/project"
	"github.com/quillon/hornbeam/internal/session"
)

// QueryResult is the JSON payload of one query run.
type QueryResult struct {
	Query     string              `json:"query"`
	Solutions []map[string]string `json:"solutions"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		rulesPath string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "query <goal> [project-dir]",
		Short: "Run an ad-hoc query against a project",
		Long: `Run an ad-hoc query against a workspace project.

The goal runs with the full set of domain predicates bound to the
project. Each solution prints its variable bindings; a query with no
solutions exits non-zero.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			return runQuery(rootOpts, args[0], dir, rulesPath, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "also load a rule script before querying")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many solutions (0 = all)")

	return cmd
}

func runQuery(opts *RootOptions, goal, dir, rulesPath string, limit int, cmd *cobra.Command) error {
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

	reg := engine.NewRegistry()
	if err := bridge.Register(reg); err != nil {
		return err
	}
	if rulesPath != "" {
		rules, err := loadRules(rulesPath)
		if err != nil {
			_ = formatter.Error(ErrCodeRulesLoad, err.Error())
			return WrapExitError(ExitCommandError, "cannot load rules", err)
		}
		if err := reg.AssertProgram(rules); err != nil {
			_ = formatter.Error(ErrCodeRulesLoad, err.Error())
			return WrapExitError(ExitCommandError, "cannot load rules", err)
		}
	}

	sess := session.New(snap)
	defer sess.Close()

	// A missing terminator is the most common interactive slip.
	if !strings.HasSuffix(strings.TrimSpace(goal), ".") {
		goal += "."
	}

	solver, err := engine.Query(reg, sess, goal)
	if err != nil {
		_ = formatter.Error(ErrCodeResolution, err.Error())
		return WrapExitError(ExitCommandError, "cannot parse query", err)
	}

	var solutions []map[string]string
	for limit <= 0 || len(solutions) < limit {
		sol, err := solver.Next()
		if err != nil {
			_ = formatter.Error(ErrCodeResolution, err.Error())
			return WrapExitError(ExitCommandError, "query failed", err)
		}
		if sol == nil {
			break
		}
		solutions = append(solutions, sol.Strings())
	}
	formatter.VerboseLog("%d solution(s)", len(solutions))

	return writeSolutions(formatter, goal, solutions)
}

func writeSolutions(formatter *OutputFormatter, goal string, solutions []map[string]string) error {
	if formatter.Format == "json" {
		result := QueryResult{Query: goal, Solutions: solutions}
		if result.Solutions == nil {
			result.Solutions = []map[string]string{}
		}
		status := "ok"
		if len(solutions) == 0 {
			status = "error"
		}
		resp := CLIResponse{Status: status, Data: result}
		if len(solutions) == 0 {
			resp.Error = &CLIError{Code: "NO_SOLUTIONS", Message: "query has no solutions"}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else {
		if len(solutions) == 0 {
			fmt.Fprintln(formatter.Writer, "false.")
		}
		for _, sol := range solutions {
			fmt.Fprintln(formatter.Writer, formatSolution(sol))
		}
	}

	if len(solutions) == 0 {
		return NewExitError(ExitFailure, "query has no solutions")
	}
	return nil
}

// formatSolution renders one solution's bindings. A query without
// variables succeeds as a plain "true.".
func formatSolution(sol map[string]string) string {
	if len(sol) == 0 {
		return "true."
	}
	names := make([]string, 0, len(sol))
	for name := range sol {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s = %s", name, sol[name])
	}
	return strings.Join(parts, ", ") + "."
}
