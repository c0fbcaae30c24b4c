package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tverberg/ikconform/internal/report"
	"github.com/tverberg/ikconform/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show this run in full
	Limit    int
}

// HistoryResult holds the run listing.
type HistoryResult struct {
	Runs []store.RunSummary `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conformance runs",
		Long: `List runs recorded in a result database, newest first.

With --run, prints the stored report for that run in full, in the same
layout the run command uses.

Examples:
  ikconform history --db ./runs.db
  ikconform history --db ./runs.db --limit 5
  ikconform history --db ./runs.db --run 0197a2b4-5de0-7c3a-9f41-8c2d6e01ab42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite result database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show this run in full")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Opening a missing path would create an empty database; stat first so
	// a typo reads as an error instead of an empty history.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("result database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("result database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		return showRun(ctx, formatter, st, opts.RunID)
	}
	return listRuns(ctx, formatter, st, opts.Limit)
}

// showRun prints one stored run in full.
func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, runID string) error {
	rep, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeRunNotFound, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "ok",
			Data:   rep,
			RunID:  rep.RunID,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	return report.WriteText(formatter.Writer, rep)
}

// listRuns prints the run summaries, newest first.
func listRuns(ctx context.Context, formatter *OutputFormatter, st *store.Store, limit int) error {
	runs, err := st.ReadRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs})
	}

	fmt.Fprintf(formatter.Writer, "%d run(s)\n", len(runs))
	if len(runs) == 0 {
		return nil
	}
	fmt.Fprintln(formatter.Writer)

	for _, r := range runs {
		mark := "✓"
		if !r.Accepted {
			mark = "✗"
		}
		fmt.Fprintf(formatter.Writer, "  %s %s  %s on %s  %d scenario(s)  %s\n",
			mark, r.RunID, r.Solver, r.Robot, r.Scenarios, r.StartedAt.Format(time.RFC3339))
	}
	return nil
}
