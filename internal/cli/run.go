package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tverberg/ikconform/internal/conformance"
	"github.com/tverberg/ikconform/internal/report"
	"github.com/tverberg/ikconform/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	LogDB  string // sqlite database to append the report to
	Output string // file to write the bare report JSON to
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <suite.yaml>",
		Short: "Run a conformance suite against its solver plugin",
		Long: `Run every scenario in a conformance suite and report the verdict.

The suite file names the robot description, the solver plugin, the
metadata the solver must report, and the scenarios to run. The solver is
accepted when every scenario clears its success threshold with no
inconsistencies.

Exit codes:
  0 - solver accepted
  1 - solver rejected, or the run aborted on a metadata mismatch
  2 - setup error (bad suite file, unknown plugin, database error)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogDB, "log-db", "", "append the report to this sqlite database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the report as JSON to this file")

	return cmd
}

func runSuite(rootOpts *RootOptions, opts *RunOptions, suitePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   rootOpts.Verbose,
	}

	bundle, loadErr := LoadSuite(suitePath)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}

	formatter.VerboseLog("Loaded suite %q: robot %s, solver %s, %d scenario(s)",
		bundle.Config.Meta.Name, bundle.Model.Name, bundle.Config.Solver.Plugin, len(bundle.Variants))

	suite := &conformance.Suite{
		SolverName:     bundle.Config.Solver.Plugin,
		Solver:         bundle.Solver,
		Model:          bundle.Model,
		Group:          bundle.Config.Robot.Group,
		Expected:       bundle.Config.Expected,
		Scenarios:      bundle.Variants,
		Trials:         bundle.Config.Trials.Count,
		Timeout:        time.Duration(bundle.Config.Trials.Timeout),
		Tolerance:      bundle.Config.Trials.Tolerance,
		MinSuccessRate: bundle.Config.Trials.MinSuccessRate,
		Seed:           bundle.Config.Meta.Seed,
		Logger:         slog.Default(),
	}

	if opts.LogDB != "" {
		st, err := store.Open(opts.LogDB)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		defer st.Close()
		suite.Recorder = st
	}

	rep, err := suite.Run(cmd.Context())
	if err != nil {
		if rep == nil {
			// The solver misreported its metadata or joint ordering;
			// there is no verdict to print.
			_ = formatter.Error(ErrCodeRunAborted, err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		// The run finished but persisting the report failed.
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if opts.Output != "" {
		if err := writeReportFile(rep, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing report file: %v", err), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	if formatter.Format == "json" {
		return outputRunJSON(formatter, rep)
	}
	return outputRunText(formatter, rep, opts.Output)
}

// writeReportFile writes the bare report document to path.
func writeReportFile(rep *conformance.Report, path string) error {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, rep); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// outputRunJSON outputs the finished report as JSON.
func outputRunJSON(formatter *OutputFormatter, rep *conformance.Report) error {
	response := CLIResponse{
		Status: "ok",
		Data:   rep,
		RunID:  rep.RunID,
	}
	if !rep.Accepted {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_REJECTED",
			Message: rejectionMessage(rep),
		}
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !rep.Accepted {
		// Rejection = exit code 1
		return NewExitError(ExitFailure, rejectionMessage(rep))
	}
	return nil
}

// outputRunText outputs the finished report as text.
func outputRunText(formatter *OutputFormatter, rep *conformance.Report, outputFile string) error {
	if err := report.WriteText(formatter.Writer, rep); err != nil {
		return err
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote report to %s\n", outputFile)
	}

	if !rep.Accepted {
		// Rejection = exit code 1
		return NewExitError(ExitFailure, rejectionMessage(rep))
	}
	return nil
}

// rejectionMessage summarizes how many scenarios failed the run.
func rejectionMessage(rep *conformance.Report) string {
	rejected := 0
	for _, sr := range rep.Scenarios {
		if !sr.Accepted {
			rejected++
		}
	}
	return fmt.Sprintf("%d scenario(s) rejected", rejected)
}
