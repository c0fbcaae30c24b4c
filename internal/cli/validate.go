package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds suite validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.yaml>",
		Short: "Validate a suite file without running it",
		Long: `Validate a conformance suite file and its robot description.

Checks the suite against its schema, parses the scenario list, and
compiles the robot description it points at. No solver is constructed
and no trials run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, suitePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, variants, loadErr := LoadSuiteConfig(suitePath)
	if loadErr != nil {
		// A missing path is a command error; an invalid file is the
		// verdict this command exists to deliver.
		if loadErr.Code == ErrCodeNotFound {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return outputValidationErrors(formatter, []string{loadErr.Message})
	}

	formatter.VerboseLog("Suite %s: robot %s, solver %s, %d scenario(s)",
		cfg.Meta.Name, cfg.Robot.Description, cfg.Solver.Plugin, len(variants))

	if _, loadErr := CompileRobot(cfg); loadErr != nil {
		return outputValidationErrors(formatter, []string{loadErr.Message})
	}

	return outputValidateSuccess(formatter)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true}
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Suite valid")
	return nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []string) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeSuiteInvalid,
				Message: errs[0],
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Suite invalid")
	fmt.Fprintln(formatter.Writer)

	for _, msg := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
