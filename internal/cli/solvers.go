package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tverberg/ikconform/internal/solver"
)

// SolversResult lists the registered solver plugins.
type SolversResult struct {
	Solvers []string `json:"solvers"`
}

// NewSolversCommand creates the solvers command.
func NewSolversCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "solvers",
		Short:         "List registered solver plugins",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolvers(rootOpts, cmd)
		},
	}

	return cmd
}

func runSolvers(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	names := solver.Names()

	if formatter.Format == "json" {
		return formatter.Success(SolversResult{Solvers: names})
	}

	if len(names) == 0 {
		fmt.Fprintln(formatter.Writer, "(no solver plugins registered)")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(formatter.Writer, name)
	}
	return nil
}
