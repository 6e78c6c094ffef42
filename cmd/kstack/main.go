package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kstack/cmd/kstack/commands"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		// A child spawned by `kstack exec` already wrote its own output;
		// mirror its exit code without adding noise.
		var cmdErr kerrors.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
			os.Exit(cmdErr.ExitCode)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		noColor bool
		debug   bool
	)

	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:   "kstack",
		Short: "Stack-aware configuration and secrets for layered deployments",
		Long: `kstack detects which environment each stack layer is deployed to and
resolves the secrets that layer may see: from a workstation secrets
vault locally, or from Kubernetes Secrets in-cluster.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			opts.Logger = logging.New(debug, noColor)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Add commands
	rootCmd.AddCommand(
		commands.NewEnvCommand(opts),
		commands.NewLayersCommand(opts),
		commands.NewSecretsCommand(opts),
		commands.NewExecCommand(opts),
		commands.NewDoctorCommand(opts),
		commands.NewCompletionCommand(opts),
	)

	return rootCmd.Execute()
}
