package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/internal/execenv"
	"github.com/systmms/kstack/internal/secure"
	"github.com/systmms/kstack/pkg/secrets"
)

// NewExecCommand creates the exec command.
func NewExecCommand(opts *Options) *cobra.Command {
	var (
		layerArg  string
		override  bool
		printVars bool
		cwd       string
		timeout   int
	)

	cmd := &cobra.Command{
		Use:   "exec --layer <layer> -- <command> [args...]",
		Short: "Run a command with a layer's secrets in its environment",
		Long: `Run a command with the given layer's resolved secrets injected as
environment variables. Secrets are held in protected memory until the
child spawns and are never written to disk.

Variables already set in the calling environment keep precedence unless
--override is given. The child's exit code becomes kstack's exit code.

The command must be separated from kstack arguments with '--'.

Examples:
  kstack exec --layer 0 -- npm start
  kstack exec --layer 1 --print -- python app.py
  kstack exec --layer 2 --timeout 300 -- ./migrate.sh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return kerrors.UserError{
					Message:    "No command specified",
					Suggestion: "Use: kstack exec --layer <layer> -- <command> [args...]",
				}
			}

			layer, err := requireLayer(layerArg)
			if err != nil {
				return err
			}

			if err := execenv.ValidateCommand(args); err != nil {
				opts.logger().Warn("Command validation: %s", err.Error())
			}

			reg := opts.registry()

			ctx := context.Background()
			resolved, err := secrets.Load(ctx, reg, layer, false)
			if err != nil {
				return kerrors.Wrap(err)
			}

			opts.logger().Info("Resolved %d environment variables for %s", len(resolved), layer.Short())

			// Seal values before they cross into the executor so plaintext
			// does not sit in an ordinary map while the child starts up.
			sealed := make(map[string]*secure.SecureBuffer, len(resolved))
			for key, value := range resolved {
				buf, err := secure.NewSecureBufferFromString(value)
				if err != nil {
					for _, b := range sealed {
						b.Destroy()
					}
					return kerrors.UserError{
						Message:    fmt.Sprintf("Failed to secure the value of %s", key),
						Details:    err.Error(),
						Suggestion: "Try running with --debug for more information",
						Err:        err,
					}
				}
				sealed[secrets.EnvName(key)] = buf
			}
			defer func() {
				for _, buf := range sealed {
					buf.Destroy()
				}
			}()

			executor := execenv.New(opts.logger())

			return executor.Exec(ctx, execenv.Options{
				Command:    args,
				Secrets:    sealed,
				Override:   override,
				PrintVars:  printVars,
				WorkingDir: cwd,
				Timeout:    time.Duration(timeout) * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&layerArg, "layer", "", "Layer whose secrets to inject (required)")
	cmd.Flags().BoolVar(&override, "override", false, "Let resolved secrets replace variables already set in the environment")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print injected variables (values masked)")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory for the command")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Command timeout in seconds (0 for no timeout)")

	_ = cmd.MarkFlagRequired("layer")

	return cmd
}
