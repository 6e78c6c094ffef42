package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/pkg/registry"
	"github.com/systmms/kstack/pkg/secrets"
)

func newSecretsExportCommand(opts *Options) *cobra.Command {
	var (
		layerArg string
		override bool
		format   string
		vaultDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print resolved secrets as shell export lines",
		Long: `Print the secrets a layer may see in a form a shell can evaluate.

Variables already set in the calling environment are skipped so explicit
exports keep precedence; pass --override to emit them anyway.

Examples:
  eval "$(kstack secrets export --layer 0)"
  kstack secrets export --layer 1 --format dotenv > .env
  kstack secrets export --layer 0 --override`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layer, err := requireLayer(layerArg)
			if err != nil {
				return err
			}

			if format != "shell" && format != "dotenv" {
				return kerrors.UserError{
					Message:    fmt.Sprintf("Unknown format %q", format),
					Suggestion: "Use --format shell or --format dotenv",
				}
			}

			var extra []registry.Option
			if vaultDir != "" {
				extra = append(extra, registry.WithVaultDir(vaultDir))
			}
			reg := opts.registry(extra...)

			resolver, err := secrets.FromRegistry(reg)
			if err != nil {
				return kerrors.Wrap(err)
			}

			resolved, err := resolver.Resolve(context.Background(), layer)
			if err != nil {
				return kerrors.Wrap(err)
			}

			for _, key := range sortedKeys(resolved) {
				name := secrets.EnvName(key)
				if !override {
					if _, exists := os.LookupEnv(name); exists {
						continue
					}
				}

				switch format {
				case "shell":
					fmt.Printf("export %s=%s\n", name, shellQuote(resolved[key]))
				case "dotenv":
					fmt.Printf("%s=%s\n", name, resolved[key])
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&layerArg, "layer", "", "Layer to resolve (required)")
	cmd.Flags().BoolVar(&override, "override", false, "Also emit variables already set in the environment")
	cmd.Flags().StringVar(&format, "format", "shell", "Output format: shell or dotenv")
	cmd.Flags().StringVar(&vaultDir, "vault-dir", "", "Explicit secrets vault directory")

	_ = cmd.MarkFlagRequired("layer")

	return cmd
}

// shellQuote single-quotes a value so the shell takes it literally.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
