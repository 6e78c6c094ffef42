package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/internal/execenv"
	"github.com/systmms/kstack/pkg/registry"
	"github.com/systmms/kstack/pkg/secrets"
)

// NewSecretsCommand creates the secrets command group.
func NewSecretsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect and export resolved secrets",
		Long: `Resolve the secrets a layer may see and inspect or export them.

Resolution merges the bundles other layers share with the requested layer,
then overlays the layer's own bundle. Locally bundles come from the secrets
vault; in-cluster from the layer namespaces' Kubernetes Secrets.`,
	}

	cmd.AddCommand(
		newSecretsListCommand(opts),
		newSecretsExportCommand(opts),
	)

	return cmd
}

func newSecretsListCommand(opts *Options) *cobra.Command {
	var (
		layerArg   string
		showValues bool
		vaultDir   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the secrets resolved for a layer",
		Long: `List every secret the given layer may see, with the environment
variable name each key exports as. Values are masked unless --show-values
is given.

Examples:
  kstack secrets list --layer 0
  kstack secrets list --layer 2 --show-values
  kstack secrets list --layer 1 --vault-dir ~/work/secrets-vault`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layer, err := requireLayer(layerArg)
			if err != nil {
				return err
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

			if len(resolved) == 0 {
				fmt.Printf("No secrets resolved for %s\n", layer.Short())
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "KEY\tENV NAME\tVALUE\n")

			for _, key := range sortedKeys(resolved) {
				value := execenv.MaskValue(resolved[key])
				if showValues {
					value = resolved[key]
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", key, secrets.EnvName(key), value)
			}

			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d secrets for %s\n", len(resolved), layer.Short())
			return nil
		},
	}

	cmd.Flags().StringVar(&layerArg, "layer", "", "Layer to resolve (required)")
	cmd.Flags().BoolVar(&showValues, "show-values", false, "Show plaintext values instead of masks")
	cmd.Flags().StringVar(&vaultDir, "vault-dir", "", "Explicit secrets vault directory")

	_ = cmd.MarkFlagRequired("layer")

	return cmd
}
