package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/internal/vault"
	"github.com/systmms/kstack/pkg/registry"
	"github.com/systmms/kstack/pkg/stack"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(opts *Options) *cobra.Command {
	var (
		layerArg string
		vaultDir string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check environment detection and secret readability",
		Long: `Verify that kstack can do its job from here.

This command checks:
- Which execution context the process runs in
- That each layer's environment can be detected
- That each layer's secret bundle is readable
- Locally, that a secrets vault exists and whether it is encrypted

Use --layer to restrict the per-layer checks to one layer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layers, err := selectLayers(layerArg)
			if err != nil {
				return err
			}

			var extra []registry.Option
			if vaultDir != "" {
				extra = append(extra, registry.WithVaultDir(vaultDir))
			}
			reg := opts.registry(extra...)

			opts.logger().Info("Checking kstack configuration...")

			execContext := stack.ContextLocal
			if reg.InCluster() {
				execContext = stack.ContextCluster
			}

			checks := []doctorCheck{{
				Name:    "execution context",
				OK:      true,
				Message: execContext.String(),
			}}

			ctx := context.Background()
			checks = append(checks, layerChecks(ctx, reg, layers)...)

			if execContext == stack.ContextLocal {
				checks = append(checks, vaultChecks(vaultDir)...)
			}

			displayDoctorChecks(checks)

			passed := 0
			for _, check := range checks {
				if check.OK {
					passed++
				}
			}

			fmt.Printf("\nSummary: %d/%d checks passed\n", passed, len(checks))
			if passed < len(checks) {
				return fmt.Errorf("some checks failed")
			}

			opts.logger().Info("✓ All systems operational!")
			return nil
		},
	}

	cmd.Flags().StringVar(&layerArg, "layer", "all", "Layer to check (0-3 or 'all')")
	cmd.Flags().StringVar(&vaultDir, "vault-dir", "", "Explicit secrets vault directory")

	return cmd
}

// doctorCheck is the outcome of one diagnostic probe.
type doctorCheck struct {
	Name    string
	OK      bool
	Message string
}

// layerChecks probes environment detection and bundle readability for each
// layer.
func layerChecks(ctx context.Context, reg *registry.Registry, layers []stack.Layer) []doctorCheck {
	checks := make([]doctorCheck, 0, len(layers)*2)

	detector, err := reg.EnvironmentDetector()
	if err != nil {
		return append(checks, doctorCheck{
			Name:    "environment detector",
			Message: kerrors.Wrap(err).Error(),
		})
	}

	origin, err := reg.SecretOrigin()
	if err != nil {
		return append(checks, doctorCheck{
			Name:    "secret origin",
			Message: kerrors.Wrap(err).Error(),
		})
	}

	for _, layer := range layers {
		env, err := detector.Environment(ctx, layer)
		if err != nil {
			checks = append(checks, doctorCheck{
				Name:    layer.Short() + " environment",
				Message: err.Error(),
			})
			continue
		}
		checks = append(checks, doctorCheck{
			Name:    layer.Short() + " environment",
			OK:      true,
			Message: env.String(),
		})

		bundle, err := origin.Read(ctx, env, layer)
		if err != nil {
			checks = append(checks, doctorCheck{
				Name:    layer.Short() + " secrets",
				Message: err.Error(),
			})
			continue
		}
		checks = append(checks, doctorCheck{
			Name:    layer.Short() + " secrets",
			OK:      true,
			Message: fmt.Sprintf("%d keys", len(bundle.Values)),
		})
	}

	return checks
}

// vaultChecks probes the workstation secrets vault. Only meaningful in the
// local context.
func vaultChecks(explicitDir string) []doctorCheck {
	v := vault.Discover(explicitDir, "")
	if !v.Exists() {
		return []doctorCheck{{
			Name:    "secrets vault",
			Message: "no vault directory found (set KSTACK_VAULT_DIR or pass --vault-dir)",
		}}
	}

	checks := []doctorCheck{{
		Name:    "secrets vault",
		OK:      true,
		Message: v.Path(),
	}}

	encrypted, err := v.Encrypted()
	switch {
	case err != nil:
		checks = append(checks, doctorCheck{
			Name:    "vault encryption",
			Message: err.Error(),
		})
	case encrypted:
		checks = append(checks, doctorCheck{
			Name:    "vault encryption",
			OK:      true,
			Message: "encrypted at rest",
		})
	default:
		checks = append(checks, doctorCheck{
			Name:    "vault encryption",
			OK:      true,
			Message: "plaintext (consider encrypting with age)",
		})
	}

	return checks
}

// displayDoctorChecks shows check outcomes in a formatted table.
func displayDoctorChecks(checks []doctorCheck) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tDETAIL\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t------\n")

	for _, check := range checks {
		status := "✓ ok"
		if !check.OK {
			status = "✗ failed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, status, check.Message)
	}

	_ = w.Flush()
}
