package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/pkg/stack"
)

// routeReporter is satisfied by detectors that can name the routing entry
// behind the detected environment. The cluster detector reports its
// ConfigMap route; the local detector has no route to report.
type routeReporter interface {
	ActiveRoute(ctx context.Context, layer stack.Layer) (stack.Route, error)
}

// NewEnvCommand creates the env command showing per-layer environments.
func NewEnvCommand(opts *Options) *cobra.Command {
	var layerArg string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the execution context and active environments",
		Long: `Show where this process runs and which environment each stack layer
is deployed to.

Locally the environment comes from the nearest .kstack.yaml; in-cluster it
comes from the kstack-route ConfigMap of each layer's namespace, in which
case the active route is shown too.

Examples:
  kstack env
  kstack env --layer 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layers, err := selectLayers(layerArg)
			if err != nil {
				return err
			}

			reg := opts.registry()

			execContext := stack.ContextLocal
			if reg.InCluster() {
				execContext = stack.ContextCluster
			}
			fmt.Printf("Context: %s\n\n", execContext)

			detector, err := reg.EnvironmentDetector()
			if err != nil {
				return kerrors.Wrap(err)
			}
			routes, hasRoutes := detector.(routeReporter)

			ctx := context.Background()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			if hasRoutes {
				_, _ = fmt.Fprintf(w, "LAYER\tNAMESPACE\tENVIRONMENT\tROUTE\n")
			} else {
				_, _ = fmt.Fprintf(w, "LAYER\tNAMESPACE\tENVIRONMENT\n")
			}

			for _, layer := range layers {
				env, err := detector.Environment(ctx, layer)
				if err != nil {
					return kerrors.Wrap(err)
				}

				if hasRoutes {
					route, err := routes.ActiveRoute(ctx, layer)
					if err != nil {
						return kerrors.Wrap(err)
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						layer.Short(), layer.Namespace(), env, route)
				} else {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
						layer.Short(), layer.Namespace(), env)
				}
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&layerArg, "layer", "all", "Layer to inspect (0-3 or 'all')")

	return cmd
}
