package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/kstack/pkg/stack"
)

// NewLayersCommand creates the layers command showing the stack topology.
func NewLayersCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Show the deployment stack layers",
		Long: `Show the four layers of the deployment stack, from the applications
at the top to the global infrastructure at the bottom.

Each layer maps to one Kubernetes namespace in-cluster and one directory
per environment in the local secrets vault.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			_, _ = fmt.Fprintf(w, "LAYER\tSHORT\tNAMESPACE\tNAME\n")
			_, _ = fmt.Fprintf(w, "-----\t-----\t---------\t----\n")

			for _, layer := range stack.Layers() {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					layer.Number(), layer.Short(), layer.Namespace(), layer.DisplayName())
			}

			return w.Flush()
		},
	}

	return cmd
}
