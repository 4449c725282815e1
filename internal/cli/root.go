package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var (
	configFlag  string
	clusterFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fleetdeck",
	Short: "Control panel for a VM fleet",
	Long: `fleetdeck is a control panel for a virtual machine fleet.

It keeps a live snapshot of your clusters, guards every mutation
locally before it reaches the backend, and gives you both an
interactive dashboard and one-shot commands.

Start with:
  fleetdeck init     Create a config file
  fleetdeck panel    Open the dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error. Structured
// errors already render their own suggestion text.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&clusterFlag, "cluster", "", "cluster to operate on (overrides default_cluster)")
}
