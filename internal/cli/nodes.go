package cli

import (
	"github.com/spf13/cobra"
)

// nodesCmd shows the cluster's nodes ranked by load.
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Show cluster nodes ranked by load",
	Long: `Show the nodes of the active cluster, ranked least-stressed first.

The stress score combines CPU, memory, and running-VM count. The
ranking orders the display and the create form's node picker; actual
placement is the backend's decision.

Examples:
  fleetdeck nodes
  fleetdeck nodes --cluster pve-west`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}
		if err := s.selectCluster(cmdContext()); err != nil {
			return err
		}
		s.term.RenderNodes(s.ctrl.Snapshot().Nodes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
