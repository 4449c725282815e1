package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/internal/panel"
)

var panelIntervalFlag string

// panelCmd starts the interactive fleet dashboard.
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Interactive fleet dashboard",
	Long: `Open the interactive fleet dashboard.

Shows every VM in the active cluster with live CPU and memory gauges,
plus cluster nodes ranked by load. The snapshot refreshes on a timer
and after every action.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force refresh
  up/k        Select previous VM
  down/j      Select next VM
  s           Start selected VM
  x           Shut down selected VM
  d           Delete selected VM (asks first)
  Tab         Cycle clusters
  ?           Show help

Examples:
  fleetdeck panel
  fleetdeck panel --cluster pve-west
  fleetdeck panel --interval 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := time.Duration(0)
		if panelIntervalFlag != "" {
			parsed, err := time.ParseDuration(panelIntervalFlag)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					fmt.Sprintf("Invalid interval: %s", panelIntervalFlag),
					"Use a valid duration like 2s, 5s, or 1m")
			}
			if parsed < 500*time.Millisecond {
				return errors.New(errors.ErrConfig,
					"Interval too short",
					"Minimum interval is 500ms to avoid hammering the backend")
			}
			interval = parsed
		}

		return panelCommand(interval)
	},
}

func panelCommand(interval time.Duration) error {
	s, err := newSession(false)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = s.cfg.Poll.Interval
	}

	// The panel drives refreshes from its own tick loop; the initial
	// snapshot failure still opens the panel, marked stale.
	if err := s.selectCluster(cmdContext()); err != nil {
		if errors.IsCode(err, errors.ErrConfig) {
			return err
		}
	}

	m := panel.NewModel(s.ctrl, s.cfg, interval)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func init() {
	panelCmd.Flags().StringVar(&panelIntervalFlag, "interval", "", "refresh interval (e.g., 2s, 5s, 1m)")
	rootCmd.AddCommand(panelCmd)
}
