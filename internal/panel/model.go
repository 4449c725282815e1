// Package panel is the interactive fleet dashboard. It renders the
// current snapshot, refreshes it on a timer, and submits VM actions
// through the controller, running its own confirmation modal so the
// controller never blocks on a prompt mid-update.
package panel

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/control"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
	"github.com/fleetdeck/fleetdeck/internal/guard"
)

// Model is the Bubble Tea model for the fleet panel.
type Model struct {
	ctrl *control.Controller
	cfg  *config.Config

	clusters   []string
	clusterIdx int

	snap     fleet.Snapshot
	selected int

	width  int
	height int

	interval   time.Duration
	lastUpdate time.Time

	// status is the most recent action outcome, shown above the footer.
	status    string
	statusErr bool

	// confirm is non-nil while the delete modal is up.
	confirm *confirmState

	// spin animates rows with an in-flight mutation.
	spin spinner.Model

	showHelp bool
	quitting bool
}

// confirmState holds a pending request awaiting the operator's answer.
type confirmState struct {
	message string
	req     guard.Request
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// snapshotMsg carries the refreshed snapshot. err is non-nil when the
// refresh failed; the snapshot then carries the prior data marked stale.
type snapshotMsg struct {
	snap fleet.Snapshot
	err  error
	time time.Time
}

// actionDoneMsg carries the outcome of a submitted mutation.
type actionDoneMsg struct {
	result *control.Result
	err    error
}

// NewModel creates a panel bound to the controller's active cluster.
func NewModel(ctrl *control.Controller, cfg *config.Config, interval time.Duration) Model {
	clusters := cfg.ClusterIDs()

	idx := 0
	for i, id := range clusters {
		if id == ctrl.Cluster() {
			idx = i
			break
		}
	}

	if interval <= 0 {
		interval = 10 * time.Second
	}

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(PendingStyle),
	)

	return Model{
		ctrl:       ctrl,
		cfg:        cfg,
		clusters:   clusters,
		clusterIdx: idx,
		snap:       ctrl.Snapshot(),
		interval:   interval,
		spin:       spin,
	}
}

// Init starts the tick timer and triggers an initial refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.refreshCmd(), m.spin.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.refreshCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.lastUpdate = msg.time
		m.snap = msg.snap
		m.clampSelection()
		if msg.err != nil {
			m.status = "Refresh failed; showing last known state"
			m.statusErr = true
		} else if m.statusErr && m.status == "Refresh failed; showing last known state" {
			m.status = ""
			m.statusErr = false
		}

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusErr = true
		} else {
			m.status = msg.result.Message
			m.statusErr = false
		}
		// Submit already refreshed the store on success.
		m.snap = m.ctrl.Snapshot()
		m.clampSelection()
	}

	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// SelectedVM returns the VM under the cursor, if any.
func (m Model) SelectedVM() (vm fleetVM, ok bool) {
	if m.selected < 0 || m.selected >= len(m.snap.VMs) {
		return fleetVM{}, false
	}
	v := m.snap.VMs[m.selected]
	return fleetVM{VMID: v.VMID, Name: v.Name, Running: v.Running()}, true
}

// fleetVM is the minimal selection info the key handler needs.
type fleetVM struct {
	VMID    int
	Name    string
	Running bool
}

func (m *Model) clampSelection() {
	if len(m.snap.VMs) == 0 {
		m.selected = 0
		return
	}
	if m.selected >= len(m.snap.VMs) {
		m.selected = len(m.snap.VMs) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd refreshes the snapshot out of band. The store keeps the
// prior snapshot (marked stale) when the backend is unreachable.
func (m Model) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.Refresh(context.Background())
		return snapshotMsg{snap: ctrl.Snapshot(), err: err, time: time.Now()}
	}
}

// selectClusterCmd switches the active cluster and refreshes.
func (m Model) selectClusterCmd(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.SelectCluster(context.Background(), id)
		return snapshotMsg{snap: ctrl.Snapshot(), err: err, time: time.Now()}
	}
}

// submitCmd dispatches a mutation through the controller.
func (m Model) submitCmd(req guard.Request) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		result, err := ctrl.Submit(context.Background(), req)
		return actionDoneMsg{result: result, err: err}
	}
}
