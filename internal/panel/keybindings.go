package panel

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fleetdeck/fleetdeck/internal/guard"
)

// Key bindings as constants for consistency.
const (
	KeyQuit         = "q"
	KeyQuitAlt      = "ctrl+c"
	KeyRefresh      = "r"
	KeyStart        = "s"
	KeyShutdown     = "x"
	KeyDelete       = "d"
	KeyCycleCluster = "tab"
	KeySelectPrev   = "up"
	KeySelectPrevK  = "k"
	KeySelectNext   = "down"
	KeySelectNextJ  = "j"
	KeySelectFirst  = "home"
	KeySelectLast   = "end"
	KeyConfirmYes   = "y"
	KeyConfirmNo    = "n"
	KeyEnter        = "enter"
	KeyEscape       = "esc"
	KeyToggleHelp   = "?"
)

// handleKey processes keyboard input. Returns true if the key was
// handled.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// The confirm modal captures all input while up.
	if m.confirm != nil {
		switch key {
		case KeyConfirmYes, KeyEnter:
			req := m.confirm.req
			req.Confirmed = true
			m.confirm = nil
			return true, m.submitCmd(req)
		case KeyConfirmNo, KeyEscape, KeyQuit:
			m.confirm = nil
			m.status = "Delete cancelled"
			m.statusErr = false
			return true, nil
		}
		return true, nil
	}

	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key == KeyEscape {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeyRefresh:
		return true, m.refreshCmd()

	case KeyCycleCluster:
		if len(m.clusters) < 2 {
			return true, nil
		}
		m.clusterIdx = (m.clusterIdx + 1) % len(m.clusters)
		m.selected = 0
		return true, m.selectClusterCmd(m.clusters[m.clusterIdx])

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.snap.VMs)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if len(m.snap.VMs) > 0 {
			m.selected = len(m.snap.VMs) - 1
		}
		return true, nil

	case KeyStart:
		if vm, ok := m.SelectedVM(); ok {
			return true, m.submitCmd(guard.Request{
				Action: guard.ActionStart,
				VMID:   vm.VMID,
			})
		}
		return true, nil

	case KeyShutdown:
		if vm, ok := m.SelectedVM(); ok {
			return true, m.submitCmd(guard.Request{
				Action: guard.ActionShutdown,
				VMID:   vm.VMID,
			})
		}
		return true, nil

	case KeyDelete:
		vm, ok := m.SelectedVM()
		if !ok {
			return true, nil
		}
		// The modal owns the confirmation; the submitted request is
		// marked confirmed so it is never prompted a second time.
		m.confirm = &confirmState{
			message: guard.DeletePrompt(vm.VMID, vm.Name, vm.Running),
			req:     guard.Request{Action: guard.ActionDelete, VMID: vm.VMID},
		}
		return true, nil
	}

	return false, nil
}
