package panel

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/api"
	apitesting "github.com/fleetdeck/fleetdeck/internal/api/testing"
	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/control"
	"github.com/fleetdeck/fleetdeck/internal/guard"
	"github.com/fleetdeck/fleetdeck/internal/logger"
	"github.com/fleetdeck/fleetdeck/internal/view"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend.URL = "http://localhost:8000"
	cfg.Clusters = map[string]config.ClusterConfig{
		"pve-east": {Label: "East"},
		"pve-west": {Label: "West"},
	}
	return cfg
}

func seededFake() *apitesting.FakeClient {
	fake := apitesting.NewFakeClient()
	fake.SetVMs("pve-east", []api.VM{
		{VMID: 101, Name: "web-1", Status: api.StatusRunning, Node: "node-a", CPU: 42, Mem: 1 << 30, MaxMem: 2 << 30},
		{VMID: 102, Name: "db-1", Status: api.StatusStopped, Node: "node-b"},
	})
	fake.SetNodes("pve-east", []api.Node{
		{Name: "node-a", Status: "online", CPU: 10, MemUsage: 20, VMCount: 1},
	})
	fake.SetVMs("pve-west", []api.VM{
		{VMID: 201, Name: "cache-1", Status: api.StatusRunning, Node: "node-w"},
	})
	return fake
}

func testModel(t *testing.T, fake *apitesting.FakeClient) Model {
	t.Helper()
	ctrl := control.New(fake, view.Discard{}, control.Options{Logger: logger.Noop()})
	require.NoError(t, ctrl.SelectCluster(context.Background(), "pve-east"))

	m := NewModel(ctrl, testConfig(), time.Second)
	m.snap = ctrl.Snapshot()
	return m
}

// key builds a KeyMsg for a binding string like "j" or "tab".
func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// step applies a key and returns the updated model and command.
func step(m Model, s string) (Model, tea.Cmd) {
	updated, cmd := m.Update(key(s))
	return updated.(Model), cmd
}

func TestNewModel_BindsActiveCluster(t *testing.T) {
	m := testModel(t, seededFake())

	assert.Equal(t, []string{"pve-east", "pve-west"}, m.clusters)
	assert.Equal(t, 0, m.clusterIdx)
	assert.Len(t, m.snap.VMs, 2)
}

func TestSelection_Navigation(t *testing.T) {
	m := testModel(t, seededFake())
	assert.Equal(t, 0, m.selected)

	m, _ = step(m, "j")
	assert.Equal(t, 1, m.selected)

	// Clamped at the end of the list.
	m, _ = step(m, "j")
	assert.Equal(t, 1, m.selected)

	m, _ = step(m, "k")
	assert.Equal(t, 0, m.selected)

	m, _ = step(m, "k")
	assert.Equal(t, 0, m.selected)

	m, _ = step(m, "end")
	assert.Equal(t, 1, m.selected)
	m, _ = step(m, "home")
	assert.Equal(t, 0, m.selected)
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := testModel(t, seededFake())
		m, cmd := step(m, k)
		assert.True(t, m.quitting)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestStartKey_SubmitsStart(t *testing.T) {
	fake := seededFake()
	m := testModel(t, fake)

	m, _ = step(m, "j") // select VM 102 (stopped)
	m, cmd := step(m, "s")
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)

	assert.Equal(t, 1, fake.CallsTo("StartVM"))

	updated, _ := m.Update(done)
	m = updated.(Model)
	assert.Contains(t, m.status, "start requested")
	assert.False(t, m.statusErr)
}

func TestDeleteKey_OpensModalWithEscalatedWording(t *testing.T) {
	m := testModel(t, seededFake())

	// VM 101 is running; the modal warns about data loss.
	m, cmd := step(m, "d")
	assert.Nil(t, cmd)
	require.NotNil(t, m.confirm)
	assert.Contains(t, m.confirm.message, "RUNNING")
	assert.Contains(t, m.confirm.message, "web-1")
}

func TestDeleteModal_ConfirmSubmitsOnce(t *testing.T) {
	fake := seededFake()
	m := testModel(t, fake)

	m, _ = step(m, "d")
	require.NotNil(t, m.confirm)

	m, cmd := step(m, "y")
	assert.Nil(t, m.confirm)
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err, "the modal's answer must stand; no second prompt")

	assert.Equal(t, 1, fake.CallsTo("DeleteVM"))
}

func TestDeleteModal_Cancel(t *testing.T) {
	fake := seededFake()
	m := testModel(t, fake)

	m, _ = step(m, "d")
	m, cmd := step(m, "n")

	assert.Nil(t, m.confirm)
	assert.Nil(t, cmd)
	assert.Equal(t, "Delete cancelled", m.status)
	assert.Zero(t, fake.CallsTo("DeleteVM"))
}

func TestDeleteModal_CapturesOtherKeys(t *testing.T) {
	m := testModel(t, seededFake())

	m, _ = step(m, "d")
	require.NotNil(t, m.confirm)

	// Navigation is swallowed while the modal is up.
	m, cmd := step(m, "j")
	assert.Nil(t, cmd)
	assert.NotNil(t, m.confirm)
	assert.Equal(t, 0, m.selected)
}

func TestTabKey_CyclesClusters(t *testing.T) {
	fake := seededFake()
	m := testModel(t, fake)

	m, cmd := step(m, "tab")
	assert.Equal(t, 1, m.clusterIdx)
	require.NotNil(t, cmd)

	msg := cmd()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)
	require.NoError(t, snap.err)
	assert.Equal(t, "pve-west", snap.snap.Cluster)

	updated, _ := m.Update(msg)
	m = updated.(Model)
	assert.Len(t, m.snap.VMs, 1)
	assert.Equal(t, 0, m.selected)
}

func TestSnapshotMsg_ErrorMarksStatus(t *testing.T) {
	m := testModel(t, seededFake())

	updated, _ := m.Update(snapshotMsg{
		snap: m.snap,
		err:  assert.AnError,
		time: time.Now(),
	})
	m = updated.(Model)

	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "last known state")
}

func TestSnapshotMsg_ClampsSelection(t *testing.T) {
	m := testModel(t, seededFake())
	m.selected = 1

	shrunk := m.snap
	shrunk.VMs = shrunk.VMs[:1]
	updated, _ := m.Update(snapshotMsg{snap: shrunk, time: time.Now()})
	m = updated.(Model)

	assert.Equal(t, 0, m.selected)
}

func TestActionDoneMsg_Error(t *testing.T) {
	m := testModel(t, seededFake())

	updated, _ := m.Update(actionDoneMsg{err: assert.AnError})
	m = updated.(Model)

	assert.True(t, m.statusErr)
	assert.Equal(t, assert.AnError.Error(), m.status)
}

func TestHelpToggle(t *testing.T) {
	m := testModel(t, seededFake())

	m, _ = step(m, "?")
	assert.True(t, m.showHelp)

	m, _ = step(m, "esc")
	assert.False(t, m.showHelp)
}

func TestSubmitThenDuplicateGuardReason(t *testing.T) {
	fake := seededFake()
	m := testModel(t, fake)

	entered := make(chan struct{})
	release := make(chan struct{})
	fake.SetHook("ShutdownVM", func() {
		close(entered)
		<-release
	})

	_, cmd := step(m, "x")
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-entered

	// Second shutdown for the same VM while the first is in flight.
	_, cmd2 := step(m, "x")
	require.NotNil(t, cmd2)
	msg2 := cmd2().(actionDoneMsg)
	require.Error(t, msg2.err)
	assert.True(t, guard.IsReason(msg2.err, guard.ReasonAlreadyInProgress))

	close(release)
	first := (<-done).(actionDoneMsg)
	require.NoError(t, first.err)
	assert.Equal(t, 1, fake.CallsTo("ShutdownVM"))
}
