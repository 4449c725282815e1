package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
	"github.com/fleetdeck/fleetdeck/internal/logger"
)

// scriptedConfirmer answers prompts from a fixed script and records them.
type scriptedConfirmer struct {
	answers []bool
	Prompts []string
}

func (c *scriptedConfirmer) PromptConfirm(message string) bool {
	c.Prompts = append(c.Prompts, message)
	if len(c.answers) == 0 {
		return false
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer
}

func confirmYes() *scriptedConfirmer { return &scriptedConfirmer{answers: []bool{true}} }
func confirmNo() *scriptedConfirmer  { return &scriptedConfirmer{answers: []bool{false}} }

func testSnapshot() fleet.Snapshot {
	return fleet.Snapshot{
		Cluster: "pve-east",
		VMs: []api.VM{
			{VMID: 101, Name: "web-1", Status: api.StatusRunning, Node: "node-a"},
			{VMID: 102, Name: "db-1", Status: api.StatusStopped, Node: "node-b"},
		},
	}
}

func validCreate() Request {
	return Request{
		Action:   ActionCreate,
		Cluster:  "pve-east",
		Node:     "node-a",
		Name:     "new-vm",
		VCPU:     2,
		MemoryMB: 2048,
		DiskGB:   20,
	}
}

func TestAdmit_DuplicateInFlight(t *testing.T) {
	g := New(confirmYes(), logger.Noop())

	release, err := g.Admit(Request{Action: ActionStart, VMID: 101}, testSnapshot(), nil)
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.True(t, g.InFlight(101))

	// Second request for the same VM, any action, short-circuits.
	_, err = g.Admit(Request{Action: ActionStart, VMID: 101}, testSnapshot(), nil)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonAlreadyInProgress))

	_, err = g.Admit(Request{Action: ActionDelete, VMID: 101, Confirmed: true}, testSnapshot(), nil)
	assert.True(t, IsReason(err, ReasonAlreadyInProgress))

	// A different VM is unaffected.
	release2, err := g.Admit(Request{Action: ActionStart, VMID: 102}, testSnapshot(), nil)
	require.NoError(t, err)
	release2()

	// Release frees the key; release is idempotent.
	release()
	release()
	assert.False(t, g.InFlight(101))

	_, err = g.Admit(Request{Action: ActionStart, VMID: 101}, testSnapshot(), nil)
	assert.NoError(t, err)
}

func TestAdmit_StartOnRunningVMAllowed(t *testing.T) {
	// The backend is authoritative; the guard doesn't hard-block a
	// redundant start.
	g := New(confirmNo(), logger.Noop())
	release, err := g.Admit(Request{Action: ActionStart, VMID: 101}, testSnapshot(), nil)
	require.NoError(t, err)
	release()
}

func TestAdmit_DeleteRunningVMEscalatedWording(t *testing.T) {
	confirm := confirmYes()
	g := New(confirm, logger.Noop())

	release, err := g.Admit(Request{Action: ActionDelete, VMID: 101}, testSnapshot(), nil)
	require.NoError(t, err)
	defer release()

	// Exactly one prompt, bearing the data-loss warning.
	require.Len(t, confirm.Prompts, 1)
	assert.Contains(t, confirm.Prompts[0], "RUNNING")
	assert.Contains(t, confirm.Prompts[0], "destroy its data")
	assert.Contains(t, confirm.Prompts[0], "web-1")
}

func TestAdmit_DeleteStoppedVMPlainWording(t *testing.T) {
	confirm := confirmYes()
	g := New(confirm, logger.Noop())

	release, err := g.Admit(Request{Action: ActionDelete, VMID: 102}, testSnapshot(), nil)
	require.NoError(t, err)
	defer release()

	require.Len(t, confirm.Prompts, 1)
	assert.NotContains(t, confirm.Prompts[0], "RUNNING")
	assert.Contains(t, confirm.Prompts[0], "cannot be undone")
}

func TestAdmit_DeleteDeclined(t *testing.T) {
	g := New(confirmNo(), logger.Noop())

	_, err := g.Admit(Request{Action: ActionDelete, VMID: 101}, testSnapshot(), nil)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonDeclined))
	assert.False(t, g.InFlight(101))
}

func TestAdmit_DeleteConfirmedNeverReprompted(t *testing.T) {
	confirm := &scriptedConfirmer{} // would answer "no" if asked
	g := New(confirm, logger.Noop())

	release, err := g.Admit(Request{Action: ActionDelete, VMID: 101, Confirmed: true}, testSnapshot(), nil)
	require.NoError(t, err)
	defer release()

	assert.Empty(t, confirm.Prompts, "confirmed request must not re-prompt")
}

func TestAdmit_ReconfigureDiskShrinkRejected(t *testing.T) {
	g := New(confirmYes(), logger.Noop())
	current := &api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20, DiskSizeRaw: "20G"}

	req := Request{Action: ActionReconfigure, VMID: 101, VCPU: 4, MemoryMB: 4096, DiskGB: 15}
	_, err := g.Admit(req, testSnapshot(), current)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonDiskShrink))
	assert.False(t, g.InFlight(101))
}

func TestAdmit_ReconfigureEqualDiskNeedsSecondaryConfirmation(t *testing.T) {
	confirm := confirmYes()
	g := New(confirm, logger.Noop())
	current := &api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20}

	req := Request{Action: ActionReconfigure, VMID: 101, VCPU: 8, MemoryMB: 8192, DiskGB: 20}
	release, err := g.Admit(req, testSnapshot(), current)
	require.NoError(t, err)
	defer release()

	require.Len(t, confirm.Prompts, 1)
	assert.Contains(t, confirm.Prompts[0], "Disk stays at 20G")
}

func TestAdmit_ReconfigureEqualDiskDeclined(t *testing.T) {
	g := New(confirmNo(), logger.Noop())
	current := &api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20}

	req := Request{Action: ActionReconfigure, VMID: 101, VCPU: 8, MemoryMB: 8192, DiskGB: 20}
	_, err := g.Admit(req, testSnapshot(), current)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonDeclined))
}

func TestAdmit_ReconfigureGrowAllowedUnconditionally(t *testing.T) {
	confirm := &scriptedConfirmer{}
	g := New(confirm, logger.Noop())
	current := &api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20}

	req := Request{Action: ActionReconfigure, VMID: 101, VCPU: 4, MemoryMB: 4096, DiskGB: 25}
	release, err := g.Admit(req, testSnapshot(), current)
	require.NoError(t, err)
	defer release()

	assert.Empty(t, confirm.Prompts)
}

func TestAdmit_CreateMissingFields(t *testing.T) {
	g := New(confirmYes(), logger.Noop())

	noCluster := validCreate()
	noCluster.Cluster = ""
	_, err := g.Admit(noCluster, fleet.Snapshot{}, nil)
	assert.True(t, IsReason(err, ReasonMissingField))

	noNode := validCreate()
	noNode.Node = ""
	_, err = g.Admit(noNode, fleet.Snapshot{}, nil)
	assert.True(t, IsReason(err, ReasonMissingField))
}

func TestAdmit_CreateValid(t *testing.T) {
	g := New(confirmYes(), logger.Noop())

	release, err := g.Admit(validCreate(), fleet.Snapshot{Cluster: "pve-east"}, nil)
	require.NoError(t, err)
	assert.True(t, g.InFlight(createKey))

	// Only one create at a time.
	_, err = g.Admit(validCreate(), fleet.Snapshot{Cluster: "pve-east"}, nil)
	assert.True(t, IsReason(err, ReasonAlreadyInProgress))

	release()
	assert.False(t, g.InFlight(createKey))
}

func TestAdmit_BoundsChecks(t *testing.T) {
	g := New(confirmYes(), logger.Noop())

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"vcpu too low", func(r *Request) { r.VCPU = 0 }},
		{"vcpu too high", func(r *Request) { r.VCPU = 17 }},
		{"memory too low", func(r *Request) { r.MemoryMB = 512 }},
		{"memory too high", func(r *Request) { r.MemoryMB = 32768 }},
		{"disk too low", func(r *Request) { r.DiskGB = 5 }},
		{"disk too high", func(r *Request) { r.DiskGB = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			_, err := g.Admit(req, fleet.Snapshot{}, nil)
			require.Error(t, err)
			assert.True(t, IsReason(err, ReasonOutOfRange))
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Reason:  ReasonDiskShrink,
		Action:  ActionReconfigure,
		VMID:    101,
		Message: "Disk can't shrink from 20G to 15G",
	}
	assert.Contains(t, err.Error(), "reconfigure")
	assert.Contains(t, err.Error(), "disk shrink rejected")
	assert.Contains(t, err.Error(), "20G")

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonDiskShrink, reason)
}
