package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/guard"
	viewtesting "github.com/fleetdeck/fleetdeck/internal/view/testing"
)

func TestSubmit_CreateSuccess(t *testing.T) {
	fake := seededFake()
	fake.CreateResult = api.CreateResult{
		Status: "created", VMID: 105, Name: "vm-a1b2c3d4", Node: "node-a", Region: "public",
	}
	c := newController(fake, viewtesting.NewFakeView())
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))
	refreshesBefore := fake.CallsTo("ListVMs")

	result, err := c.Submit(context.Background(), guard.Request{
		Action:   guard.ActionCreate,
		Node:     "node-a",
		VCPU:     2,
		MemoryMB: 2048,
		DiskGB:   20,
	})
	require.NoError(t, err)

	// The backend's structured placement result comes back for display.
	assert.Equal(t, 105, result.VMID)
	assert.Equal(t, "node-a", result.Node)
	require.NotNil(t, result.Create)
	assert.Equal(t, "vm-a1b2c3d4", result.Create.Name)

	assert.Equal(t, 1, fake.CallsTo("CreateVM"))
	assert.Equal(t, refreshesBefore+1, fake.CallsTo("ListVMs"))

	// The cluster was filled in from the active selection.
	payload := fake.Calls[len(fake.Calls)-3].Payload.(api.CreateRequest)
	assert.Equal(t, "pve-east", payload.Cluster)
}

func TestSubmit_CreateMissingNode_NeverReachesNetwork(t *testing.T) {
	fake := seededFake()
	c := newController(fake, viewtesting.NewFakeView())
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))

	_, err := c.Submit(context.Background(), guard.Request{
		Action:   guard.ActionCreate,
		VCPU:     2,
		MemoryMB: 2048,
		DiskGB:   20,
	})
	require.Error(t, err)
	assert.True(t, guard.IsReason(err, guard.ReasonMissingField))
	assert.Zero(t, fake.MutationCalls())
}

func TestSubmit_ReconfigureDiskShrink_NoNetworkCall(t *testing.T) {
	fake := seededFake()
	fake.Config[101] = api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20, DiskSizeRaw: "20G"}
	c := newController(fake, viewtesting.NewFakeView())
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))

	_, err := c.Submit(context.Background(), guard.Request{
		Action:   guard.ActionReconfigure,
		VMID:     101,
		VCPU:     4,
		MemoryMB: 4096,
		DiskGB:   15,
	})
	require.Error(t, err)
	assert.True(t, guard.IsReason(err, guard.ReasonDiskShrink))

	// The config read happened, but no mutation was dispatched.
	assert.Equal(t, 1, fake.CallsTo("GetVMConfig"))
	assert.Zero(t, fake.CallsTo("ConfigureVM"))
	assert.False(t, c.InFlight(101))
}

func TestSubmit_ReconfigureEqualDisk_SecondaryConfirmation(t *testing.T) {
	fake := seededFake()
	fake.Config[101] = api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20, DiskSizeRaw: "20G"}
	v := viewtesting.NewFakeView().Confirming(1)
	c := newController(fake, v)
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))

	result, err := c.Submit(context.Background(), guard.Request{
		Action:   guard.ActionReconfigure,
		VMID:     101,
		VCPU:     8,
		MemoryMB: 8192,
		DiskGB:   20,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "reconfigured")

	require.Len(t, v.Prompts, 1)
	assert.Contains(t, v.Prompts[0], "Disk stays at 20G")
	assert.Equal(t, 1, fake.CallsTo("ConfigureVM"))
}

func TestSubmit_ReconfigureGrow_Allowed(t *testing.T) {
	fake := seededFake()
	fake.Config[101] = api.VMConfig{VCPU: 4, MemoryMB: 4096, DiskGB: 20, DiskSizeRaw: "20G"}
	v := viewtesting.NewFakeView()
	c := newController(fake, v)
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))

	_, err := c.Submit(context.Background(), guard.Request{
		Action:   guard.ActionReconfigure,
		VMID:     101,
		VCPU:     4,
		MemoryMB: 4096,
		DiskGB:   25,
	})
	require.NoError(t, err)
	assert.Empty(t, v.Prompts, "growing the disk needs no confirmation")

	payload := fake.Calls[len(fake.Calls)-3].Payload.(api.ConfigRequest)
	assert.Equal(t, 25, payload.DiskGB)
	assert.Equal(t, "node-a", payload.Node, "node resolved from snapshot")
}

func TestSubmit_StartResolvesNodeFromSnapshot(t *testing.T) {
	fake := seededFake()
	c := newController(fake, viewtesting.NewFakeView())
	require.NoError(t, c.SelectCluster(context.Background(), "pve-east"))

	_, err := c.Submit(context.Background(), guard.Request{Action: guard.ActionStart, VMID: 102})
	require.NoError(t, err)

	payload := fake.Calls[len(fake.Calls)-3].Payload.(api.ControlRequest)
	assert.Equal(t, "node-b", payload.Node)
	assert.Equal(t, 102, payload.VMID)
	assert.Equal(t, "pve-east", payload.Cluster)
}
