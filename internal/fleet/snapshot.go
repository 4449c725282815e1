package fleet

import (
	"time"

	"github.com/fleetdeck/fleetdeck/internal/api"
)

// Snapshot is the complete last-known view of the active cluster. It is
// replaced atomically on every successful refresh and never merged
// field-by-field, so readers can't observe a mix of stale and fresh data.
type Snapshot struct {
	Cluster string
	VMs     []api.VM
	Nodes   []api.Node
	Taken   time.Time

	// Stale is set when the most recent refresh failed and this snapshot
	// is being shown in its place.
	Stale bool
}

// Empty reports whether the snapshot holds no data yet.
func (s Snapshot) Empty() bool {
	return s.Taken.IsZero()
}

// FindVM returns the VM with the given id, if present.
func (s Snapshot) FindVM(vmid int) (api.VM, bool) {
	for _, vm := range s.VMs {
		if vm.VMID == vmid {
			return vm, true
		}
	}
	return api.VM{}, false
}

// clone returns a copy whose slices are independent of the store's.
func (s Snapshot) clone() Snapshot {
	out := s
	out.VMs = append([]api.VM(nil), s.VMs...)
	out.Nodes = append([]api.Node(nil), s.Nodes...)
	return out
}
