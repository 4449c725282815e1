package metrics

import "github.com/fleetdeck/fleetdeck/internal/api"

// FleetStats summarizes a fleet snapshot for the panel header.
type FleetStats struct {
	Total   int
	Running int
	Stopped int
	Other   int
}

// Stats counts VMs by lifecycle status. An empty fleet yields all zeros.
func Stats(vms []api.VM) FleetStats {
	s := FleetStats{Total: len(vms)}
	for _, vm := range vms {
		switch vm.Status {
		case api.StatusRunning:
			s.Running++
		case api.StatusStopped:
			s.Stopped++
		default:
			s.Other++
		}
	}
	return s
}
