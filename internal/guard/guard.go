// Package guard validates user-initiated mutations against the current
// fleet snapshot before anything reaches the network.
//
// The guard enforces per-VM mutation exclusivity (at most one in-flight
// mutation per VM id), blocks disk shrinks, and obtains confirmation for
// destructive or noteworthy actions. It holds purely local state: the
// in-flight set is advisory and is released unconditionally once a
// dispatch settles, so a lost response can never wedge a VM permanently.
package guard

import (
	"fmt"
	"sync"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
	"github.com/fleetdeck/fleetdeck/internal/logger"
)

// Action is the kind of mutation being requested.
type Action int

const (
	ActionCreate Action = iota
	ActionStart
	ActionShutdown
	ActionDelete
	ActionReconfigure
)

// String returns the action name used in messages and logs.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionStart:
		return "start"
	case ActionShutdown:
		return "shutdown"
	case ActionDelete:
		return "delete"
	case ActionReconfigure:
		return "reconfigure"
	default:
		return "unknown"
	}
}

// Resource bounds mirrored from the backend's validators. Checking them
// locally keeps obviously-invalid requests off the network; the backend
// remains authoritative.
const (
	MinVCPU     = 1
	MaxVCPU     = 16
	MinMemoryMB = 1024
	MaxMemoryMB = 24576
	MinDiskGB   = 10
	MaxDiskGB   = 200
)

// createKey is the synthetic in-flight key for create requests, which
// have no VM id yet. Real VM ids start well above zero.
const createKey = 0

// Confirmer obtains a yes/no answer from the operator. The view layer
// implements it; tests use a scripted double.
type Confirmer interface {
	PromptConfirm(message string) bool
}

// Request is a user-initiated mutation to be validated.
type Request struct {
	Action  Action
	VMID    int
	Cluster string
	Node    string

	// Create/reconfigure payload.
	Name     string
	VCPU     int
	MemoryMB int
	DiskGB   int

	// Confirmed marks that the caller already obtained confirmation
	// (e.g. a panel modal). The guard never re-prompts a confirmed
	// request.
	Confirmed bool
}

// inflightKey returns the in-flight set key for this request.
func (r Request) inflightKey() int {
	if r.Action == ActionCreate {
		return createKey
	}
	return r.VMID
}

// Guard serializes and validates mutations for one session.
type Guard struct {
	confirm Confirmer
	log     logger.Logger

	mu       sync.Mutex
	inflight map[int]Action
}

// New creates a guard that prompts through the given confirmer.
func New(confirm Confirmer, log logger.Logger) *Guard {
	if log == nil {
		log = logger.Noop()
	}
	return &Guard{
		confirm:  confirm,
		log:      log,
		inflight: make(map[int]Action),
	}
}

// InFlight reports whether a mutation is pending for the given VM id.
func (g *Guard) InFlight(vmid int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[vmid]
	return ok
}

// Admit validates req against the snapshot and, for reconfigure, the VM's
// current configuration. On success it marks the request in-flight and
// returns a release function the dispatcher must call once the request
// settles, success or failure. On rejection nothing is marked and the
// returned *ValidationError names the reason; no network call has been
// made.
func (g *Guard) Admit(req Request, snap fleet.Snapshot, current *api.VMConfig) (func(), error) {
	key := req.inflightKey()

	// Duplicate submissions short-circuit before any prompting.
	g.mu.Lock()
	if pending, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		return nil, &ValidationError{
			Reason: ReasonAlreadyInProgress,
			Action: req.Action,
			VMID:   req.VMID,
			Message: fmt.Sprintf("A %s for VM %d is still in progress",
				pending, req.VMID),
		}
	}
	g.mu.Unlock()

	if err := g.validate(req, snap, current); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if pending, ok := g.inflight[key]; ok {
		return nil, &ValidationError{
			Reason: ReasonAlreadyInProgress,
			Action: req.Action,
			VMID:   req.VMID,
			Message: fmt.Sprintf("A %s for VM %d is still in progress",
				pending, req.VMID),
		}
	}
	g.inflight[key] = req.Action
	g.log.Debug("[guard] %s admitted for key %d", req.Action, key)

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
			g.log.Debug("[guard] %s released for key %d", req.Action, key)
		})
	}
	return release, nil
}

func (g *Guard) validate(req Request, snap fleet.Snapshot, current *api.VMConfig) error {
	switch req.Action {
	case ActionCreate:
		return g.validateCreate(req)
	case ActionDelete:
		return g.validateDelete(req, snap)
	case ActionReconfigure:
		return g.validateReconfigure(req, current)
	case ActionStart, ActionShutdown:
		// Start on an already-running VM is not hard-blocked: the
		// backend is authoritative and treats it as a no-op. The view
		// normally disables the affordance instead.
		return nil
	default:
		return &ValidationError{
			Reason:  ReasonMissingField,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: "Unknown action",
		}
	}
}

func (g *Guard) validateCreate(req Request) error {
	if req.Cluster == "" {
		return &ValidationError{
			Reason:  ReasonMissingField,
			Action:  req.Action,
			Message: "No cluster selected",
		}
	}
	if req.Node == "" {
		return &ValidationError{
			Reason:  ReasonMissingField,
			Action:  req.Action,
			Message: "No target node selected",
		}
	}
	return g.checkBounds(req)
}

// DeletePrompt returns the confirmation wording for deleting a VM. The
// wording escalates for running VMs because deletion force-stops them
// and destroys live data. Shared with callers that run their own
// confirmation UI and submit pre-confirmed requests.
func DeletePrompt(vmid int, name string, running bool) string {
	if running {
		return fmt.Sprintf(
			"VM %d (%s) is RUNNING. Deleting it will force-stop it and destroy its data. Continue?",
			vmid, name)
	}
	return fmt.Sprintf("Delete VM %d? This cannot be undone.", vmid)
}

func (g *Guard) validateDelete(req Request, snap fleet.Snapshot) error {
	if req.Confirmed {
		return nil
	}

	running := false
	name := ""
	if vm, ok := snap.FindVM(req.VMID); ok {
		running = vm.Running()
		name = vm.Name
	}
	message := DeletePrompt(req.VMID, name, running)

	if !g.confirm.PromptConfirm(message) {
		return &ValidationError{
			Reason:  ReasonDeclined,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: "Delete cancelled",
		}
	}
	return nil
}

func (g *Guard) validateReconfigure(req Request, current *api.VMConfig) error {
	if err := g.checkBounds(req); err != nil {
		return err
	}
	if current == nil {
		return &ValidationError{
			Reason:  ReasonMissingField,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: "Current VM configuration unavailable",
		}
	}

	switch {
	case req.DiskGB < current.DiskGB:
		// Disk size is monotonically non-decreasing over a VM's
		// lifetime; a shrink never reaches the backend.
		return &ValidationError{
			Reason: ReasonDiskShrink,
			Action: req.Action,
			VMID:   req.VMID,
			Message: fmt.Sprintf("Disk can't shrink from %s to %s",
				api.FormatDiskSize(current.DiskGB), api.FormatDiskSize(req.DiskGB)),
		}
	case req.DiskGB == current.DiskGB:
		if req.Confirmed {
			return nil
		}
		message := fmt.Sprintf(
			"Disk stays at %s; only vCPU and memory will change. Continue?",
			api.FormatDiskSize(current.DiskGB))
		if !g.confirm.PromptConfirm(message) {
			return &ValidationError{
				Reason:  ReasonDeclined,
				Action:  req.Action,
				VMID:    req.VMID,
				Message: "Reconfigure cancelled",
			}
		}
		return nil
	default:
		// Growing the disk is allowed unconditionally.
		return nil
	}
}

func (g *Guard) checkBounds(req Request) error {
	if req.VCPU < MinVCPU || req.VCPU > MaxVCPU {
		return &ValidationError{
			Reason:  ReasonOutOfRange,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: fmt.Sprintf("vCPU must be %d-%d, got %d", MinVCPU, MaxVCPU, req.VCPU),
		}
	}
	if req.MemoryMB < MinMemoryMB || req.MemoryMB > MaxMemoryMB {
		return &ValidationError{
			Reason:  ReasonOutOfRange,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: fmt.Sprintf("Memory must be %d-%d MB, got %d", MinMemoryMB, MaxMemoryMB, req.MemoryMB),
		}
	}
	if req.DiskGB < MinDiskGB || req.DiskGB > MaxDiskGB {
		return &ValidationError{
			Reason:  ReasonOutOfRange,
			Action:  req.Action,
			VMID:    req.VMID,
			Message: fmt.Sprintf("Disk must be %d-%d GB, got %d", MinDiskGB, MaxDiskGB, req.DiskGB),
		}
	}
	return nil
}
