package control

import (
	"context"
	"fmt"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/guard"
)

// Result is the outcome of a successful mutation, carrying whatever
// structured detail the backend returned for display.
type Result struct {
	Action  guard.Action
	VMID    int
	Node    string
	Message string

	// Create holds the backend's placement result for create actions.
	Create *api.CreateResult
}

// Submit validates and dispatches a single mutation. The flow is:
// guard admits (or rejects locally, never touching the network), exactly
// one backend request is sent, the in-flight mark is released when the
// dispatch settles, and a successful mutation triggers exactly one
// snapshot refresh. There are no automatic retries: a silent retry of
// start or delete could double-apply an action the backend may not treat
// as idempotent.
func (c *Controller) Submit(ctx context.Context, req guard.Request) (*Result, error) {
	snap := c.store.Snapshot()

	if req.Cluster == "" {
		req.Cluster = snap.Cluster
	}

	// Resolve the VM's node from the snapshot for targeted actions.
	if req.Action != guard.ActionCreate && req.Node == "" {
		vm, ok := snap.FindVM(req.VMID)
		if !ok {
			return nil, &guard.ValidationError{
				Reason:  guard.ReasonMissingField,
				Action:  req.Action,
				VMID:    req.VMID,
				Message: fmt.Sprintf("VM %d is not in the current snapshot", req.VMID),
			}
		}
		req.Node = vm.Node
	}

	// Reconfigure compares against the VM's current disk size, so fetch
	// the config first. This is a read; the mutation hasn't started.
	var current *api.VMConfig
	if req.Action == guard.ActionReconfigure {
		cfg, err := c.client.GetVMConfig(ctx, req.Cluster, req.Node, req.VMID)
		if err != nil {
			return nil, err
		}
		current = &cfg
	}

	release, err := c.guard.Admit(req, snap, current)
	if err != nil {
		return nil, err
	}
	// Released unconditionally once the dispatch settles, success or
	// failure, so a lost response can't leave the mark stuck.
	defer release()

	result, err := c.dispatch(ctx, req)
	if err != nil {
		// BackendRejected or TransportError: no refresh, no retry.
		c.log.Debug("[dispatch] %s for VM %d failed: %v", req.Action, req.VMID, err)
		return nil, err
	}

	// Exactly one refresh per successful mutation. A refresh failure is
	// surfaced through the snapshot's stale flag, not as a dispatch
	// failure: the mutation itself succeeded.
	if rerr := c.store.Refresh(ctx); rerr != nil {
		c.log.Warn("[dispatch] post-%s refresh failed: %v", req.Action, rerr)
	}

	return result, nil
}

func (c *Controller) dispatch(ctx context.Context, req guard.Request) (*Result, error) {
	switch req.Action {
	case guard.ActionCreate:
		created, err := c.client.CreateVM(ctx, api.CreateRequest{
			Cluster:  req.Cluster,
			Node:     req.Node,
			Name:     req.Name,
			VCPU:     req.VCPU,
			MemoryMB: req.MemoryMB,
			DiskGB:   req.DiskGB,
		})
		if err != nil {
			return nil, err
		}
		return &Result{
			Action: req.Action,
			VMID:   created.VMID,
			Node:   created.Node,
			Create: &created,
			Message: fmt.Sprintf("VM %d (%s) created on %s",
				created.VMID, created.Name, created.Node),
		}, nil

	case guard.ActionStart:
		if err := c.client.StartVM(ctx, c.controlRequest(req)); err != nil {
			return nil, err
		}
		return c.result(req, "start requested"), nil

	case guard.ActionShutdown:
		if err := c.client.ShutdownVM(ctx, c.controlRequest(req)); err != nil {
			return nil, err
		}
		return c.result(req, "shutdown requested"), nil

	case guard.ActionDelete:
		if err := c.client.DeleteVM(ctx, c.controlRequest(req)); err != nil {
			return nil, err
		}
		return c.result(req, "deleted"), nil

	case guard.ActionReconfigure:
		err := c.client.ConfigureVM(ctx, api.ConfigRequest{
			Cluster:  req.Cluster,
			Node:     req.Node,
			VMID:     req.VMID,
			VCPU:     req.VCPU,
			MemoryMB: req.MemoryMB,
			DiskGB:   req.DiskGB,
		})
		if err != nil {
			return nil, err
		}
		return c.result(req, "reconfigured"), nil

	default:
		return nil, &guard.ValidationError{
			Reason:  guard.ReasonMissingField,
			Action:  req.Action,
			Message: "Unknown action",
		}
	}
}

func (c *Controller) controlRequest(req guard.Request) api.ControlRequest {
	return api.ControlRequest{
		Cluster: req.Cluster,
		Node:    req.Node,
		VMID:    req.VMID,
	}
}

func (c *Controller) result(req guard.Request, verb string) *Result {
	return &Result{
		Action:  req.Action,
		VMID:    req.VMID,
		Node:    req.Node,
		Message: fmt.Sprintf("VM %d %s", req.VMID, verb),
	}
}
