// Package control wires the fleet store, mutation guard, and poller into
// a single controller object. The controller owns all session state
// (selected cluster, snapshot, in-flight marks) and exposes the only
// mutation surface; nothing else writes fleet state.
package control

import (
	"context"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
	"github.com/fleetdeck/fleetdeck/internal/guard"
	"github.com/fleetdeck/fleetdeck/internal/logger"
	"github.com/fleetdeck/fleetdeck/internal/poller"
	"github.com/fleetdeck/fleetdeck/internal/view"
)

// Options configures a Controller.
type Options struct {
	// PollInterval is the periodic refresh cadence. Zero or negative
	// disables polling (one-shot commands don't poll).
	PollInterval time.Duration

	// Logger defaults to a noop logger.
	Logger logger.Logger
}

// Controller is the session-scoped fleet controller.
type Controller struct {
	client api.Client
	view   view.View
	store  *fleet.Store
	guard  *guard.Guard
	poll   *poller.Poller // nil when polling is disabled
	log    logger.Logger
}

// New creates a controller for one session. The view supplies
// confirmation prompts for the guard and receives render/result calls.
func New(client api.Client, v view.View, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	c := &Controller{
		client: client,
		view:   v,
		store:  fleet.NewStore(client, log),
		guard:  guard.New(v, log),
		log:    log,
	}
	if opts.PollInterval > 0 {
		c.poll = poller.New(opts.PollInterval, c.Refresh, log)
	}
	return c
}

// SelectCluster replaces the active cluster, triggers an immediate
// refresh, and binds the poller to the new selection. The refresh error,
// if any, is returned; the selection itself always takes effect.
func (c *Controller) SelectCluster(ctx context.Context, id string) error {
	c.store.SelectCluster(id)
	if c.poll != nil {
		c.poll.Start()
	}
	return c.Refresh(ctx)
}

// DeselectCluster suspends polling and discards the snapshot.
func (c *Controller) DeselectCluster() {
	if c.poll != nil {
		c.poll.Stop()
	}
	c.store.Deselect()
}

// Cluster returns the active cluster id, or "".
func (c *Controller) Cluster() string {
	return c.store.Cluster()
}

// Polling reports whether the periodic refresh task is active.
func (c *Controller) Polling() bool {
	return c.poll != nil && c.poll.Running()
}

// Refresh performs an out-of-band refresh of the fleet snapshot. It does
// not reset the poll timer.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.store.Refresh(ctx)
}

// Snapshot returns the current fleet snapshot.
func (c *Controller) Snapshot() fleet.Snapshot {
	return c.store.Snapshot()
}

// InFlight reports whether a mutation is pending for the given VM id.
func (c *Controller) InFlight(vmid int) bool {
	return c.guard.InFlight(vmid)
}
