// Package fleet holds the last-known snapshot of VMs and nodes for the
// currently selected cluster.
//
// Refreshes are last-writer-wins: every refresh takes a monotonically
// increasing sequence number, and a response is discarded when a newer
// response has already been applied. Selecting a cluster bumps a
// generation counter so responses for superseded selections are discarded
// even if they arrive later, so a user switching clusters mid-flight never
// sees a snapshot for the wrong cluster.
package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/internal/logger"
)

// Store owns the fleet snapshot for one session.
type Store struct {
	client api.Client
	log    logger.Logger

	mu          sync.Mutex
	cluster     string
	generation  uint64
	nextSeq     uint64
	lastApplied uint64
	snap        Snapshot
	stale       bool
}

// NewStore creates a store backed by the given client. A nil logger
// disables logging.
func NewStore(client api.Client, log logger.Logger) *Store {
	if log == nil {
		log = logger.Noop()
	}
	return &Store{client: client, log: log}
}

// SelectCluster replaces the active cluster and clears the snapshot.
// In-flight refreshes for the previous selection are invalidated; the
// caller is expected to trigger an immediate refresh.
func (s *Store) SelectCluster(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cluster = id
	s.generation++
	s.lastApplied = 0
	s.snap = Snapshot{Cluster: id}
	s.stale = false
	s.log.Debug("[fleet] cluster %q selected (generation %d)", id, s.generation)
}

// Deselect clears the active cluster and discards the snapshot.
func (s *Store) Deselect() {
	s.SelectCluster("")
}

// Cluster returns the currently selected cluster id, or "".
func (s *Store) Cluster() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cluster
}

// Snapshot returns a read-only copy of the current snapshot. The Stale
// flag is set when the most recent refresh failed.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap.clone()
	snap.Stale = s.stale
	return snap
}

// Refresh fetches the VM and node lists for the active cluster and
// replaces the snapshot atomically. On failure the prior snapshot is
// retained and an ErrStale error is returned; the store never retries.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	cluster := s.cluster
	if cluster == "" {
		s.mu.Unlock()
		return errors.New(errors.ErrConfig,
			"No cluster selected",
			"Select a cluster before refreshing")
	}
	generation := s.generation
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	vms, err := s.client.ListVMs(ctx, cluster)
	var nodes []api.Node
	if err == nil {
		nodes, err = s.client.ListNodes(ctx, cluster)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		// The cluster changed while this request was in flight. The
		// response belongs to a superseded selection; drop it.
		s.log.Debug("[fleet] discarding refresh seq=%d for superseded cluster %q", seq, cluster)
		return nil
	}

	if seq < s.lastApplied {
		// A newer refresh already landed; the newer request wins whether
		// this one succeeded or failed. A superseded failure must not
		// mark the fresher snapshot stale.
		s.log.Debug("[fleet] discarding refresh seq=%d (already at seq=%d)", seq, s.lastApplied)
		return nil
	}

	if err != nil {
		s.stale = true
		return errors.WrapWithCode(err, errors.ErrStale,
			"Refresh failed, showing last known data",
			"Check the backend and refresh again")
	}

	s.lastApplied = seq
	s.snap = Snapshot{
		Cluster: cluster,
		VMs:     vms,
		Nodes:   nodes,
		Taken:   time.Now(),
	}
	s.stale = false
	s.log.Debug("[fleet] applied refresh seq=%d: %d VMs, %d nodes", seq, len(vms), len(nodes))
	return nil
}
