// Package poller drives periodic fleet refreshes while a cluster is
// selected. It is a cancellable scheduled task: starting and stopping it
// is a side effect of cluster selection, not a free-running global timer.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/logger"
)

// DefaultInterval matches the refresh cadence of the original panel.
const DefaultInterval = 10 * time.Second

// Poller repeatedly invokes a refresh function on a fixed interval.
// Manual refreshes happen out-of-band and never reset the timer.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context) error
	log      logger.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// New creates a poller. A zero interval falls back to DefaultInterval.
func New(interval time.Duration, refresh func(context.Context) error, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{
		interval: interval,
		refresh:  refresh,
		log:      log,
	}
}

// Start begins periodic refreshing. Starting an already-running poller is
// a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}

	stop := make(chan struct{})
	p.stop = stop

	go p.run(stop)
	p.log.Debug("[poller] started, interval %s", p.interval)
}

// Stop suspends periodic refreshing. Stopping an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
	p.log.Debug("[poller] stopped")
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Poller) run(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A failed poll is terminal for that cycle; the next tick
			// tries again, there is no backoff or catch-up.
			if err := p.refresh(context.Background()); err != nil {
				p.log.Debug("[poller] refresh failed: %v", err)
			}
		}
	}
}
