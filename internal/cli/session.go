package cli

import (
	"context"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/control"
	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/internal/logger"
	"github.com/fleetdeck/fleetdeck/internal/view"
)

// session wires config, API client, controller, and terminal view for
// one command invocation.
type session struct {
	cfg    *config.Config
	client *api.HTTPClient
	ctrl   *control.Controller
	term   *view.Term
}

// newSession loads the config and builds the controller. Polling is
// only enabled for long-lived surfaces like the panel; one-shot
// commands refresh once and exit.
func newSession(poll bool) (*session, error) {
	cfg, err := config.FindAndLoad(configFlag)
	if err != nil {
		return nil, err
	}

	client := api.NewHTTPClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.Timeout)
	term := view.NewTerm()

	opts := control.Options{Logger: logger.Default()}
	if poll {
		opts.PollInterval = cfg.Poll.Interval
	}

	return &session{
		cfg:    cfg,
		client: client,
		ctrl:   control.New(client, term, opts),
		term:   term,
	}, nil
}

// clusterID resolves which cluster to operate on: the --cluster flag,
// then default_cluster, then a sole configured cluster.
func (s *session) clusterID() (string, error) {
	if clusterFlag != "" {
		return clusterFlag, nil
	}
	if s.cfg.DefaultCluster != "" {
		return s.cfg.DefaultCluster, nil
	}
	if ids := s.cfg.ClusterIDs(); len(ids) == 1 {
		return ids[0], nil
	}
	return "", errors.New(errors.ErrConfig,
		"No cluster selected",
		"Pass --cluster or set default_cluster in your config")
}

// cmdContext returns the context commands run under. Per-request
// timeouts live in the API client.
func cmdContext() context.Context {
	return context.Background()
}

// selectCluster binds the controller to the resolved cluster and loads
// the first snapshot.
func (s *session) selectCluster(ctx context.Context) error {
	id, err := s.clusterID()
	if err != nil {
		return err
	}
	return s.ctrl.SelectCluster(ctx, id)
}
