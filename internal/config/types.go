package config

import (
	"sort"
	"time"
)

// CurrentConfigVersion is the latest config schema version.
const CurrentConfigVersion = 1

// Config is the fleetdeck configuration.
type Config struct {
	// Version is the config schema version.
	Version int `mapstructure:"version" yaml:"version"`

	// Backend is the control-plane API endpoint.
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`

	// Clusters maps cluster ids to their display settings. The id is
	// what the backend expects in cluster_name fields.
	Clusters map[string]ClusterConfig `mapstructure:"clusters" yaml:"clusters,omitempty"`

	// DefaultCluster is selected at startup when set. Must name a key
	// in Clusters.
	DefaultCluster string `mapstructure:"default_cluster" yaml:"default_cluster,omitempty"`

	// Poll controls the periodic snapshot refresh.
	Poll PollConfig `mapstructure:"poll" yaml:"poll,omitempty"`

	// SSH holds defaults for 'fleetdeck vm ssh'.
	SSH SSHConfig `mapstructure:"ssh" yaml:"ssh,omitempty"`
}

// BackendConfig describes the control-plane API endpoint.
type BackendConfig struct {
	// URL is the base URL, e.g. https://panel.example.com/api.
	URL string `mapstructure:"url" yaml:"url"`

	// Token is the bearer token. Prefer the FLEETDECK_TOKEN env var
	// over committing a token to the config file.
	Token string `mapstructure:"token" yaml:"token,omitempty"`

	// Timeout bounds each API request.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// ClusterConfig describes one cluster entry.
type ClusterConfig struct {
	// Label is the human-readable name shown in the panel. Defaults to
	// the cluster id.
	Label string `mapstructure:"label" yaml:"label,omitempty"`
}

// PollConfig controls the periodic refresh loop.
type PollConfig struct {
	// Interval between refreshes. Zero disables polling.
	Interval time.Duration `mapstructure:"interval" yaml:"interval,omitempty"`
}

// SSHConfig holds defaults for SSH sessions into VMs.
type SSHConfig struct {
	User string `mapstructure:"user" yaml:"user,omitempty"`
	Port int    `mapstructure:"port" yaml:"port,omitempty"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Poll: PollConfig{
			Interval: 10 * time.Second,
		},
		SSH: SSHConfig{
			Port: 22,
		},
	}
}

// Label returns the display label for a cluster id.
func (c *Config) Label(id string) string {
	if cl, ok := c.Clusters[id]; ok && cl.Label != "" {
		return cl.Label
	}
	return id
}

// ClusterIDs returns the configured cluster ids in sorted order.
func (c *Config) ClusterIDs() []string {
	ids := make([]string, 0, len(c.Clusters))
	for id := range c.Clusters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
