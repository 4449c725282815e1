package config

import (
	"fmt"
	"net/url"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

// Validate checks the config for errors and returns structured messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but fleetdeck only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest fleetdeck release")
	}

	if cfg.Backend.URL == "" {
		return errors.New(errors.ErrConfig,
			"No backend URL configured",
			"Set backend.url in your config, e.g. https://panel.example.com/api")
	}
	u, err := url.Parse(cfg.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Backend URL %q is not a valid URL", cfg.Backend.URL),
			"Use a full URL with scheme and host, e.g. https://panel.example.com/api")
	}

	if cfg.Backend.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			"backend.timeout can't be negative", "")
	}
	if cfg.Poll.Interval < 0 {
		return errors.New(errors.ErrConfig,
			"poll.interval can't be negative",
			"Use 0 to disable polling")
	}

	if cfg.DefaultCluster != "" {
		if _, ok := cfg.Clusters[cfg.DefaultCluster]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("default_cluster %q is not listed under clusters", cfg.DefaultCluster),
				"Add it to the clusters section or pick one that's there")
		}
	}

	if cfg.SSH.Port < 0 || cfg.SSH.Port > 65535 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("ssh.port %d is out of range", cfg.SSH.Port), "")
	}

	return nil
}
