package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".fleetdeck.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/fleetdeck"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// TokenEnvVar overrides backend.token when set.
	TokenEnvVar = "FLEETDECK_TOKEN"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'fleetdeck init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .fleetdeck.yaml in current directory
// 3. .fleetdeck.yaml in parent directories (stops at git root or home)
// 4. ~/.config/fleetdeck/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	home, _ := os.UserHomeDir()

	// 2 and 3. Walk up from the current directory
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}

			if dir == home || dir == filepath.Dir(dir) {
				break
			}
			// Stop at a git root; configs above it belong to someone else.
			if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}

	// 4. Global config
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// FindAndLoad resolves the config path and loads it. A missing config is
// an error; commands that work without one use LoadOrDefault.
func FindAndLoad(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'fleetdeck init' to create one")
	}
	return Load(path)
}

// LoadOrDefault loads config from the found path, or returns defaults if
// not found. Useful for 'fleetdeck init'.
func LoadOrDefault() (*Config, error) {
	path, err := Find("")
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults
// merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	// The env var wins over whatever the file says, so tokens don't
	// have to live on disk.
	if token := os.Getenv(TokenEnvVar); token != "" {
		cfg.Backend.Token = token
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults seeds viper so absent keys unmarshal to usable values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("poll.interval", "10s")
	v.SetDefault("ssh.port", 22)
}
