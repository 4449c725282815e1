package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fleetdeck/fleetdeck/internal/config"
	"github.com/fleetdeck/fleetdeck/internal/errors"
)

var (
	initBackendFlag string
	initClusterFlag string
	initForce       bool
)

// initCmd creates a new .fleetdeck.yaml configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .fleetdeck.yaml configuration",
	Long: `Initialize a fleetdeck configuration file.

Creates a .fleetdeck.yaml in the current directory. Without flags,
interactive prompts walk through the backend URL and first cluster.

The API token is read from the FLEETDECK_TOKEN environment variable at
runtime; it is never written to the file by this command.

Examples:
  fleetdeck init
  fleetdeck init --backend https://panel.example.com/api --cluster-id pve-east
  fleetdeck init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			BackendURL: initBackendFlag,
			Cluster:    initClusterFlag,
			Overwrite:  initForce,
		})
	},
}

// InitOptions holds options for the init command.
type InitOptions struct {
	BackendURL string // pre-specified backend URL; skips prompting
	Cluster    string // pre-specified first cluster id
	Overwrite  bool   // overwrite existing config without asking
}

// Init creates a new .fleetdeck.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)
	nonInteractive := opts.BackendURL != ""

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if nonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	backendURL := opts.BackendURL
	clusterID := opts.Cluster
	clusterLabel := ""

	if !nonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Backend URL").
					Description("The control-plane API endpoint").
					Placeholder("https://panel.example.com/api").
					Value(&backendURL).
					Validate(validateBackendURL),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Cluster id").
					Description("The cluster name the backend expects").
					Placeholder("pve-east").
					Value(&clusterID).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("cluster id is required")
						}
						if strings.ContainsAny(s, " \t\n") {
							return fmt.Errorf("cluster id cannot contain whitespace")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Cluster label (optional)").
					Description("Display name shown in the panel").
					Placeholder("East datacenter (leave empty to use the id)").
					Value(&clusterLabel),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --backend and --cluster to skip the prompts")
		}
	} else {
		if err := validateBackendURL(backendURL); err != nil {
			return errors.New(errors.ErrConfig, err.Error(),
				"Use a full URL with scheme and host, e.g. https://panel.example.com/api")
		}
		if clusterID == "" {
			return errors.New(errors.ErrConfig,
				"Cluster id is required in non-interactive mode",
				"Pass --cluster or run interactively")
		}
	}

	doc := initDocument{
		Version: config.CurrentConfigVersion,
		Backend: initBackend{
			URL:     strings.TrimSpace(backendURL),
			Timeout: "15s",
		},
		Clusters: map[string]initCluster{
			strings.TrimSpace(clusterID): {Label: strings.TrimSpace(clusterLabel)},
		},
		DefaultCluster: strings.TrimSpace(clusterID),
		Poll:           initPoll{Interval: "10s"},
	}

	if err := writeConfigFile(configPath, doc); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote %s\n", configPath)
	fmt.Printf("  Set your API token: export %s=<token>\n", config.TokenEnvVar)
	fmt.Println("  Then try: fleetdeck panel")
	return nil
}

func validateBackendURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("not a valid URL (need scheme and host)")
	}
	return nil
}

// initDocument mirrors config.Config with durations as human-readable
// strings, so the generated YAML says "15s" instead of nanoseconds.
type initDocument struct {
	Version        int                    `yaml:"version"`
	Backend        initBackend            `yaml:"backend"`
	Clusters       map[string]initCluster `yaml:"clusters"`
	DefaultCluster string                 `yaml:"default_cluster"`
	Poll           initPoll               `yaml:"poll"`
}

type initBackend struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type initCluster struct {
	Label string `yaml:"label,omitempty"`
}

type initPoll struct {
	Interval string `yaml:"interval"`
}

// writeConfigFile marshals the document and writes it with a short header.
func writeConfigFile(path string, doc initDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't serialize the config", "")
	}

	var b strings.Builder
	b.WriteString("# fleetdeck configuration\n")
	b.WriteString("# Token comes from the " + config.TokenEnvVar + " env var; avoid committing it here.\n")
	b.Write(data)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", path),
			"Check directory permissions")
	}
	return nil
}

func init() {
	initCmd.Flags().StringVar(&initBackendFlag, "backend", "", "backend URL (skips prompts)")
	initCmd.Flags().StringVar(&initClusterFlag, "cluster-id", "", "first cluster id")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}
