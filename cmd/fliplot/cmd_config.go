package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/fliplot/internal/config"
	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configKeys lists the settable keys in display order.
var configKeys = []string{
	"render.width",
	"render.height",
	"render.assets_host",
	"render.png",
	"history.enabled",
	"server.open_browser",
	"logging.level",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change fliplot configuration",
		Long: `View and modify fliplot configuration settings.

Configuration is stored in ~/.fliplot/config.yaml. FLIPLOT_* environment
variables override the file.

Examples:
  fliplot config                         # Show effective settings
  fliplot config get render.width        # Get a specific setting
  fliplot config set render.png true     # Set a setting`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd)
		},
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd)
		},
	}
}

func printConfig(cmd *cobra.Command) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration (~/.fliplot/config.yaml):")
	writeConfigValues(out, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "\nWarning: %v\n", err)
	}
	return nil
}

func writeConfigValues(w io.Writer, cfg *config.FliplotConfig) {
	for _, key := range configKeys {
		value, _ := getConfigValue(cfg, key)
		if s, ok := value.(string); ok && s == "" {
			value = "(default)"
		}
		fmt.Fprintf(w, "  %-20s %v\n", key+":", value)
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			cfg, err := loadFileConfig()
			if err != nil {
				return err
			}
			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.FliplotConfig, key string) (interface{}, bool) {
	switch key {
	case "render.width":
		return cfg.Render.Width, true
	case "render.height":
		return cfg.Render.Height, true
	case "render.assets_host":
		return cfg.Render.AssetsHost, true
	case "render.png":
		return cfg.Render.PNG, true
	case "history.enabled":
		return cfg.History.Enabled, true
	case "server.open_browser":
		return cfg.Server.OpenBrowser, true
	case "logging.level":
		return cfg.Logging.Level, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.FliplotConfig, key, value string) error {
	switch key {
	case "render.width", "render.height":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %s (must be an integer)", key, value)
		}
		if key == "render.width" {
			cfg.Render.Width = n
		} else {
			cfg.Render.Height = n
		}
	case "render.assets_host":
		cfg.Render.AssetsHost = value
	case "render.png":
		cfg.Render.PNG = value == "true" || value == "1"
	case "history.enabled":
		cfg.History.Enabled = value == "true" || value == "1"
	case "server.open_browser":
		cfg.Server.OpenBrowser = value == "true" || value == "1"
	case "logging.level":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.StateDirName, constants.ConfigFileName), nil
}

// loadFileConfig reads the config file without environment overrides so that
// `config set` never persists values that came from the environment.
func loadFileConfig() (*config.FliplotConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

// saveConfig writes the configuration to ~/.fliplot/config.yaml.
func saveConfig(cfg *config.FliplotConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", constants.StateDirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
