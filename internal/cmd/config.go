package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/botswitch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View botswitch configuration",
	Long: `View botswitch configuration.

Without arguments, displays the effective configuration: defaults, the
config file and BOTSWITCH_* environment variables merged.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/botswitch/config.yaml.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(out, "Warning: configuration is invalid, defaults will be used:\n%v\n\n", err)
	}

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
	}

	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

const defaultConfigContent = `# Botswitch Configuration

app:
  # Name shown in notifications and failure lines
  name: botswitch

# On-screen toggle button
control:
  # Presses shorter than this (milliseconds) are taps; longer ones drag
  tap_threshold_ms: 100
  # Initial button position (column, row)
  start_x: 2
  start_y: 2

# Saved run logs
messagelog:
  # Directory for saved logs (default: <config dir>/logs)
  dir: ""
  # All saved logs are deleted once there are more than this many
  retention_limit: 50

task:
  # YAML step script to run (default: built-in demo)
  file: ""

# Debug logging
logging:
  enabled: true
  level: info
  max_size_mb: 10
  max_backups: 3
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}
	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}
	fmt.Fprintln(out, "\nEnvironment variables: BOTSWITCH_* (e.g., BOTSWITCH_CONTROL_TAP_THRESHOLD_MS)")
	return nil
}
