// Package config provides CLI commands for managing crewview configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/crewview/internal/config"
	"github.com/Iron-Ham/crewview/internal/tui/styles"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify crewview configuration",
	Long: `View or modify crewview configuration.

Use 'config show' to display the effective configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  crewview config set feed.url http://crew.internal:5000
  crewview config set summary.max_messages_per_agent 8
  crewview config set tui.theme nord

Valid keys:
  feed.url                        - Backend base URL
  feed.poll_interval_ms           - Status poll interval in milliseconds
  feed.max_failures               - Consecutive failures before polling stops
  feed.request_timeout_ms         - Per-request timeout in milliseconds
  summary.max_messages_per_agent  - Summary entries per agent (1-50)
  summary.start_in_summary_view   - Open in the summary view (true/false)
  tui.theme                       - Color theme: default, monokai, dracula, nord
  server.addr                     - Listen address for 'crewview serve'
  server.dir                      - Working directory of the crew command
  server.email_summary_path       - Email artifact written by the crew
  server.cors                     - Allow cross-origin clients (true/false)
  transcript.enabled              - Write run transcripts (true/false)
  transcript.dir                  - Transcript directory
  logging.enabled                 - Write the debug log (true/false)
  logging.level                   - debug, info, warn, error`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/crewview/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in your editor",
	Long: `Open the config file in your preferred editor.

Uses $EDITOR environment variable, or falls back to common editors (vim, nano, vi).
If no config file exists, creates one with default values first.`,
	RunE: runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  crewview config reset            # Reset all to defaults
  crewview config reset tui.theme  # Reset only tui.theme to default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyKind is the value type of a settable key.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
	kindTheme
	kindLevel
)

var settableKeys = map[string]keyKind{
	"feed.url":                       kindString,
	"feed.poll_interval_ms":          kindInt,
	"feed.max_failures":              kindInt,
	"feed.request_timeout_ms":        kindInt,
	"summary.max_messages_per_agent": kindInt,
	"summary.start_in_summary_view":  kindBool,
	"tui.theme":                      kindTheme,
	"server.addr":                    kindString,
	"server.dir":                     kindString,
	"server.email_summary_path":      kindString,
	"server.cors":                    kindBool,
	"transcript.enabled":             kindBool,
	"transcript.dir":                 kindString,
	"logging.enabled":                kindBool,
	"logging.level":                  kindLevel,
}

// defaultValues returns the default of every settable key.
func defaultValues() map[string]any {
	d := appconfig.Default()
	return map[string]any{
		"feed.url":                       d.Feed.URL,
		"feed.poll_interval_ms":          d.Feed.PollIntervalMs,
		"feed.max_failures":              d.Feed.MaxFailures,
		"feed.request_timeout_ms":        d.Feed.RequestTimeoutMs,
		"summary.max_messages_per_agent": d.Summary.MaxMessagesPerAgent,
		"summary.start_in_summary_view":  d.Summary.StartInSummaryView,
		"tui.theme":                      d.TUI.Theme,
		"server.addr":                    d.Server.Addr,
		"server.dir":                     d.Server.Dir,
		"server.email_summary_path":      d.Server.EmailSummaryPath,
		"server.cors":                    d.Server.CORS,
		"transcript.enabled":             d.Transcript.Enabled,
		"transcript.dir":                 d.Transcript.Dir,
		"logging.enabled":                d.Logging.Enabled,
		"logging.level":                  d.Logging.Level,
	}
}

// parseValue converts a command-line value to the key's type.
func parseValue(key, value string) (any, error) {
	kind, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'crewview config set --help' to see valid keys", key)
	}
	switch kind {
	case kindTheme:
		if !styles.IsValidTheme(value) {
			return nil, fmt.Errorf("invalid theme: %s\nValid options: %s",
				value, strings.Join(styles.BuiltinThemes(), ", "))
		}
		return value, nil
	case kindLevel:
		if !slices.Contains(appconfig.ValidLogLevels(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidLogLevels(), ", "))
		}
		return value, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	}
	return value, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintf(out, "# Config file: (none - using defaults)\n")
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	viper.Set(key, typed)
	if errs := validateCurrent(); len(errs) > 0 {
		return appconfig.ValidationErrors(errs)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\nConfig saved to %s\n", key, typed, configFile)
	return nil
}

// validateCurrent validates the configuration viper currently holds.
func validateCurrent() []appconfig.ValidationError {
	var cfg appconfig.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return []appconfig.ValidationError{{Field: "config", Message: err.Error()}}
	}
	return cfg.Validate()
}

func writeConfig() (string, error) {
	if err := os.MkdirAll(appconfig.ConfigDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

const defaultConfigContent = `# crewview configuration

# Status feed of the crew backend
feed:
  # Base URL serving /api/run and /api/status
  url: http://localhost:5000
  # How often /api/status is polled, in milliseconds
  poll_interval_ms: 500
  # Consecutive failed requests before polling stops
  max_failures: 3
  # Per-request timeout in milliseconds
  request_timeout_ms: 5000

# Condensed activity view
summary:
  # Entries kept per agent
  max_messages_per_agent: 6
  # Open the activity panel in the summary view
  start_in_summary_view: false

# Terminal UI
tui:
  # Options: default, monokai, dracula, nord
  theme: default

# 'crewview serve'
server:
  addr: ":5000"
  # Crew command in argv form, e.g. [python, -m, crew.main]
  command: []
  # Working directory of the crew command (default: current directory)
  dir: ""
  # Email the crew writes on success, relative to dir
  email_summary_path: email_summary.txt
  cors: true

# JSONL transcripts of each run, for 'crewview replay --transcript'
transcript:
  enabled: false
  # Default: ~/.local/state/crewview/transcripts
  dir: ""

# Debug log
logging:
  enabled: true
  # Options: debug, info, warn, error
  level: info
  # Default: ~/.local/state/crewview
  dir: ""
  max_size_mb: 10
  max_backups: 3
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'crewview config set' to modify values", configFile)
	}
	if err := os.MkdirAll(appconfig.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. $HOME/.config/crewview/config.yaml\n")
	fmt.Fprintf(out, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: CREWVIEW_* (e.g., CREWVIEW_FEED_URL)")
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "nano", "vi"} {
			if _, err := execLookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, configFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	defaults := defaultValues()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		keys := make([]string, 0, len(defaults))
		for k := range defaults {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			viper.Set(k, defaults[k])
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		value, ok := defaults[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'crewview config set --help' to see valid keys", key)
		}
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}
