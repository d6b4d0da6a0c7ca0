package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete crewview configuration
type Config struct {
	Feed       FeedConfig       `mapstructure:"feed"`
	Summary    SummaryConfig    `mapstructure:"summary"`
	TUI        TUIConfig        `mapstructure:"tui"`
	Server     ServerConfig     `mapstructure:"server"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// FeedConfig controls how the status feed is polled
type FeedConfig struct {
	// URL is the base URL of the backend serving /api/run and /api/status
	URL string `mapstructure:"url"`
	// PollIntervalMs is how often /api/status is requested (default: 500)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// MaxFailures is the number of consecutive failed requests tolerated
	// before polling stops (default: 3)
	MaxFailures int `mapstructure:"max_failures"`
	// RequestTimeoutMs bounds each HTTP request (default: 5000)
	RequestTimeoutMs int `mapstructure:"request_timeout_ms"`
}

// SummaryConfig controls the condensed activity view
type SummaryConfig struct {
	// MaxMessagesPerAgent caps summary entries per agent (default: 6)
	MaxMessagesPerAgent int `mapstructure:"max_messages_per_agent"`
	// StartInSummaryView opens the activity panel in summary mode
	StartInSummaryView bool `mapstructure:"start_in_summary_view"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme (default: "default")
	// Options: "default", "monokai", "dracula", "nord"
	Theme string `mapstructure:"theme"`
}

// ServerConfig controls `crewview serve`
type ServerConfig struct {
	// Addr is the listen address (default: ":5000")
	Addr string `mapstructure:"addr"`
	// Command is the crew command run for each /api/run, in argv form
	Command []string `mapstructure:"command"`
	// Dir is the crew command's working directory (default: current directory)
	Dir string `mapstructure:"dir"`
	// EmailSummaryPath is the email artifact the crew writes on success.
	// Relative paths are resolved against Dir.
	EmailSummaryPath string `mapstructure:"email_summary_path"`
	// CORS allows browser clients on other origins (default: true)
	CORS bool `mapstructure:"cors"`
}

// TranscriptConfig controls run transcripts
type TranscriptConfig struct {
	// Enabled writes a JSONL transcript per run (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Dir is where transcripts are written.
	// If empty, defaults to the "transcripts" directory under DataDir().
	Dir string `mapstructure:"dir"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the log directory. If empty, defaults to DataDir().
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:              "http://localhost:5000",
			PollIntervalMs:   500,
			MaxFailures:      3,
			RequestTimeoutMs: 5000,
		},
		Summary: SummaryConfig{
			MaxMessagesPerAgent: 6,
			StartInSummaryView:  false,
		},
		TUI: TUIConfig{
			Theme: "default",
		},
		Server: ServerConfig{
			Addr:             ":5000",
			Command:          []string{},
			EmailSummaryPath: "email_summary.txt",
			CORS:             true,
		},
		Transcript: TranscriptConfig{
			Enabled: false,
			Dir:     "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// PollInterval returns the poll interval as a time.Duration
func (c *FeedConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a time.Duration
func (c *FeedConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// ResolveDir returns the transcript directory, falling back to DataDir().
func (c *TranscriptConfig) ResolveDir() string {
	if c.Dir != "" {
		return expandHome(c.Dir)
	}
	return filepath.Join(DataDir(), "transcripts")
}

// ResolveDir returns the log directory, falling back to DataDir().
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir != "" {
		return expandHome(c.Dir)
	}
	return DataDir()
}

// ResolveEmailPath returns the email artifact path, or "" if none is configured.
func (c *ServerConfig) ResolveEmailPath() string {
	if c.EmailSummaryPath == "" || filepath.IsAbs(c.EmailSummaryPath) {
		return c.EmailSummaryPath
	}
	return filepath.Join(c.Dir, c.EmailSummaryPath)
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Feed defaults
	viper.SetDefault("feed.url", defaults.Feed.URL)
	viper.SetDefault("feed.poll_interval_ms", defaults.Feed.PollIntervalMs)
	viper.SetDefault("feed.max_failures", defaults.Feed.MaxFailures)
	viper.SetDefault("feed.request_timeout_ms", defaults.Feed.RequestTimeoutMs)

	// Summary defaults
	viper.SetDefault("summary.max_messages_per_agent", defaults.Summary.MaxMessagesPerAgent)
	viper.SetDefault("summary.start_in_summary_view", defaults.Summary.StartInSummaryView)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	// Server defaults
	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.command", defaults.Server.Command)
	viper.SetDefault("server.dir", defaults.Server.Dir)
	viper.SetDefault("server.email_summary_path", defaults.Server.EmailSummaryPath)
	viper.SetDefault("server.cors", defaults.Server.CORS)

	// Transcript defaults
	viper.SetDefault("transcript.enabled", defaults.Transcript.Enabled)
	viper.SetDefault("transcript.dir", defaults.Transcript.Dir)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crewview")
	}
	// Fall back to ~/.config/crewview
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crewview"
	}
	return filepath.Join(home, ".config", "crewview")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns where logs and transcripts live by default
func DataDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "crewview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crewview"
	}
	return filepath.Join(home, ".local", "state", "crewview")
}
