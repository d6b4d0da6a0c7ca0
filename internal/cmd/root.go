package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/crewview/internal/cmd/config"
	appconfig "github.com/Iron-Ham/crewview/internal/config"
	"github.com/Iron-Ham/crewview/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "crewview",
	Short: "Live workflow view of a supplier-analysis agent crew",
	Long: `Crewview follows a multi-agent supplier-analysis crew while it runs.

It polls the crew's status feed, infers each agent's progress from the
unstructured log stream, and shows the workflow diagram alongside either the
complete activity log or a condensed per-agent summary.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/crewview/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	config.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath("$HOME/.config/crewview")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CREWVIEW")
	// e.g., CREWVIEW_FEED_URL for feed.url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration.
func loadConfig() (*appconfig.Config, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the file logger described by cfg. An empty level from a
// blank --log-level flag falls back to the configured default.
func newLogger(cfg *appconfig.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	level := cfg.Logging.Level
	if level == "" {
		level = appconfig.Default().Logging.Level
	}
	return logging.NewLogger(cfg.Logging.ResolveDir(), level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   true,
	})
}
