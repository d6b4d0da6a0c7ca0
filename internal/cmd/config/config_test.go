package config

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/crewview/internal/config"
)

// setupViper isolates viper and the config directory for one test.
func setupViper(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	viper.Reset()
	appconfig.SetDefaults()
	t.Cleanup(viper.Reset)
	return dir
}

func TestRunConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
		wantIn  string
	}{
		{name: "theme", key: "tui.theme", value: "nord", wantIn: "theme: nord"},
		{name: "int", key: "summary.max_messages_per_agent", value: "8", wantIn: "max_messages_per_agent: 8"},
		{name: "bool", key: "server.cors", value: "false", wantIn: "cors: false"},
		{name: "unknown key", key: "pr.draft", value: "true", wantErr: "unknown configuration key"},
		{name: "bad theme", key: "tui.theme", value: "solarized", wantErr: "invalid theme"},
		{name: "bad bool", key: "server.cors", value: "maybe", wantErr: "expected true or false"},
		{name: "bad level", key: "logging.level", value: "trace", wantErr: "Valid options"},
		{name: "fails validation", key: "feed.poll_interval_ms", value: "10", wantErr: "feed.poll_interval_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupViper(t)
			var buf bytes.Buffer
			configSetCmd.SetOut(&buf)
			t.Cleanup(func() { configSetCmd.SetOut(nil) })

			err := runConfigSet(configSetCmd, []string{tt.key, tt.value})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("runConfigSet() error = %v, want containing %q", err, tt.wantErr)
				}
				if _, statErr := os.Stat(appconfig.ConfigFile()); statErr == nil {
					t.Error("config file written despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("runConfigSet() error = %v", err)
			}
			data, err := os.ReadFile(appconfig.ConfigFile())
			if err != nil {
				t.Fatalf("reading config file: %v", err)
			}
			if !strings.Contains(string(data), tt.wantIn) {
				t.Errorf("config file missing %q:\n%s", tt.wantIn, data)
			}
		})
	}
}

func TestRunConfigInit(t *testing.T) {
	setupViper(t)
	configInitCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() { configInitCmd.SetOut(nil) })

	if err := runConfigInit(configInitCmd, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	viper.SetConfigFile(appconfig.ConfigFile())
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	cfg, err := appconfig.Load()
	if err != nil {
		t.Fatalf("generated config does not validate: %v", err)
	}
	if cfg.Feed.URL != appconfig.Default().Feed.URL {
		t.Errorf("feed.url = %q, want default", cfg.Feed.URL)
	}

	if err := runConfigInit(configInitCmd, nil); err == nil {
		t.Error("second init should fail when the file exists")
	}
}

func TestRunConfigReset(t *testing.T) {
	setupViper(t)
	viper.Set("tui.theme", "dracula")
	configResetCmd.SetOut(&bytes.Buffer{})
	t.Cleanup(func() { configResetCmd.SetOut(nil) })

	if err := runConfigReset(configResetCmd, []string{"tui.theme"}); err != nil {
		t.Fatalf("runConfigReset() error = %v", err)
	}
	if got := viper.GetString("tui.theme"); got != "default" {
		t.Errorf("tui.theme = %q, want default", got)
	}
	if err := runConfigReset(configResetCmd, []string{"nope"}); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRunConfigShow(t *testing.T) {
	setupViper(t)
	var buf bytes.Buffer
	configShowCmd.SetOut(&buf)
	t.Cleanup(func() { configShowCmd.SetOut(nil) })

	if err := runConfigShow(configShowCmd, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}
	for _, want := range []string{"using defaults", "poll_interval_ms: 500", "theme: default"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, buf.String())
		}
	}
}
