package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "feed.poll_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the built-in TUI themes.
// Must match the palettes in internal/tui/styles (kept separate to avoid an import cycle).
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateFeed()...)
	errors = append(errors, c.validateSummary()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateFeed validates the FeedConfig
func (c *Config) validateFeed() []ValidationError {
	var errors []ValidationError

	if u, err := url.Parse(c.Feed.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "feed.url",
			Value:   c.Feed.URL,
			Message: "must be an absolute http(s) URL",
		})
	}

	// Polling faster than this only burns CPU on both ends
	const minPollIntervalMs = 50
	if c.Feed.PollIntervalMs < minPollIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "feed.poll_interval_ms",
			Value:   c.Feed.PollIntervalMs,
			Message: fmt.Sprintf("must be at least %d", minPollIntervalMs),
		})
	}

	if c.Feed.MaxFailures < 1 {
		errors = append(errors, ValidationError{
			Field:   "feed.max_failures",
			Value:   c.Feed.MaxFailures,
			Message: "must be at least 1",
		})
	}

	if c.Feed.RequestTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "feed.request_timeout_ms",
			Value:   c.Feed.RequestTimeoutMs,
			Message: "must be positive",
		})
	}

	return errors
}

// validateSummary validates the SummaryConfig
func (c *Config) validateSummary() []ValidationError {
	var errors []ValidationError

	const maxMessagesLimit = 50
	if c.Summary.MaxMessagesPerAgent < 1 || c.Summary.MaxMessagesPerAgent > maxMessagesLimit {
		errors = append(errors, ValidationError{
			Field:   "summary.max_messages_per_agent",
			Value:   c.Summary.MaxMessagesPerAgent,
			Message: fmt.Sprintf("must be between 1 and %d", maxMessagesLimit),
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must not be empty",
		})
	}

	for i, arg := range c.Server.Command {
		if i == 0 && strings.TrimSpace(arg) == "" {
			errors = append(errors, ValidationError{
				Field:   "server.command",
				Value:   c.Server.Command,
				Message: "program name must not be empty",
			})
		}
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
