// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sessionwatch configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Session timing and URLs
	Session SessionConfig `toml:"session" json:"session"`

	// Server the monitored session belongs to
	Server ServerConfig `toml:"server" json:"server"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Event journal
	Journal JournalConfig `toml:"journal" json:"journal"`

	// Loopback diagnostics server
	Debug DebugConfig `toml:"debug" json:"debug"`
}

// SessionConfig holds the monitor timings. The field names follow the web
// application's settings: warning_time is the silent phase, logout_time the
// warning phase.
type SessionConfig struct {
	// WarningTimeSecs is the idle time before the warning appears
	WarningTimeSecs int `toml:"warning_time_secs" json:"warning_time_secs"`
	// LogoutTimeSecs is how long the warning stays up before logout
	LogoutTimeSecs int `toml:"logout_time_secs" json:"logout_time_secs"`
	// LogoutURL is navigated to on logout
	LogoutURL string `toml:"logout_url" json:"logout_url"`
	// KeepAliveURL is requested to renew the session
	KeepAliveURL string `toml:"keep_alive_url" json:"keep_alive_url"`
}

// ServerConfig describes the web application.
type ServerConfig struct {
	BaseURL           string  `toml:"base_url" json:"base_url"`
	SessionCookieName string  `toml:"session_cookie_name" json:"session_cookie_name"`
	SessionCookie     string  `toml:"session_cookie" json:"session_cookie,omitempty"`
	TimeoutSecs       int     `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Locale is the BCP 47 tag for UI strings ("en", "es")
	Locale string `toml:"locale" json:"locale"`
	// Mouse enables mouse tracking so motion counts as activity
	Mouse bool `toml:"mouse" json:"mouse"`
}

// JournalConfig controls the SQLite event journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// DebugConfig controls the diagnostics server.
type DebugConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Addr    string `toml:"addr" json:"addr"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Session: SessionConfig{
			WarningTimeSecs: int(session.DefaultSilentDuration / time.Second),  // 28 minutes
			LogoutTimeSecs:  int(session.DefaultWarningDuration / time.Second), // 2 minutes
			LogoutURL:       session.DefaultLogoutURL,
			KeepAliveURL:    session.DefaultKeepAliveURL,
		},

		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:8000",
			SessionCookieName: "sessionid",
			TimeoutSecs:       10,
			RequestsPerSecond: 2,
		},

		UI: UIConfig{
			Locale: "en",
			Mouse:  true,
		},

		Journal: JournalConfig{
			Enabled: true,
			Path:    "~/.sessionwatch/journal.db",
		},

		Debug: DebugConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7787",
		},
	}
}

// MonitorConfig converts the [session] section into a monitor configuration.
func (c *Config) MonitorConfig() session.Config {
	return session.Config{
		SilentDuration:  time.Duration(c.Session.WarningTimeSecs) * time.Second,
		WarningDuration: time.Duration(c.Session.LogoutTimeSecs) * time.Second,
		LogoutURL:       c.Session.LogoutURL,
		KeepAliveURL:    c.Session.KeepAliveURL,
	}
}

// RequestTimeout returns the keep-alive request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// JournalPath returns the journal path with "~" expanded.
func (c *Config) JournalPath() (string, error) {
	return util.ExpandHome(c.Journal.Path)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sessionwatch configuration directory path.
func ConfigDir() (string, error) {
	return util.AppDir()
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600. They may carry the
// session cookie.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	// Defaults, with any load error for informational purposes.
	return cfg, loadErr
}

// finish applies env overrides and defaults, then validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// fillDefaults fills in any missing string values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Session.LogoutURL == "" {
		cfg.Session.LogoutURL = defaults.Session.LogoutURL
	}
	if cfg.Session.KeepAliveURL == "" {
		cfg.Session.KeepAliveURL = defaults.Session.KeepAliveURL
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaults.Server.BaseURL
	}
	if cfg.Server.SessionCookieName == "" {
		cfg.Server.SessionCookieName = defaults.Server.SessionCookieName
	}
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = defaults.UI.Locale
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = defaults.Journal.Path
	}
	if cfg.Debug.Addr == "" {
		cfg.Debug.Addr = defaults.Debug.Addr
	}

	return nil
}

// SetDefaults fills zero numeric values and then any missing strings.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Session.WarningTimeSecs == 0 {
		c.Session.WarningTimeSecs = defaults.Session.WarningTimeSecs
	}
	if c.Session.LogoutTimeSecs == 0 {
		c.Session.LogoutTimeSecs = defaults.Session.LogoutTimeSecs
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.RequestsPerSecond == 0 {
		c.Server.RequestsPerSecond = defaults.Server.RequestsPerSecond
	}

	fillDefaults(c)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// EncodeTOML renders cfg as a commented TOML document.
func EncodeTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# sessionwatch configuration file")
	fmt.Fprintln(&buf, "# Generated by sessionwatch - edit with care")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# warning_time_secs: idle seconds before the warning appears")
	fmt.Fprintln(&buf, "# logout_time_secs:  seconds the warning stays up before logout")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := EncodeTOML(cfg)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// maxPhaseSecs caps warning_time_secs and logout_time_secs at one day.
const maxPhaseSecs = 24 * 60 * 60

// supportedLocales are the locales with a message catalog.
var supportedLocales = map[string]bool{"en": true, "es": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Session
	// ==========================================================================

	if c.Session.WarningTimeSecs < 1 || c.Session.WarningTimeSecs > maxPhaseSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_time_secs",
			Message: fmt.Sprintf("must be 1-%d seconds, got %d", maxPhaseSecs, c.Session.WarningTimeSecs),
		})
	}
	if c.Session.LogoutTimeSecs < 1 || c.Session.LogoutTimeSecs > maxPhaseSecs {
		errs = append(errs, ValidationError{
			Field:   "session.logout_time_secs",
			Message: fmt.Sprintf("must be 1-%d seconds, got %d", maxPhaseSecs, c.Session.LogoutTimeSecs),
		})
	}
	if c.Session.LogoutURL == "" {
		errs = append(errs, ValidationError{Field: "session.logout_url", Message: "must not be empty"})
	} else if _, err := url.Parse(c.Session.LogoutURL); err != nil {
		errs = append(errs, ValidationError{Field: "session.logout_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	}
	if c.Session.KeepAliveURL == "" {
		errs = append(errs, ValidationError{Field: "session.keep_alive_url", Message: "must not be empty"})
	} else if _, err := url.Parse(c.Session.KeepAliveURL); err != nil {
		errs = append(errs, ValidationError{Field: "session.keep_alive_url", Message: fmt.Sprintf("invalid URL: %v", err)})
	}

	// ==========================================================================
	// Server
	// ==========================================================================

	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", c.Server.BaseURL),
		})
	}
	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.Server.TimeoutSecs),
		})
	}
	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.requests_per_second",
			Message: "cannot be negative",
		})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	if !supportedLocales[strings.ToLower(baseLanguage(c.UI.Locale))] {
		errs = append(errs, ValidationError{
			Field:   "ui.locale",
			Message: fmt.Sprintf("unsupported locale '%s', must be one of: en, es", c.UI.Locale),
		})
	}

	// ==========================================================================
	// Debug
	// ==========================================================================

	if c.Debug.Enabled && !IsLoopback(c.Debug.Addr) {
		errs = append(errs, ValidationError{
			Field:   "debug.addr",
			Message: fmt.Sprintf("diagnostics only listen on loopback, got %q", c.Debug.Addr),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// baseLanguage strips region and script subtags: "es-MX" -> "es".
func baseLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		return tag[:i]
	}
	return tag
}

// IsLoopback reports whether addr (host:port) names a loopback host.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SESSIONWATCH_BASE_URL: overrides server.base_url
//   - SESSIONWATCH_SESSION_COOKIE: overrides server.session_cookie
//   - SESSIONWATCH_LOCALE: overrides ui.locale
//   - SESSIONWATCH_DEBUG: "1" or "true" enables the diagnostics server
//   - SESSIONWATCH_DEBUG_ADDR: overrides debug.addr
//   - SESSIONWATCH_WARNING_SECS: overrides session.warning_time_secs
//   - SESSIONWATCH_LOGOUT_SECS: overrides session.logout_time_secs
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SESSIONWATCH_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}

	if v := os.Getenv("SESSIONWATCH_SESSION_COOKIE"); v != "" {
		c.Server.SessionCookie = v
	}

	if v := os.Getenv("SESSIONWATCH_LOCALE"); v != "" {
		c.UI.Locale = v
	}

	if os.Getenv(session.DebugEnvVar) != "" {
		c.Debug.Enabled = session.DebugEnabled()
	}

	if v := os.Getenv("SESSIONWATCH_DEBUG_ADDR"); v != "" {
		c.Debug.Addr = v
	}

	if v := os.Getenv("SESSIONWATCH_WARNING_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.WarningTimeSecs = secs
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SESSIONWATCH_WARNING_SECS=%q: %v\n", v, err)
		}
	}

	if v := os.Getenv("SESSIONWATCH_LOGOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.LogoutTimeSecs = secs
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SESSIONWATCH_LOGOUT_SECS=%q: %v\n", v, err)
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "session.logout_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.locale").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// name: "keep_alive_url" -> "KeepAliveUrl" (matched case-insensitively).
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"session.warning_time_secs",
		"session.logout_time_secs",
		"session.logout_url",
		"session.keep_alive_url",
		"server.base_url",
		"server.session_cookie_name",
		"server.session_cookie",
		"server.timeout_secs",
		"server.requests_per_second",
		"ui.locale",
		"ui.mouse",
		"journal.enabled",
		"journal.path",
		"debug.enabled",
		"debug.addr",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with the session cookie masked.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Server.SessionCookie != "" {
		safe.Server.SessionCookie = "[REDACTED]"
	}
	return safe
}

// String returns the redacted config as JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}
