// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/util"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(util.HomeEnvVar, dir)
	for _, key := range []string{
		"SESSIONWATCH_BASE_URL", "SESSIONWATCH_SESSION_COOKIE", "SESSIONWATCH_LOCALE",
		session.DebugEnvVar, "SESSIONWATCH_DEBUG_ADDR",
		"SESSIONWATCH_WARNING_SECS", "SESSIONWATCH_LOGOUT_SECS",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1680, cfg.Session.WarningTimeSecs)
	assert.Equal(t, 120, cfg.Session.LogoutTimeSecs)
	assert.Equal(t, "/logout/", cfg.Session.LogoutURL)
	assert.Equal(t, "/dashboard/", cfg.Session.KeepAliveURL)
	assert.Equal(t, "sessionid", cfg.Server.SessionCookieName)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.Debug.Enabled)
	assert.NoError(t, cfg.Validate())

	mc := cfg.MonitorConfig()
	assert.Equal(t, session.DefaultConfig(), mc)
	assert.Equal(t, 30*time.Minute, mc.TotalDuration())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero warning", func(c *Config) { c.Session.WarningTimeSecs = 0 }, "session.warning_time_secs"},
		{"negative logout", func(c *Config) { c.Session.LogoutTimeSecs = -5 }, "session.logout_time_secs"},
		{"warning over a day", func(c *Config) { c.Session.WarningTimeSecs = maxPhaseSecs + 1 }, "session.warning_time_secs"},
		{"huge logout", func(c *Config) { c.Session.LogoutTimeSecs = math.MaxInt32 }, "session.logout_time_secs"},
		{"empty logout url", func(c *Config) { c.Session.LogoutURL = "" }, "session.logout_url"},
		{"relative base", func(c *Config) { c.Server.BaseURL = "/app" }, "server.base_url"},
		{"ftp base", func(c *Config) { c.Server.BaseURL = "ftp://host" }, "server.base_url"},
		{"huge timeout", func(c *Config) { c.Server.TimeoutSecs = 1000 }, "server.timeout_secs"},
		{"locale", func(c *Config) { c.UI.Locale = "fr" }, "ui.locale"},
		{"public debug", func(c *Config) { c.Debug.Enabled = true; c.Debug.Addr = "0.0.0.0:7787" }, "debug.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}

	cfg := Default()
	cfg.Session.WarningTimeSecs = maxPhaseSecs
	cfg.Session.LogoutTimeSecs = maxPhaseSecs
	cfg.UI.Locale = "es-MX"
	cfg.Debug.Enabled = true
	cfg.Debug.Addr = "localhost:9000"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SESSIONWATCH_BASE_URL", "https://intranet.example.com")
	t.Setenv("SESSIONWATCH_SESSION_COOKIE", "s3cret")
	t.Setenv("SESSIONWATCH_LOCALE", "es")
	t.Setenv(session.DebugEnvVar, "1")
	t.Setenv("SESSIONWATCH_DEBUG_ADDR", "127.0.0.1:9999")
	t.Setenv("SESSIONWATCH_WARNING_SECS", "5")
	t.Setenv("SESSIONWATCH_LOGOUT_SECS", "bogus")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://intranet.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "s3cret", cfg.Server.SessionCookie)
	assert.Equal(t, "es", cfg.UI.Locale)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.Debug.Addr)
	assert.Equal(t, 5, cfg.Session.WarningTimeSecs)
	assert.Equal(t, 120, cfg.Session.LogoutTimeSecs, "unparsable override is ignored")
}

func TestConfig_TOMLRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Session.WarningTimeSecs = 600
	cfg.Session.KeepAliveURL = "/api/ping/"
	cfg.Server.SessionCookie = "abc"
	cfg.Journal.Enabled = false
	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# sessionwatch configuration file"))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Load finds the same file in the config directory.
	fromDir, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 600, fromDir.Session.WarningTimeSecs)
	assert.False(t, fromDir.Journal.Enabled)
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\nlogout_time_secs = 30\n"), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Session.LogoutTimeSecs)
	assert.Equal(t, 1680, cfg.Session.WarningTimeSecs)
	assert.Equal(t, "/logout/", cfg.Session.LogoutURL)
	assert.True(t, cfg.UI.Mouse)
}

func TestConfig_LoadJSON(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"session":{"warning_time_secs":90},"ui":{"locale":"es"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Session.WarningTimeSecs)
	assert.Equal(t, "es", cfg.UI.Locale)
}

func TestConfig_LoadInvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session\nbroken"), 0600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)

	// Load falls back to defaults and reports the error.
	cfg, err := Load()
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1680, cfg.Session.WarningTimeSecs)
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("session.keep_alive_url")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/", v)

	require.NoError(t, cfg.Set("session.warning_time_secs", "300"))
	assert.Equal(t, 300, cfg.Session.WarningTimeSecs)

	require.NoError(t, cfg.Set("ui.mouse", "false"))
	assert.False(t, cfg.UI.Mouse)

	require.NoError(t, cfg.Set("server.requests_per_second", "0.5"))
	assert.Equal(t, 0.5, cfg.Server.RequestsPerSecond)

	_, err = cfg.Get("session.nope")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("ui.locale.deeper", "x"))

	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_StringRedactsCookie(t *testing.T) {
	cfg := Default()
	cfg.Server.SessionCookie = "super-secret"

	out := cfg.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Equal(t, "super-secret", cfg.Server.SessionCookie)
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("127.0.0.1:7787"))
	assert.True(t, IsLoopback("[::1]:7787"))
	assert.True(t, IsLoopback("localhost:80"))
	assert.False(t, IsLoopback("0.0.0.0:7787"))
	assert.False(t, IsLoopback(":7787"))
	assert.False(t, IsLoopback("10.1.2.3:7787"))
	assert.False(t, IsLoopback("127.0.0.1"))
}
