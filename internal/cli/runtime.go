// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtime.go - Builds the collaborators a monitor runs with.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jeranaias/sessionwatch/internal/config"
	"github.com/jeranaias/sessionwatch/internal/debugsrv"
	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/journal"
	"github.com/jeranaias/sessionwatch/internal/keepalive"
	"github.com/jeranaias/sessionwatch/internal/session"
)

// Runtime holds everything a monitor needs besides its surface and
// activity source.
type Runtime struct {
	Config     *config.Config
	Client     *keepalive.Client
	Journal    *journal.Journal // nil when the journal is disabled
	Debug      *debugsrv.Server // nil unless diagnostics are enabled
	Translator *i18n.Translator
	Logger     *log.Logger

	// Transport replaces the HTTP transport. Tests only.
	Transport http.RoundTripper
}

// LoadConfig loads the config named by --config, or the default one, and
// applies the --locale and --debug flags.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil && !args.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
	}

	if args.Locale != "" {
		cfg.UI.Locale = args.Locale
	}
	if args.Debug {
		cfg.Debug.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewRuntime builds the keep-alive client, the journal and the diagnostics
// server described by cfg.
func NewRuntime(cfg *config.Config, logger *log.Logger, transport http.RoundTripper) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Runtime{
		Config:     cfg,
		Translator: i18n.New(cfg.UI.Locale),
		Logger:     logger,
		Transport:  transport,
	}

	opts := []keepalive.Option{
		keepalive.WithSessionCookie(cfg.Server.SessionCookieName, cfg.Server.SessionCookie),
		keepalive.WithTimeout(cfg.RequestTimeout()),
		keepalive.WithRateLimit(cfg.Server.RequestsPerSecond),
		keepalive.WithLogger(logger),
	}
	if transport != nil {
		opts = append(opts, keepalive.WithTransport(transport))
	}
	client, err := keepalive.New(cfg.Server.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("keep-alive client: %w", err)
	}
	r.Client = client

	if cfg.Journal.Enabled {
		path, err := cfg.JournalPath()
		if err != nil {
			return nil, fmt.Errorf("journal path: %w", err)
		}
		j, err := journal.Open(path)
		if err != nil {
			// The monitor runs without a journal rather than not at all.
			logger.Printf("JOURNAL_DISABLED | %v", err)
		} else {
			r.Journal = j
		}
	}

	if cfg.Debug.Enabled {
		r.Debug = debugsrv.New(debugsrv.WithLogger(logger))
	}
	return r, nil
}

// NewMonitor creates a monitor wired to the runtime's renewer, navigator and
// observers.
func (r *Runtime) NewMonitor(surface session.WarningSurface, activity session.ActivitySource, observers ...session.Observer) (*session.Monitor, error) {
	mcfg := r.Config.MonitorConfig()
	opts := []session.Option{
		session.WithSurface(surface),
		session.WithActivitySource(activity),
		session.WithRenewer(r.Client.Renewer(mcfg.KeepAliveURL)),
		session.WithNavigator(r.Client),
		session.WithLogger(r.Logger),
		session.WithDiagnostics(r.Debug != nil || session.DebugEnabled()),
	}
	if r.Journal != nil {
		opts = append(opts, session.WithObserver(r.Journal.Observer()))
	}
	if r.Debug != nil {
		opts = append(opts, session.WithObserver(r.Debug.Observer()))
	}
	for _, o := range observers {
		opts = append(opts, session.WithObserver(o))
	}

	m, err := session.New(mcfg, opts...)
	if err != nil {
		return nil, err
	}
	if r.Debug != nil {
		if d, ok := m.Diagnostics(); ok {
			r.Debug.Attach(d)
		}
	}
	return m, nil
}

// ServeDebug runs the diagnostics server until ctx is cancelled. It returns
// immediately when diagnostics are disabled.
func (r *Runtime) ServeDebug(ctx context.Context) {
	if r.Debug == nil {
		return
	}
	if err := r.Debug.ListenAndServe(ctx, r.Config.Debug.Addr); err != nil && !errors.Is(err, context.Canceled) {
		r.Logger.Printf("DEBUG_SERVER_ERROR | %v", err)
	}
}

// Close releases the journal.
func (r *Runtime) Close() error {
	if r.Journal != nil {
		return r.Journal.Close()
	}
	return nil
}
