// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default timings, matching the web application's session lifetime of 30
// minutes: 28 silent plus 2 of warning.
const (
	DefaultSilentDuration  = 28 * time.Minute
	DefaultWarningDuration = 2 * time.Minute
	DefaultLogoutURL       = "/logout/"
	DefaultKeepAliveURL    = "/dashboard/"

	// navigateTimeout bounds the logout navigation.
	navigateTimeout = 15 * time.Second

	// renewTimeout bounds one keep-alive request.
	renewTimeout = 30 * time.Second

	countdownInterval = time.Second
	eventBuffer       = 64
)

var (
	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = errors.New("invalid session monitor config")
)

// =============================================================================
// CONFIG
// =============================================================================

// Config is the immutable configuration of a Monitor.
type Config struct {
	// SilentDuration is the idle time before the warning is shown.
	SilentDuration time.Duration `json:"silent_duration"`

	// WarningDuration is how long the warning stays up before logout.
	WarningDuration time.Duration `json:"warning_duration"`

	// LogoutURL is the navigation target on logout.
	LogoutURL string `json:"logout_url"`

	// KeepAliveURL is requested to renew the session.
	KeepAliveURL string `json:"keep_alive_url"`
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		SilentDuration:  DefaultSilentDuration,
		WarningDuration: DefaultWarningDuration,
		LogoutURL:       DefaultLogoutURL,
		KeepAliveURL:    DefaultKeepAliveURL,
	}
}

// Validate checks that every field is usable.
func (c Config) Validate() error {
	switch {
	case c.SilentDuration <= 0:
		return fmt.Errorf("%w: silent duration must be positive, got %v", ErrInvalidConfig, c.SilentDuration)
	case c.WarningDuration <= 0:
		return fmt.Errorf("%w: warning duration must be positive, got %v", ErrInvalidConfig, c.WarningDuration)
	case c.LogoutURL == "":
		return fmt.Errorf("%w: logout URL is required", ErrInvalidConfig)
	case c.KeepAliveURL == "":
		return fmt.Errorf("%w: keep-alive URL is required", ErrInvalidConfig)
	}
	return nil
}

// TotalDuration is the idle time after which an unattended session logs out.
func (c Config) TotalDuration() time.Duration {
	return c.SilentDuration + c.WarningDuration
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithSurface sets the warning surface.
func WithSurface(s WarningSurface) Option {
	return func(m *Monitor) { m.surface = s }
}

// WithRenewer sets the keep-alive implementation.
func WithRenewer(r Renewer) Option {
	return func(m *Monitor) { m.renewer = r }
}

// WithNavigator sets the logout navigation implementation.
func WithNavigator(n Navigator) Option {
	return func(m *Monitor) { m.navigator = n }
}

// WithActivitySource subscribes the Monitor to src on Start.
func WithActivitySource(src ActivitySource) Option {
	return func(m *Monitor) { m.activity = src }
}

// WithObserver adds an event observer.
func WithObserver(o Observer) Option {
	return func(m *Monitor) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *log.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithDiagnostics enables the Diagnostics handle.
func WithDiagnostics(enabled bool) Option {
	return func(m *Monitor) { m.diagnostics = enabled }
}

// WithID overrides the generated monitor ID.
func WithID(id string) Option {
	return func(m *Monitor) { m.id = id }
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor is the session timeout state machine.
type Monitor struct {
	id  string
	cfg Config

	clock       Clock
	surface     WarningSurface
	renewer     Renewer
	navigator   Navigator
	activity    ActivitySource
	observers   []Observer
	logger      *log.Logger
	diagnostics bool

	events   chan func()
	quit     chan struct{}
	loopDone chan struct{}

	closeOnce sync.Once

	// navigating tracks logout navigations; Close waits for them.
	navigating sync.WaitGroup

	// Everything below is owned by the loop goroutine.
	phase          Phase
	epoch          uint64
	remaining      int
	renewing       bool
	started        bool
	closed         bool
	silentTimer    Timer
	warningTimer   Timer
	countdownTimer Timer
	unsubscribe    func()

	// last is the snapshot published after Close.
	lastMu sync.RWMutex
	last   State
}

// New creates a Monitor and starts its event loop. Call Start to arm it and
// Close to release it.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		id:       uuid.New().String(),
		cfg:      cfg,
		clock:    SystemClock{},
		logger:   log.Default(),
		events:   make(chan func(), eventBuffer),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.surface == nil {
		m.surface = &noopSurface{}
	}

	go m.run()
	return m, nil
}

// ID returns the monitor's unique identifier.
func (m *Monitor) ID() string {
	return m.id
}

// Config returns the monitor configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Start mounts the warning surface, subscribes to activity and arms the silent
// timer. Calling it again has no effect.
func (m *Monitor) Start() {
	m.call(func() {
		if m.started || m.closed {
			return
		}
		m.started = true

		controls := Controls{Continue: m.Continue, Logout: m.LogoutNow}
		if m.surface.Mount(controls) {
			m.logEvent("SURFACE_ALREADY_MOUNTED", "")
		}

		if m.activity != nil {
			m.unsubscribe = m.activity.Subscribe(m.RecordActivity)
		}

		m.logEvent("MONITOR_STARTED", fmt.Sprintf("warning_after=%v logout_after=%v",
			m.cfg.SilentDuration, m.cfg.TotalDuration()))

		m.armSilent()
		m.emit(EventStarted, "")
	})
}

// RecordActivity feeds one user activity event. It re-arms the silent timer in
// the idle phase and is ignored otherwise.
func (m *Monitor) RecordActivity(kind ActivityKind) {
	m.call(func() {
		if !m.started || m.closed || m.phase != PhaseIdle {
			return
		}
		m.armSilent()
	})
}

// Continue is the "continue" control. It sends a keep-alive request and returns
// to the idle phase when the result arrives, whatever it is.
func (m *Monitor) Continue() {
	m.call(m.requestRenewal)
}

// LogoutNow is the "logout now" control.
func (m *Monitor) LogoutNow() {
	m.call(func() {
		m.logout("user")
	})
}

// State returns a snapshot of the monitor state.
func (m *Monitor) State() State {
	var s State
	if !m.call(func() { s = m.snapshot() }) {
		m.lastMu.RLock()
		defer m.lastMu.RUnlock()
		return m.last
	}
	return s
}

// Close cancels all timers, removes the activity subscription and stops the
// event loop. A logout navigation still in flight is waited for, bounded by
// its timeout. It is safe to call more than once.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		m.call(func() {
			m.cancelAll()
			if m.unsubscribe != nil {
				m.unsubscribe()
				m.unsubscribe = nil
			}
			m.closed = true
			m.emit(EventClosed, "")
			m.logEvent("MONITOR_CLOSED", fmt.Sprintf("phase=%s", m.phase))

			m.lastMu.Lock()
			m.last = m.snapshot()
			m.lastMu.Unlock()
		})
		close(m.quit)
		<-m.loopDone
		m.navigating.Wait()
	})
}

// =============================================================================
// EVENT LOOP
// =============================================================================

func (m *Monitor) run() {
	defer close(m.loopDone)
	for {
		select {
		case fn := <-m.events:
			m.exec(fn)
		case <-m.quit:
			return
		}
	}
}

// exec runs fn and keeps a panicking collaborator from killing the loop.
func (m *Monitor) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logEvent("MONITOR_PANIC", fmt.Sprintf("recovered=%v", r))
		}
	}()
	fn()
}

// call runs fn on the loop and waits for it. It reports false if the loop has
// stopped.
func (m *Monitor) call(fn func()) bool {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case m.events <- wrapped:
	case <-m.quit:
		return false
	}
	select {
	case <-done:
		return true
	case <-m.loopDone:
		return false
	}
}

// post queues fn without waiting. Used by timers and the renewal goroutine.
func (m *Monitor) post(fn func()) {
	select {
	case m.events <- fn:
	case <-m.quit:
	}
}

// =============================================================================
// TRANSITIONS (loop goroutine only)
// =============================================================================

// armSilent enters or stays in the idle phase with a fresh silent timer.
func (m *Monitor) armSilent() {
	m.cancelAll()
	m.epoch++
	m.phase = PhaseIdle
	m.remaining = 0

	epoch := m.epoch
	m.silentTimer = m.clock.AfterFunc(m.cfg.SilentDuration, func() {
		m.post(func() { m.onSilentTimeout(epoch) })
	})
}

// reset returns to the idle phase, hiding the warning if it is up.
func (m *Monitor) reset(reason string) {
	if m.phase.IsTerminal() || m.closed {
		return
	}
	m.armSilent()
	if m.surface.IsVisible() {
		m.surface.Hide()
	}
	m.emit(EventReset, reason)
	m.logEvent("TIMERS_RESET", "reason="+reason)
}

func (m *Monitor) onSilentTimeout(epoch uint64) {
	if epoch != m.epoch || m.phase != PhaseIdle || m.closed {
		return
	}
	m.enterWarning()
}

// enterWarning shows the surface and arms the countdown and warning timers.
func (m *Monitor) enterWarning() {
	m.cancelAll()
	m.epoch++
	m.phase = PhaseWarning
	m.remaining = int(m.cfg.WarningDuration / time.Second)

	m.surface.SetCountdown(Countdown{Seconds: m.remaining})
	m.surface.Show()

	epoch := m.epoch
	m.countdownTimer = m.clock.Every(countdownInterval, func() {
		m.post(func() { m.onCountdownTick(epoch) })
	})
	m.warningTimer = m.clock.AfterFunc(m.cfg.WarningDuration, func() {
		m.post(func() { m.onWarningTimeout(epoch) })
	})

	m.emit(EventWarningShown, "")
	m.logEvent("SESSION_WARNING", fmt.Sprintf("expires_in=%v", m.cfg.WarningDuration))
}

func (m *Monitor) onCountdownTick(epoch uint64) {
	if epoch != m.epoch || m.phase != PhaseWarning || m.closed {
		return
	}
	if m.remaining > 0 {
		m.remaining--
		m.surface.SetCountdown(Countdown{Seconds: m.remaining})
		m.emit(EventCountdown, "")
	}
	if m.remaining <= 0 && m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
}

func (m *Monitor) onWarningTimeout(epoch uint64) {
	if epoch != m.epoch || m.phase != PhaseWarning || m.closed {
		return
	}
	m.logout("timeout")
}

// requestRenewal sends the keep-alive request. A second request is not sent
// while one is in flight.
func (m *Monitor) requestRenewal() {
	if !m.started || m.closed || m.phase != PhaseWarning || m.renewing {
		return
	}

	m.emit(EventRenewRequested, "")
	m.logEvent("SESSION_EXTEND_REQUESTED", "url="+m.cfg.KeepAliveURL)

	if m.renewer == nil {
		m.applyRenewal(nil)
		return
	}

	m.renewing = true
	renewer := m.renewer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), renewTimeout)
		defer cancel()
		err := renewer.Renew(ctx)
		m.post(func() { m.applyRenewal(err) })
	}()
}

// applyRenewal resets the timers whatever the keep-alive outcome was.
func (m *Monitor) applyRenewal(err error) {
	m.renewing = false
	if m.phase.IsTerminal() || m.closed {
		return
	}
	if err != nil {
		m.logEvent("SESSION_RENEW_FAILED", fmt.Sprintf("error=%v", err))
		m.emit(EventRenewFailed, err.Error())
		m.reset("renew_failed")
		return
	}
	m.logEvent("SESSION_RENEWED", "")
	m.emit(EventRenewed, "")
	m.reset("renewed")
}

// logout cancels everything and navigates to the logout URL.
func (m *Monitor) logout(reason string) {
	if !m.started || m.phase.IsTerminal() || m.closed {
		return
	}
	m.cancelAll()
	m.epoch++
	m.phase = PhaseLoggedOut
	m.remaining = 0

	m.emit(EventLoggedOut, reason)
	m.logEvent("SESSION_LOGOUT", fmt.Sprintf("reason=%s url=%s", reason, m.cfg.LogoutURL))

	if m.navigator == nil {
		return
	}
	// The phase is already terminal, so the loop keeps answering while the
	// request runs.
	navigator, target := m.navigator, m.cfg.LogoutURL
	m.navigating.Add(1)
	go func() {
		defer m.navigating.Done()
		ctx, cancel := context.WithTimeout(context.Background(), navigateTimeout)
		defer cancel()
		if err := navigator.Navigate(ctx, target); err != nil {
			m.logEvent("LOGOUT_NAVIGATION_FAILED", fmt.Sprintf("error=%v", err))
		}
	}()
}

// cancelAll stops every pending timer.
func (m *Monitor) cancelAll() {
	if m.silentTimer != nil {
		m.silentTimer.Stop()
		m.silentTimer = nil
	}
	if m.warningTimer != nil {
		m.warningTimer.Stop()
		m.warningTimer = nil
	}
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
}

func (m *Monitor) snapshot() State {
	s := State{
		Phase:          m.phase,
		RenewalPending: m.renewing,
		Started:        m.started,
		Closed:         m.closed,
	}
	if m.phase == PhaseWarning {
		s.RemainingSeconds = m.remaining
	}
	return s
}

// =============================================================================
// EVENTS AND LOGGING
// =============================================================================

func (m *Monitor) emit(kind EventKind, detail string) {
	ev := Event{
		Kind:      kind,
		MonitorID: m.id,
		Phase:     m.phase,
		Detail:    detail,
		At:        m.clock.Now(),
	}
	if m.phase == PhaseWarning {
		ev.RemainingSeconds = m.remaining
	}
	for _, o := range m.observers {
		m.notify(o, ev)
	}
}

func (m *Monitor) notify(o Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logEvent("OBSERVER_PANIC", fmt.Sprintf("event=%s recovered=%v", ev.Kind, r))
		}
	}()
	o(ev)
}

// logEvent writes an audit-style line for a monitor event.
func (m *Monitor) logEvent(eventType, details string) {
	if m.logger == nil {
		return
	}
	timestamp := m.clock.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	m.logger.Printf("%s | %s | monitor=%s %s", timestamp, eventType, m.id, details)
}
