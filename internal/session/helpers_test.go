// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// MANUAL CLOCK
// =============================================================================

// manualClock fires timers only when Advance is called. After each fired
// callback it runs settle, which lets the monitor drain its queue before the
// next timer is considered.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
	settle func()
}

type manualTimer struct {
	clock  *manualClock
	when   time.Time
	period time.Duration
	fn     func()
	done   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Every(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, when: c.now.Add(d), period: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.done || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.when
		if next.period > 0 {
			next.when = next.when.Add(next.period)
		} else {
			next.done = true
		}
		fn, settle := next.fn, c.settle
		c.mu.Unlock()

		fn()
		if settle != nil {
			settle()
		}
	}
}

// Pending counts timers that are armed and not stopped.
func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// PendingPeriodic counts armed periodic timers.
func (c *manualClock) PendingPeriodic() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done && t.period > 0 {
			n++
		}
	}
	return n
}

// =============================================================================
// FAKES
// =============================================================================

type fakeSurface struct {
	mu         sync.Mutex
	mountCalls int
	mounted    bool
	controls   Controls
	visible    bool
	shows      int
	hides      int
	countdowns []Countdown
}

func (s *fakeSurface) Mount(c Controls) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mountCalls++
	if s.mounted {
		return true
	}
	s.mounted = true
	s.controls = c
	return false
}

func (s *fakeSurface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	s.shows++
}

func (s *fakeSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
	s.hides++
}

func (s *fakeSurface) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *fakeSurface) SetCountdown(c Countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdowns = append(s.countdowns, c)
}

func (s *fakeSurface) lastCountdown() Countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.countdowns) == 0 {
		return Countdown{Seconds: -1}
	}
	return s.countdowns[len(s.countdowns)-1]
}

type fakeRenewer struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (r *fakeRenewer) Renew(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	gate, err := r.gate, r.err
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (r *fakeRenewer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeNavigator struct {
	mu      sync.Mutex
	targets []string
	gate    chan struct{}
}

func (n *fakeNavigator) Navigate(ctx context.Context, target string) error {
	n.mu.Lock()
	gate := n.gate
	n.mu.Unlock()
	if gate != nil {
		<-gate
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return nil
}

func (n *fakeNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

type fakeActivity struct {
	mu   sync.Mutex
	subs map[int]func(ActivityKind)
	next int
}

func (a *fakeActivity) Subscribe(fn func(ActivityKind)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subs == nil {
		a.subs = make(map[int]func(ActivityKind))
	}
	id := a.next
	a.next++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

func (a *fakeActivity) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

func (a *fakeActivity) Fire(kind ActivityKind) {
	a.mu.Lock()
	subs := make([]func(ActivityKind), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()
	for _, fn := range subs {
		fn(kind)
	}
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	clock    *manualClock
	surface  *fakeSurface
	renewer  *fakeRenewer
	nav      *fakeNavigator
	activity *fakeActivity
	m        *Monitor

	mu     sync.Mutex
	events []Event
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		clock:    newManualClock(),
		surface:  &fakeSurface{},
		renewer:  &fakeRenewer{},
		nav:      &fakeNavigator{},
		activity: &fakeActivity{},
	}

	base := []Option{
		WithClock(h.clock),
		WithSurface(h.surface),
		WithRenewer(h.renewer),
		WithNavigator(h.nav),
		WithActivitySource(h.activity),
		WithLogger(log.New(io.Discard, "", 0)),
		WithObserver(func(ev Event) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
		}),
	}

	m, err := New(cfg, append(base, opts...)...)
	require.NoError(t, err)
	h.m = m
	h.clock.settle = func() { m.State() }
	t.Cleanup(m.Close)
	return h
}

func (h *harness) kinds() []EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]EventKind, 0, len(h.events))
	for _, ev := range h.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// awaitNavigation waits for the logout navigation, which runs off the loop.
func (h *harness) awaitNavigation(t *testing.T, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.nav.Targets()) >= len(want)
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, want, h.nav.Targets())
}

func (h *harness) phase() Phase {
	return h.m.State().Phase
}

func testConfig(silent, warning time.Duration) Config {
	return Config{
		SilentDuration:  silent,
		WarningDuration: warning,
		LogoutURL:       "/logout/",
		KeepAliveURL:    "/dashboard/",
	}
}
