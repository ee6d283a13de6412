// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"io"
	"log"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 28*time.Minute, cfg.SilentDuration)
	assert.Equal(t, 2*time.Minute, cfg.WarningDuration)
	assert.Equal(t, "/logout/", cfg.LogoutURL)
	assert.Equal(t, "/dashboard/", cfg.KeepAliveURL)
	assert.Equal(t, 30*time.Minute, cfg.TotalDuration())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero silent", func(c *Config) { c.SilentDuration = 0 }},
		{"negative warning", func(c *Config) { c.WarningDuration = -time.Second }},
		{"missing logout url", func(c *Config) { c.LogoutURL = "" }},
		{"missing keep-alive url", func(c *Config) { c.KeepAliveURL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			_, err = New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// =============================================================================
// PHASE TRANSITION TESTS
// =============================================================================

func TestMonitor_StartsIdle(t *testing.T) {
	h := newHarness(t, testConfig(100*time.Millisecond, 200*time.Millisecond))

	state := h.m.State()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.False(t, state.Started)

	h.m.Start()
	state = h.m.State()
	assert.True(t, state.Started)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Zero(t, state.RemainingSeconds)
	assert.Equal(t, 1, h.clock.Pending())
	assert.Equal(t, []EventKind{EventStarted}, h.kinds())
}

func TestMonitor_UnattendedSessionLogsOut(t *testing.T) {
	h := newHarness(t, testConfig(100*time.Millisecond, 200*time.Millisecond))
	h.m.Start()

	h.clock.Advance(99 * time.Millisecond)
	assert.Equal(t, PhaseIdle, h.phase())

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, PhaseWarning, h.phase())
	assert.True(t, h.surface.IsVisible())

	h.clock.Advance(199 * time.Millisecond)
	assert.Equal(t, PhaseWarning, h.phase())
	assert.Empty(t, h.nav.Targets())

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, PhaseLoggedOut, h.phase())
	h.awaitNavigation(t, "/logout/")
	assert.Zero(t, h.clock.Pending(), "logout must cancel every timer")

	// Terminal: nothing brings it back.
	h.m.RecordActivity(ActivityKeyPress)
	h.m.Continue()
	h.clock.Advance(time.Hour)
	assert.Equal(t, PhaseLoggedOut, h.phase())
	assert.Equal(t, 1, len(h.nav.Targets()))
	assert.Zero(t, h.renewer.Calls())
}

func TestMonitor_ActivityDebouncesSilentTimer(t *testing.T) {
	h := newHarness(t, testConfig(100*time.Millisecond, time.Second))
	h.m.Start()

	h.clock.Advance(60 * time.Millisecond)
	h.m.RecordActivity(ActivityMouseMove)
	h.m.RecordActivity(ActivityKeyPress)
	assert.Equal(t, 1, h.clock.Pending(), "activity must not accumulate timers")

	h.clock.Advance(99 * time.Millisecond)
	assert.Equal(t, PhaseIdle, h.phase())

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, PhaseWarning, h.phase())
}

func TestMonitor_DebounceFireTimeFollowsLastActivity(t *testing.T) {
	const silent = 100 * time.Millisecond
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		h := newHarness(t, testConfig(silent, time.Second))
		h.m.Start()

		activities := rng.Intn(10) + 1
		for i := 0; i < activities; i++ {
			gap := time.Duration(rng.Intn(99)+1) * time.Millisecond
			h.clock.Advance(gap)
			require.Equal(t, PhaseIdle, h.phase())
			h.m.RecordActivity(ActivityKind(rng.Intn(6)))
		}

		h.clock.Advance(silent - time.Millisecond)
		require.Equal(t, PhaseIdle, h.phase(), "run %d fired early", run)
		h.clock.Advance(time.Millisecond)
		require.Equal(t, PhaseWarning, h.phase(), "run %d fired late", run)
		h.m.Close()
	}
}

func TestMonitor_WarningArmsOneCountdownAndOneTimeout(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()

	h.clock.Advance(time.Second)
	require.Equal(t, PhaseWarning, h.phase())

	assert.Equal(t, 2, h.clock.Pending(), "silent timer must be gone, warning and countdown armed")
	assert.Equal(t, 1, h.clock.PendingPeriodic())
	assert.Equal(t, 90, h.m.State().RemainingSeconds)
	assert.Equal(t, "1:30", h.surface.lastCountdown().String())
}

func TestMonitor_CountdownTicksOncePerSecond(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)

	h.clock.Advance(time.Second)
	assert.Equal(t, 89, h.m.State().RemainingSeconds)
	assert.Equal(t, "1:29", h.surface.lastCountdown().String())

	h.clock.Advance(29 * time.Second)
	assert.Equal(t, 60, h.m.State().RemainingSeconds)
	assert.Equal(t, SeverityWarning, h.surface.lastCountdown().Severity())

	h.clock.Advance(30 * time.Second)
	assert.Equal(t, SeverityDanger, h.surface.lastCountdown().Severity())

	h.clock.Advance(25 * time.Second)
	assert.Equal(t, 5, h.m.State().RemainingSeconds)
	assert.Equal(t, "0:05", h.surface.lastCountdown().String())

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, PhaseLoggedOut, h.phase())
	assert.Zero(t, h.clock.Pending())
}

func TestMonitor_ActivitySuppressedDuringWarning(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)
	h.clock.Advance(3 * time.Second)
	require.Equal(t, 87, h.m.State().RemainingSeconds)

	h.activity.Fire(ActivityMouseMove)
	h.m.RecordActivity(ActivityClick)
	h.m.RecordActivity(ActivityScroll)

	state := h.m.State()
	assert.Equal(t, PhaseWarning, state.Phase)
	assert.Equal(t, 87, state.RemainingSeconds)
	assert.True(t, h.surface.IsVisible())
	assert.Equal(t, 2, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, 86, h.m.State().RemainingSeconds, "countdown continues uninterrupted")
}

func TestMonitor_ContinueRenewsAndReturnsToIdle(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)
	require.Equal(t, PhaseWarning, h.phase())

	h.m.Continue()

	require.Eventually(t, func() bool { return h.phase() == PhaseIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.renewer.Calls())
	assert.False(t, h.surface.IsVisible())
	assert.Equal(t, 1, h.clock.Pending(), "only a fresh silent timer")
	assert.Zero(t, h.clock.PendingPeriodic())
	assert.Zero(t, h.m.State().RemainingSeconds)
	assert.Contains(t, h.kinds(), EventRenewed)

	// The fresh silent timer runs the whole silent duration again.
	h.clock.Advance(999 * time.Millisecond)
	assert.Equal(t, PhaseIdle, h.phase())
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, PhaseWarning, h.phase())
}

func TestMonitor_FailedRenewalStillResets(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.renewer.err = errors.New("keep-alive returned 500 Internal Server Error")
	h.m.Start()
	h.clock.Advance(time.Second)

	h.m.Continue()

	require.Eventually(t, func() bool { return h.phase() == PhaseIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.clock.Pending())
	assert.False(t, h.surface.IsVisible())

	kinds := h.kinds()
	assert.Contains(t, kinds, EventRenewFailed)
	assert.NotContains(t, kinds, EventRenewed)
	assert.Equal(t, EventReset, kinds[len(kinds)-1])
}

func TestMonitor_SingleRenewalInFlight(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.renewer.gate = make(chan struct{})
	h.m.Start()
	h.clock.Advance(time.Second)

	h.m.Continue()
	h.m.Continue()
	require.Eventually(t, func() bool { return h.renewer.Calls() == 1 }, time.Second, 5*time.Millisecond)

	state := h.m.State()
	assert.True(t, state.RenewalPending)
	assert.Equal(t, PhaseWarning, state.Phase, "phase changes only when the result arrives")

	close(h.renewer.gate)
	require.Eventually(t, func() bool { return h.phase() == PhaseIdle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.renewer.Calls())
	assert.False(t, h.m.State().RenewalPending)
}

func TestMonitor_RenewalResultAfterLogoutIsIgnored(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.renewer.gate = make(chan struct{})
	h.m.Start()
	h.clock.Advance(time.Second)

	h.m.Continue()
	require.Eventually(t, func() bool { return h.renewer.Calls() == 1 }, time.Second, 5*time.Millisecond)

	h.m.LogoutNow()
	require.Equal(t, PhaseLoggedOut, h.phase())

	close(h.renewer.gate)
	require.Eventually(t, func() bool { return !h.m.State().RenewalPending }, time.Second, 5*time.Millisecond)
	assert.Equal(t, PhaseLoggedOut, h.phase())
	assert.Zero(t, h.clock.Pending())
	assert.NotContains(t, h.kinds(), EventReset)
}

func TestMonitor_LogoutNowFromWarning(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)

	h.m.LogoutNow()

	assert.Equal(t, PhaseLoggedOut, h.phase())
	h.awaitNavigation(t, "/logout/")
	assert.Zero(t, h.clock.Pending())
	assert.Zero(t, h.m.State().RemainingSeconds)
}

func TestMonitor_ControlsBoundOnMount(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)

	require.NotNil(t, h.surface.controls.Continue)
	require.NotNil(t, h.surface.controls.Logout)

	h.surface.controls.Logout()
	assert.Equal(t, PhaseLoggedOut, h.phase())
}

func TestMonitor_ContinueOutsideWarningIsIgnored(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Continue()
	h.m.Start()
	h.m.Continue()

	assert.Zero(t, h.renewer.Calls())
	assert.Equal(t, PhaseIdle, h.phase())
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestMonitor_StartIsIdempotent(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))

	h.m.Start()
	h.m.Start()

	assert.Equal(t, 1, h.surface.mountCalls)
	assert.Equal(t, 1, h.activity.Subscribers())
	assert.Equal(t, 1, h.clock.Pending())

	kinds := h.kinds()
	assert.Equal(t, []EventKind{EventStarted}, kinds)
}

func TestMonitor_SharedSurfaceMountedOnce(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()

	second, err := New(testConfig(time.Second, 90*time.Second),
		WithClock(h.clock),
		WithSurface(h.surface),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, err)
	defer second.Close()
	second.Start()

	assert.Equal(t, 2, h.surface.mountCalls)
	assert.True(t, h.surface.mounted)
	assert.True(t, second.State().Started)
}

func TestMonitor_CloseCancelsEverything(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	h.m.Start()
	h.clock.Advance(time.Second)
	require.Equal(t, 2, h.clock.Pending())

	h.m.Close()
	h.m.Close()

	assert.Zero(t, h.clock.Pending())
	assert.Zero(t, h.activity.Subscribers())

	state := h.m.State()
	assert.True(t, state.Closed)
	assert.Equal(t, PhaseWarning, state.Phase)

	// Calls after close are harmless.
	h.m.RecordActivity(ActivityKeyPress)
	h.m.Continue()
	h.m.LogoutNow()
	h.m.Start()
	assert.Empty(t, h.nav.Targets())
	assert.Equal(t, EventClosed, h.kinds()[len(h.kinds())-1])
}

func TestMonitor_ActivitySourceDrivesReset(t *testing.T) {
	h := newHarness(t, testConfig(100*time.Millisecond, time.Second))
	h.m.Start()

	h.clock.Advance(90 * time.Millisecond)
	h.activity.Fire(ActivityTouchStart)
	h.clock.Advance(90 * time.Millisecond)
	assert.Equal(t, PhaseIdle, h.phase())
	h.clock.Advance(10 * time.Millisecond)
	assert.Equal(t, PhaseWarning, h.phase())
}

func TestMonitor_PanickingObserverDoesNotStopLoop(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second),
		WithObserver(func(ev Event) {
			if ev.Kind == EventWarningShown {
				panic("observer exploded")
			}
		}),
	)
	h.m.Start()
	h.clock.Advance(time.Second)

	assert.Equal(t, PhaseWarning, h.phase())
	h.clock.Advance(time.Second)
	assert.Equal(t, 89, h.m.State().RemainingSeconds)
}

func TestMonitor_EventsCarryMonitorID(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second), WithID("mon-test"))
	h.m.Start()
	h.clock.Advance(time.Second)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.events, 2)
	for _, ev := range h.events {
		assert.Equal(t, "mon-test", ev.MonitorID)
	}
	assert.Equal(t, PhaseWarning, h.events[1].Phase)
	assert.Equal(t, 90, h.events[1].RemainingSeconds)
}

// TestMonitor_SystemClock runs the short scenario against real timers.
func TestMonitor_SystemClock(t *testing.T) {
	nav := &fakeNavigator{}
	m, err := New(testConfig(100*time.Millisecond, 200*time.Millisecond),
		WithNavigator(nav),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, err)
	defer m.Close()

	m.Start()
	require.Eventually(t, func() bool { return m.State().Phase == PhaseWarning }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return m.State().Phase == PhaseLoggedOut }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(nav.Targets()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/logout/"}, nav.Targets())

	// A second logout after the terminal phase navigates nowhere.
	m.LogoutNow()
	m.Close()
	assert.Len(t, nav.Targets(), 1)
}

func TestMonitor_LogoutNavigationDoesNotBlockLoop(t *testing.T) {
	h := newHarness(t, testConfig(time.Second, 90*time.Second))
	gate := make(chan struct{})
	h.nav.mu.Lock()
	h.nav.gate = gate
	h.nav.mu.Unlock()

	h.m.Start()
	h.clock.Advance(time.Second)

	done := make(chan struct{})
	go func() {
		h.m.LogoutNow()
		assert.Equal(t, PhaseLoggedOut, h.m.State().Phase)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop blocked on logout navigation")
	}
	assert.Empty(t, h.nav.Targets())

	closed := make(chan struct{})
	go func() {
		h.m.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned before the logout navigation finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after navigation finished")
	}
	assert.Equal(t, []string{"/logout/"}, h.nav.Targets())
}
