// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keepalive

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sessionwatch/internal/session"
)

// recorder captures what the test server saw.
type recorder struct {
	mu       sync.Mutex
	paths    []string
	xrw      []string
	cookies  []string
	statuses map[string]int
}

func (r *recorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.xrw = append(r.xrw, req.Header.Get("X-Requested-With"))
		if c, err := req.Cookie("sessionid"); err == nil {
			r.cookies = append(r.cookies, c.Value)
		} else {
			r.cookies = append(r.cookies, "")
		}
		status := r.statuses[req.URL.Path]
		r.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		io.WriteString(w, "<html>ok</html>")
	})
}

func (r *recorder) snapshot() (paths, xrw, cookies []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...), append([]string(nil), r.xrw...), append([]string(nil), r.cookies...)
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithSessionCookie("sessionid", "abc123"),
		WithRateLimit(0),
		WithLogger(log.New(io.Discard, "", 0)),
	}
	c, err := New(baseURL, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "http://", "://nope"} {
		_, err := New(raw)
		assert.ErrorIs(t, err, ErrInvalidBaseURL, raw)
	}
}

func TestRenew_SendsHeaderAndCookie(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Renew(context.Background(), "/dashboard/"))

	paths, xrw, cookies := rec.snapshot()
	assert.Equal(t, []string{"/dashboard/"}, paths)
	assert.Equal(t, []string{"XMLHttpRequest"}, xrw)
	assert.Equal(t, []string{"abc123"}, cookies)
}

func TestRenew_NonSuccessIsStatusError(t *testing.T) {
	rec := &recorder{statuses: map[string]int{"/dashboard/": http.StatusInternalServerError}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Renew(context.Background(), "/dashboard/")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "500")
}

func TestNavigate_PlainRequestFollowsRedirects(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/logout/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login/", http.StatusFound)
	})
	mux.Handle("/login/", rec.handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Navigate(context.Background(), "/logout/"))

	paths, xrw, cookies := rec.snapshot()
	assert.Equal(t, []string{"/login/"}, paths)
	assert.Equal(t, []string{""}, xrw, "navigation carries no XHR header")
	assert.Equal(t, []string{"abc123"}, cookies)
}

func TestNavigate_NotFoundIsNotAnError(t *testing.T) {
	rec := &recorder{statuses: map[string]int{"/logout/": http.StatusNotFound}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.Navigate(context.Background(), "/logout/"))
}

func TestResolve(t *testing.T) {
	c := newTestClient(t, "https://app.example.com/portal/")

	tests := []struct {
		target string
		want   string
	}{
		{"/dashboard/", "https://app.example.com/dashboard/"},
		{"logout/", "https://app.example.com/portal/logout/"},
		{"https://other.example.org/ping", "https://other.example.org/ping"},
	}
	for _, tt := range tests {
		u, err := c.Resolve(tt.target)
		require.NoError(t, err)
		assert.Equal(t, tt.want, u.String())
	}

	_, err := c.Resolve("  ")
	assert.ErrorIs(t, err, ErrEmptyTarget)
}

func TestRenew_CrossOriginOmitsCredentials(t *testing.T) {
	home := httptest.NewServer(http.NotFoundHandler())
	defer home.Close()

	rec := &recorder{}
	other := httptest.NewServer(rec.handler())
	defer other.Close()

	c := newTestClient(t, home.URL)
	require.NoError(t, c.Renew(context.Background(), other.URL+"/ping"))

	_, xrw, cookies := rec.snapshot()
	assert.Equal(t, []string{"XMLHttpRequest"}, xrw)
	assert.Equal(t, []string{""}, cookies)
}

func TestRenew_ServerCookieIsKept(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboard/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "rotated", Path: "/"})
	})
	mux.Handle("/check/", rec.handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Renew(context.Background(), "/dashboard/"))
	require.NoError(t, c.Renew(context.Background(), "/check/"))

	_, _, cookies := rec.snapshot()
	assert.Equal(t, []string{"rotated"}, cookies)
}

func TestRenew_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Renew(ctx, "/dashboard/")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// A failed keep-alive still returns the monitor to the idle phase.
func TestMonitor_FailedKeepAliveResets(t *testing.T) {
	var hits sync.WaitGroup
	hits.Add(1)
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dashboard/" {
			once.Do(hits.Done)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	cfg := session.Config{
		SilentDuration:  time.Hour,
		WarningDuration: time.Hour,
		LogoutURL:       "/logout/",
		KeepAliveURL:    "/dashboard/",
	}

	var mu sync.Mutex
	var kinds []session.EventKind
	m, err := session.New(cfg,
		session.WithRenewer(c.Renewer(cfg.KeepAliveURL)),
		session.WithNavigator(c),
		session.WithDiagnostics(true),
		session.WithLogger(log.New(io.Discard, "", 0)),
		session.WithObserver(func(ev session.Event) {
			mu.Lock()
			kinds = append(kinds, ev.Kind)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	defer m.Close()

	m.Start()
	d, ok := m.Diagnostics()
	require.True(t, ok)
	d.ShowWarning()
	require.Equal(t, session.PhaseWarning, m.State().Phase)

	m.Continue()
	hits.Wait()
	require.Eventually(t, func() bool {
		s := m.State()
		return s.Phase == session.PhaseIdle && !s.RenewalPending
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, kinds, session.EventRenewFailed)
	assert.Equal(t, session.EventReset, kinds[len(kinds)-1])
}
