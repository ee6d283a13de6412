// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package keepalive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sessionwatch/internal/session"
)

// Configuration constants.
const (
	// DefaultTimeout bounds a single request when the context has no deadline.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerSecond paces requests to the server.
	DefaultRequestsPerSecond = 2.0

	// maxDrain is how much of a response body is read before closing it.
	maxDrain = 1 * 1024 * 1024

	// userAgent identifies the client to the server.
	userAgent = "sessionwatch/1"
)

var (
	// ErrInvalidBaseURL is returned by New for a base URL without scheme or host.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrEmptyTarget is returned for an empty request target.
	ErrEmptyTarget = errors.New("empty request target")
)

// StatusError is returned by Renew for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("keep-alive %s: unexpected status %s", e.URL, e.Status)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Option configures a Client.
type Option func(*Client)

// WithSessionCookie seeds the jar with the session cookie for the base origin.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		if name == "" || value == "" {
			return
		}
		c.seed = append(c.seed, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets the request pacing. Zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTransport replaces the HTTP transport. Used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets the logger for request failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends keep-alive and logout requests for one origin.
type Client struct {
	base      *url.URL
	jar       http.CookieJar
	seed      []*http.Cookie
	timeout   time.Duration
	limiter   *rate.Limiter
	transport http.RoundTripper
	logger    *log.Logger

	// withCookies carries the jar; bare is used for other origins.
	withCookies *http.Client
	bare        *http.Client
}

// New creates a Client for the origin of baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		base:      base,
		jar:       jar,
		timeout:   DefaultTimeout,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		transport: http.DefaultTransport,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.seed) > 0 {
		jar.SetCookies(base, c.seed)
	}

	c.withCookies = &http.Client{Transport: c.transport, Jar: jar, Timeout: c.timeout}
	c.bare = &http.Client{Transport: c.transport, Timeout: c.timeout}
	return c, nil
}

// BaseURL returns the origin the client was created for.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Cookies returns the cookies the jar would send to target.
func (c *Client) Cookies(target string) ([]*http.Cookie, error) {
	u, err := c.Resolve(target)
	if err != nil {
		return nil, err
	}
	return c.jar.Cookies(u), nil
}

// Resolve turns target into an absolute URL against the base URL.
func (c *Client) Resolve(target string) (*url.URL, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrEmptyTarget
	}
	ref, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", target, err)
	}
	return c.base.ResolveReference(ref), nil
}

// SameOrigin reports whether u shares scheme and host with the base URL.
func (c *Client) SameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

// Renew sends the keep-alive request to target.
func (c *Client) Renew(ctx context.Context, target string) error {
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("keep-alive %s: %w", req.URL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// Navigate performs a full GET of target, following redirects.
func (c *Client) Navigate(ctx context.Context, target string) error {
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", req.URL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if resp.StatusCode >= 400 {
		c.logger.Printf("NAVIGATE | url=%s status=%d final=%s", req.URL, resp.StatusCode, resp.Request.URL)
	}
	return nil
}

// Renewer binds the keep-alive target so the client satisfies session.Renewer.
func (c *Client) Renewer(target string) session.Renewer {
	return session.RenewerFunc(func(ctx context.Context) error {
		return c.Renew(ctx, target)
	})
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	u, err := c.Resolve(target)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.SameOrigin(req.URL) {
		return c.withCookies.Do(req)
	}
	return c.bare.Do(req)
}
