// Package campus talks to the university's Engage discovery API, the source
// of both the events feed and the organization directory.
package campus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/joshua-takyi/spk/internal/metrics"
	"github.com/joshua-takyi/spk/internal/models"
)

const (
	DefaultBaseURL = "https://njit.campuslabs.com/engage/api/discovery"

	eventsPath        = "/event/search"
	organizationsPath = "/search/organizations"

	EndpointEvents        = "events"
	EndpointOrganizations = "organizations"

	maxErrorBody = 512
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSecond caps outbound calls; zero disables the limiter.
	RatePerSecond float64
	Burst         int
	Take          int

	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Take <= 0 {
		c.Take = 100
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	return c
}

// UpstreamError is a failed call to the campus API: a transport failure,
// a non-2xx status or a body that is not the expected JSON.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("campus %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("campus %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("campus %s: request failed", e.Endpoint)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the call may succeed.
func (e *UpstreamError) Temporary() bool {
	if e.StatusCode != 0 {
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	var decodeErr *decodeError
	return !errors.As(e.Err, &decodeErr)
}

type decodeError struct{ err error }

func (d *decodeError) Error() string { return "decode response: " + d.err.Error() }
func (d *decodeError) Unwrap() error { return d.err }

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:     cfg,
		http:    newHTTPClient(cfg.Timeout),
		metrics: m,
		log:     logger,
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "campus",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// 4xx and undecodable bodies do not trip the breaker
		IsSuccessful: func(err error) bool {
			var ue *UpstreamError
			if errors.As(err, &ue) {
				return !ue.Temporary()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("campus circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			m.SetBreakerState(name, int(to))
		},
	})
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// EventQuery narrows the events search. Zero EndsAfter means now.
type EventQuery struct {
	Query     string
	EndsAfter time.Time
	Take      int
}

// FetchEvents returns the approved events that have not ended yet, ordered
// by end time.
func (c *Client) FetchEvents(ctx context.Context, q EventQuery) ([]models.RawEventRecord, error) {
	endsAfter := q.EndsAfter
	if endsAfter.IsZero() {
		endsAfter = time.Now()
	}
	take := q.Take
	if take <= 0 {
		take = c.cfg.Take
	}

	params := url.Values{}
	params.Set("endsAfter", endsAfter.UTC().Format(time.RFC3339))
	params.Set("orderByField", "endsOn")
	params.Set("orderByDirection", "ascending")
	params.Set("status", "Approved")
	params.Set("take", strconv.Itoa(take))
	params.Set("query", strings.TrimSpace(q.Query))

	var env models.EventsEnvelope
	if err := c.get(ctx, EndpointEvents, eventsPath, params, &env); err != nil {
		return nil, err
	}
	if env.Value == nil {
		env.Value = []models.RawEventRecord{}
	}
	return env.Value, nil
}

// FetchOrganizations returns up to top organizations from the directory.
func (c *Client) FetchOrganizations(ctx context.Context, query string, top int) ([]models.DirectoryOrganization, error) {
	if top <= 0 {
		top = 1000
	}
	params := url.Values{}
	params.Set("top", strconv.Itoa(top))
	params.Set("query", strings.TrimSpace(query))

	var env models.OrganizationsEnvelope
	if err := c.get(ctx, EndpointOrganizations, organizationsPath, params, &env); err != nil {
		return nil, err
	}
	if env.Value == nil {
		env.Value = []models.DirectoryOrganization{}
	}
	return env.Value, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + params.Encode()
	start := time.Now()

	err := retry(ctx, c.cfg.Attempts, c.cfg.InitialBackoff, c.cfg.MaxBackoff, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.do(ctx, endpoint, reqURL, out)
		})
		if err != nil {
			c.log.Debug("campus request attempt failed", "endpoint", endpoint, "error", err)
		}
		return err
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var ue *UpstreamError
		if !errors.As(err, &ue) {
			err = &UpstreamError{Endpoint: endpoint, Err: err}
		}
	}
	c.metrics.ObserveUpstream(endpoint, outcome, time.Since(start))
	return err
}

func (c *Client) do(ctx context.Context, endpoint, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: &decodeError{err: err}}
	}
	return nil
}

// retry runs fn up to attempts times with doubling backoff. Errors that are
// not temporary end the loop early.
func retry(ctx context.Context, attempts int, initial, maxBackoff time.Duration, fn func() error) error {
	d := initial
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return err
			}
			if d < maxBackoff {
				d *= 2
				if d > maxBackoff {
					d = maxBackoff
				}
			}
		}
		if err = fn(); err == nil || ctx.Err() != nil || !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Temporary()
	}
	return false
}
