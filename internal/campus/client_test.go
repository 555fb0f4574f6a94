package campus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, cfg Config) *Client {
	cfg.BaseURL = url
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = time.Millisecond
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 5 * time.Millisecond
	}
	return NewClient(cfg, nil, nil)
}

func TestFetchEvents(t *testing.T) {
	endsAfter := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pizza", q.Get("query"))
		assert.Equal(t, "2026-03-10T17:00:00Z", q.Get("endsAfter"))
		assert.Equal(t, "endsOn", q.Get("orderByField"))
		assert.Equal(t, "ascending", q.Get("orderByDirection"))
		assert.Equal(t, "Approved", q.Get("status"))
		assert.Equal(t, "25", q.Get("take"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":[{"id":9,"name":"Pizza Night","startsOn":"2026-03-13T23:00:00Z","benefitNames":["Free Food"],"categoryNames":["Social"]}],"nextPage":"abc"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, Config{Take: 25})
	events, err := c.FetchEvents(context.Background(), EventQuery{Query: " pizza ", EndsAfter: endsAfter})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(9), events[0].ID)
	assert.Equal(t, "Pizza Night", events[0].Name)
	assert.Equal(t, []string{"Free Food"}, events[0].BenefitNames)
}

func TestFetchEventsEmptyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	events, err := newTestClient(srv.URL, Config{}).FetchEvents(context.Background(), EventQuery{})
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"value":[{"Name":"Chess Club","WebsiteKey":"chess"}]}`))
	}))
	defer srv.Close()

	orgs, err := newTestClient(srv.URL, Config{Attempts: 3}).FetchOrganizations(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, orgs, 1)
	assert.Equal(t, "chess", orgs[0].WebsiteKey)
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such route", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, Config{Attempts: 3}).FetchEvents(context.Background(), EventQuery{})
	require.Error(t, err)
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusNotFound, ue.StatusCode)
	assert.Equal(t, EndpointEvents, ue.Endpoint)
	assert.Contains(t, ue.Body, "no such route")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchMalformedJSON(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, Config{Attempts: 3}).FetchEvents(context.Background(), EventQuery{})
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.False(t, ue.Temporary())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, Config{Attempts: 1, BreakerFailures: 2, BreakerTimeout: time.Minute})
	for i := 0; i < 2; i++ {
		_, err := c.FetchEvents(context.Background(), EventQuery{})
		require.Error(t, err)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))

	_, err := c.FetchEvents(context.Background(), EventQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, Config{Attempts: 2}).FetchEvents(context.Background(), EventQuery{})
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Zero(t, ue.StatusCode)
	assert.True(t, ue.Temporary())
}
