package routes

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/spk/internal/config"
	"github.com/joshua-takyi/spk/internal/container"
)

const campusFeed = `{"value":[
	{"id":1,"name":"Pizza Night","description":"<p>Free pizza</p>","location":"Campus Center","startsOn":"2030-03-13T00:00:00Z","organizationName":"SGA"},
	{"id":2,"name":"Chess Blitz","startsOn":"2030-03-14T20:00:00Z","organizationName":"Chess Club"}
]}`

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/event/search":
			_, _ = io.WriteString(w, campusFeed)
		case "/search/organizations":
			_, _ = io.WriteString(w, `{"value":[{"Name":"Chess Club","WebsiteKey":"chess"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Environment:    "development",
		EventsAPIURL:   upstream.URL,
		EventsTimezone: time.UTC,
		EventsPageSize: 5,
		EventsTake:     20,
		CORSOrigins:    []string{"http://localhost:3000"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := container.NewContainer(context.Background(), cfg, logger, nil)
	t.Cleanup(func() { _ = c.Close() })
	return SetupRoutes(c)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	r := testRouter(t)

	w := get(r, "/api/v1/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spk_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/v1/health"`)
}

func TestEventsThroughUpstream(t *testing.T) {
	r := testRouter(t)

	w := get(r, "/api/v1/events?q=pizza&gen=3")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Events []struct {
				Title   string `json:"title"`
				Summary string `json:"summary"`
			} `json:"events"`
			Generation string `json:"generation"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Events, 1)
	assert.Equal(t, "Pizza Night", body.Data.Events[0].Title)
	assert.Equal(t, "Free pizza", body.Data.Events[0].Summary)
	assert.Equal(t, "3", body.Data.Generation)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/api/v1/me/preferences", "/api/v1/me/profile"} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path).Code, path)
	}
}

func TestOnboardingRoundTrip(t *testing.T) {
	r := testRouter(t)

	w := get(r, "/api/v1/onboarding/000001")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = get(r, "/api/v1/onboarding/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOrganizationsThroughUpstream(t *testing.T) {
	r := testRouter(t)
	w := get(r, "/api/v1/organizations?q=chess")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Chess Club")
	assert.Contains(t, w.Body.String(), `"total":1`)
}
