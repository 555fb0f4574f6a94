package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/spk/internal/campus"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "ENVIRONMENT", "SUPABASE_URL", "SUPABASE_URL_ANON_KEY", "MONGODB_URI", "REDIS_URL",
		"CLOUDINARY_CLOUD_NAME", "EVENTS_API_URL", "EVENTS_TIMEZONE", "EVENTS_PAGE_SIZE", "UPSTREAM_TIMEOUT",
		"ORG_REFRESH_SPEC", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/New_York", cfg.EventsTimezone.String())
	assert.Equal(t, 5, cfg.EventsPageSize)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, campus.DefaultBaseURL, cfg.Campus().BaseURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.SupabaseEnabled())
	assert.False(t, cfg.MongoDBEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("EVENTS_TIMEZONE", "UTC")
	t.Setenv("EVENTS_PAGE_SIZE", "8")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://spk.njit.edu, https://admin.spk.njit.edu ,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.UTC, cfg.EventsTimezone)
	assert.Equal(t, 8, cfg.EventsPageSize)
	assert.Equal(t, 3*time.Second, cfg.Campus().Timeout)
	assert.Equal(t, []string{"https://spk.njit.edu", "https://admin.spk.njit.edu"}, cfg.CORSOrigins)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"bad timezone":    {"EVENTS_TIMEZONE", "Mars/Olympus"},
		"bad page size":   {"EVENTS_PAGE_SIZE", "zero"},
		"zero page size":  {"EVENTS_PAGE_SIZE", "0"},
		"bad duration":    {"UPSTREAM_TIMEOUT", "10"},
		"bad cron":        {"ORG_REFRESH_SPEC", "every tuesday"},
		"half a supabase": {"SUPABASE_URL", "https://x.supabase.co"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("SUPABASE_URL_ANON_KEY", "")
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
