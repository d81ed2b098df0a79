package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBaseURL  = "http://localhost:3000/api"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultBaseURL, cfg.ProjectsBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ProjectsTimeout)
	assert.Nil(t, cfg.SynthesisSeed)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ReloadTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Equal(t, "pt", cfg.MapboxCountry)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "compliance-dashboard", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("PROJECTS_BASE_URL", "https://normative.example.com/api/")
	t.Setenv("PROJECTS_TIMEOUT", "2s")
	t.Setenv("SYNTHESIS_SEED", "42")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("RELOAD_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("MAPBOX_COUNTRY", "es")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://normative.example.com/api", cfg.ProjectsBaseURL, "trailing slash trimmed")
	assert.Equal(t, 2*time.Second, cfg.ProjectsTimeout)
	require.NotNil(t, cfg.SynthesisSeed)
	assert.Equal(t, uint64(42), *cfg.SynthesisSeed)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.ReloadTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, "es", cfg.MapboxCountry)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaSnapshotTopic)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
projects:
  base_url: http://upstream.internal/api
  timeout: 7s
synthesis:
  seed: "99"
http:
  addr: ":7070"
log:
  level: warn
kafka:
  enabled: "true"
  brokers: [kafka-a:9092, kafka-b:9092]
  snapshot_topic: dashboards
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://upstream.internal/api", cfg.ProjectsBaseURL)
	assert.Equal(t, 7*time.Second, cfg.ProjectsTimeout)
	require.NotNil(t, cfg.SynthesisSeed)
	assert.Equal(t, uint64(99), *cfg.SynthesisSeed)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat, "unset keys keep defaults")
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"kafka-a:9092", "kafka-b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "dashboards", cfg.KafkaSnapshotTopic)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":7070\"\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDR", ":6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTPAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projects: [unterminated"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	for _, v := range []string{"not a url", "ftp://host/api", "http://"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PROJECTS_BASE_URL", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PROJECTS_BASE_URL")
		})
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidProjectsTimeout(t *testing.T) {
	t.Setenv("PROJECTS_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJECTS_TIMEOUT")
}

func TestLoad_InvalidReloadTimeout(t *testing.T) {
	t.Setenv("RELOAD_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RELOAD_TIMEOUT")
}

func TestLoad_InvalidSeed(t *testing.T) {
	t.Setenv("SYNTHESIS_SEED", "-3")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNTHESIS_SEED")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("MAPBOX_CACHE_SIZE", "zero")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}
