package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "file", cfg.Source.Kind)
	assert.Equal(t, "geojson_db", cfg.Source.MongoDatabase)
	assert.Equal(t, "map_data", cfg.Source.MongoCollection)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Breaker.Enabled)

	opts := cfg.RoutingOptions()
	assert.Equal(t, 0.1, opts.SnapThresholdKm)
	assert.Equal(t, 0.4, opts.BridgeThresholdKm)
	assert.Equal(t, 0.01, opts.MinLegDistanceKm)
	assert.Equal(t, 2500, opts.MaxBridgePairs)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
routing:
  snap_threshold_km: 0.6
  snap_unbounded: true
cache:
  enabled: true
  ttl: 30s
`), 0o644))
	t.Setenv("ROUTE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 0.6, cfg.Routing.SnapThresholdKm)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, math.IsInf(cfg.RoutingOptions().SnapThresholdKm, 1))
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"ROUTE_SOURCE_KIND": "postgres"}},
		{"mongo without uri", map[string]string{"ROUTE_SOURCE_KIND": "mongo"}},
		{"negative snap", map[string]string{"ROUTE_ROUTING_SNAP_THRESHOLD_KM": "-1"}},
		{"bad log level", map[string]string{"ROUTE_LOG_LEVEL": "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
