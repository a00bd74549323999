package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"road-route-server/config"
	"road-route-server/geosource"
	"road-route-server/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const roads = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[0.005,0],[0.01,0]]},"properties":{}}
]}`

func fileConfig(t *testing.T) *config.Config {
	path := filepath.Join(t.TempDir(), "map.geojson")
	require.NoError(t, os.WriteFile(path, []byte(roads), 0o644))
	t.Setenv("ROUTE_SOURCE_FILE", path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestBuildFreshStore(t *testing.T) {
	cfg := fileConfig(t)

	c, err := Build(context.Background(), cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Snapshots)
	assert.IsType(t, &geosource.FreshStore{}, c.Store)
	assert.IsType(t, &geosource.BreakerSource{}, c.Source)

	res, err := c.Service.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
	require.NoError(t, err)
	assert.Len(t, res.Path, 3)
}

func TestBuildSnapshotStoreWithWatch(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Watch = true
	cfg.Breaker.Enabled = false

	c, err := Build(context.Background(), cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Snapshots)
	assert.IsType(t, &geosource.FileSource{}, c.Source)

	c.Warm(context.Background(), zap.NewNop())
	info, ok := c.Snapshots.Info()
	require.True(t, ok)
	assert.Equal(t, 3, info.Nodes)
}
