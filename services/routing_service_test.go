package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"road-route-server/geosource"
	"road-route-server/observability"
	"road-route-server/routing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fakeStore returns a fixed graph or error and counts calls.
type fakeStore struct {
	graph *routing.Graph
	err   error
	calls int
}

func (s *fakeStore) Graph(ctx context.Context) (*routing.Graph, error) {
	s.calls++
	return s.graph, s.err
}

func equatorRoad() *routing.Graph {
	return routing.BuildGraph([]routing.Geometry{{
		ID: "r",
		Coordinates: []routing.Coordinate{
			{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.005}, {Lat: 0, Lon: 0.01},
		},
	}})
}

func newService(t *testing.T, store geosource.GraphStore, metrics *observability.Metrics) *RoutingService {
	return NewRoutingService(store, routing.DefaultOptions(), time.Second, zaptest.NewLogger(t), metrics)
}

func TestComputeRoute(t *testing.T) {
	metrics := observability.NewMetrics()
	rs := newService(t, &fakeStore{graph: equatorRoad()}, metrics)

	res, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
	require.NoError(t, err)
	assert.Len(t, res.Path, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RouteRequests.WithLabelValues("ok")))
}

func TestComputeRouteValidatesBeforeLoadingGraph(t *testing.T) {
	store := &fakeStore{graph: equatorRoad()}
	metrics := observability.NewMetrics()
	rs := newService(t, store, metrics)

	_, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.00001}})
	assert.Equal(t, routing.KindTooClose, routing.KindOf(err))
	assert.Zero(t, store.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RouteRequests.WithLabelValues("TOO_CLOSE")))
}

func TestComputeRouteUpstreamFailure(t *testing.T) {
	cause := errors.New("connection refused")
	rs := newService(t, &fakeStore{err: cause}, nil)

	_, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
	assert.Equal(t, routing.KindUpstreamUnavailable, routing.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestComputeRouteStoreTimeout(t *testing.T) {
	rs := newService(t, &fakeStore{err: context.DeadlineExceeded}, nil)

	_, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
	assert.Equal(t, routing.KindTimeout, routing.KindOf(err))
}

func TestComputeRouteLegFailure(t *testing.T) {
	rs := newService(t, &fakeStore{graph: equatorRoad()}, nil)

	_, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}})

	var re *routing.RouteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, routing.KindNoNearbyNode, re.Kind)
	assert.Equal(t, 0, re.Leg)
}

func TestComputeRouteWithSnapshotStore(t *testing.T) {
	src := geosource.StaticSource{{
		ID:          "r",
		Coordinates: []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}},
	}}
	store := geosource.NewSnapshotStore(src, 0, zaptest.NewLogger(t), nil)
	rs := newService(t, store, nil)

	for i := 0; i < 2; i++ {
		res, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
		require.NoError(t, err)
		assert.InDelta(t, routing.Haversine(routing.Coordinate{}, routing.Coordinate{Lon: 0.01}), res.TotalDistanceKm, 1e-9)
	}
}

func TestComputeRouteWhileSnapshotsSwap(t *testing.T) {
	src := geosource.StaticSource{{
		ID:          "r",
		Coordinates: []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.005}, {Lat: 0, Lon: 0.01}},
	}}
	store := geosource.NewSnapshotStore(src, 0, zap.NewNop(), nil)
	first, err := store.Refresh(context.Background())
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	rs := NewRoutingService(store, routing.DefaultOptions(), time.Second, zap.NewNop(), metrics)
	want := routing.Haversine(routing.Coordinate{}, routing.Coordinate{Lon: 0.01})

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, err := rs.ComputeRoute(context.Background(), []routing.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.01}})
			if err != nil {
				errs <- err
				return
			}
			if math.Abs(res.TotalDistanceKm-want) > 1e-9 || len(res.Path) != 3 {
				errs <- fmt.Errorf("unexpected route: %v km over %d points", res.TotalDistanceKm, len(res.Path))
			}
		}()
		go func() {
			defer wg.Done()
			store.Invalidate()
			if _, err := store.Refresh(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, float64(workers), testutil.ToFloat64(metrics.RouteRequests.WithLabelValues("ok")))

	last, ok := store.Info()
	require.True(t, ok)
	assert.NotEqual(t, first.Version, last.Version)
	assert.Equal(t, 3, last.Nodes)
}
