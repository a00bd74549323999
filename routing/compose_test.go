package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteThreeVertexLine(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 1}, [2]float64{0, 2})})

	res, err := Route(context.Background(), g, []Coordinate{{0, 0}, {0, 2}}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []Coordinate{{0, 0}, {0, 1}, {0, 2}}, res.Path)
	want := Haversine(Coordinate{0, 0}, Coordinate{0, 1}) + Haversine(Coordinate{0, 1}, Coordinate{0, 2})
	assert.InDelta(t, want, res.TotalDistanceKm, 1e-9)
	require.Len(t, res.Legs, 1)
	assert.False(t, res.Legs[0].Bridged)
}

func TestRouteAddsSnapDistances(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 0.01})})
	start := Coordinate{Lat: 0.0005, Lon: 0}
	end := Coordinate{Lat: 0.0005, Lon: 0.01}

	res, err := Route(context.Background(), g, []Coordinate{start, end}, DefaultOptions())
	require.NoError(t, err)

	want := Haversine(start, Coordinate{0, 0}) + Haversine(Coordinate{0, 0}, Coordinate{0, 0.01}) + Haversine(Coordinate{0, 0.01}, end)
	assert.InDelta(t, want, res.TotalDistanceKm, 1e-9)
	assert.Greater(t, res.Legs[0].StartSnapKm, 0.0)
}

func TestRouteWaypointsDeduplicated(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 0.005}, [2]float64{0, 0.01})})
	waypoints := []Coordinate{{0, 0}, {0, 0.0050000004}, {0, 0.01}}

	res, err := Route(context.Background(), g, waypoints, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []Coordinate{{0, 0}, {0, 0.005}, {0, 0.01}}, res.Path)
	for i := 1; i < len(res.Path); i++ {
		assert.False(t, res.Path[i-1].Same(res.Path[i]), "duplicate junction at %d", i)
	}
	assert.Len(t, res.Legs, 2)
}

func TestRouteRoundTripSymmetry(t *testing.T) {
	var geoms []Geometry
	for i := 0; i < 4; i++ {
		lat := float64(i) * 0.002
		geoms = append(geoms, line("row", [2]float64{lat, 0}, [2]float64{lat, 0.002}, [2]float64{lat, 0.004}, [2]float64{lat, 0.006}))
		lon := float64(i) * 0.002
		geoms = append(geoms, line("col", [2]float64{0, lon}, [2]float64{0.002, lon}, [2]float64{0.004, lon}, [2]float64{0.006, lon}))
	}
	g := BuildGraph(geoms)
	a := Coordinate{Lat: 0, Lon: 0}
	b := Coordinate{Lat: 0.006, Lon: 0.004}

	there, err := Route(context.Background(), g, []Coordinate{a, b}, DefaultOptions())
	require.NoError(t, err)
	back, err := Route(context.Background(), g, []Coordinate{b, a}, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, there.TotalDistanceKm, back.TotalDistanceKm, 1e-9)
}

func TestRouteBridgesGap(t *testing.T) {
	g := gapGraph()
	start := Coordinate{Lat: 0, Lon: 0.011}

	res, err := Route(context.Background(), g, []Coordinate{start, {0, 0.02}}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Legs, 1)
	assert.True(t, res.Legs[0].Bridged)
	assert.Equal(t, 1, res.BridgedLegs())
	assert.Equal(t, Coordinate{0, 0.012}, res.Path[0])
	assert.InDelta(t, Haversine(start, Coordinate{0, 0.012})+Haversine(Coordinate{0, 0.012}, Coordinate{0, 0.02}), res.TotalDistanceKm, 1e-9)
}

func TestRouteTooCloseBeforeGraphWork(t *testing.T) {
	// A nil graph would fail any snapping, so the error proves no graph work ran.
	_, err := Route(context.Background(), nil, []Coordinate{{0, 0}, {0, 0.00001}}, DefaultOptions())

	var re *RouteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindTooClose, re.Kind)
	assert.Equal(t, -1, re.Leg)
}

func TestRouteInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		waypoints []Coordinate
	}{
		{"empty", nil},
		{"single", []Coordinate{{0, 0}}},
		{"out of range", []Coordinate{{0, 0}, {91, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Route(context.Background(), BuildGraph(nil), tt.waypoints, DefaultOptions())
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestRouteFailuresReportLeg(t *testing.T) {
	g := gapGraph()
	opts := DefaultOptions()

	tests := []struct {
		name      string
		waypoints []Coordinate
		opts      func(*Options)
		kind      Kind
		leg       int
	}{
		{
			name:      "snapped but disconnected",
			waypoints: []Coordinate{{0, 0}, {0, 0.005}, {0, 0.02}},
			kind:      KindNoPath,
			leg:       1,
		},
		{
			name:      "nothing nearby",
			waypoints: []Coordinate{{0, 0}, {1, 1}},
			kind:      KindNoNearbyNode,
			leg:       0,
		},
		{
			name:      "bridge candidates disconnected",
			waypoints: []Coordinate{{0.0015, 0.01}, {0.0015, 0.02}},
			opts:      func(o *Options) { o.BridgeThresholdKm = 0.2 },
			kind:      KindNoPath,
			leg:       0,
		},
		{
			name:      "candidate cap",
			waypoints: []Coordinate{{0, 0.011}, {0, 0.02}},
			opts:      func(o *Options) { o.MaxBridgePairs = 1 },
			kind:      KindTooManyCandidates,
			leg:       0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := opts
			if tt.opts != nil {
				tt.opts(&o)
			}
			res, err := Route(context.Background(), g, tt.waypoints, o)
			assert.Nil(t, res, "no partial route")

			var re *RouteError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, tt.leg, re.Leg)
			assert.Equal(t, tt.waypoints[tt.leg], re.From)
			assert.Equal(t, tt.waypoints[tt.leg+1], re.To)
		})
	}
}

func TestRouteTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Route(ctx, gapGraph(), []Coordinate{{0, 0.011}, {0, 0.02}}, DefaultOptions())
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindUpstreamUnavailable, KindOf(Upstream(errors.New("db down"))))
}
