package routing

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// equalPath compares two slices of node IDs for equality.
func equalPath(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimpleShortestPath(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 1}, [2]float64{0, 2})})
	a, b, c := mustLookup(t, g, 0, 0), mustLookup(t, g, 0, 1), mustLookup(t, g, 0, 2)

	path, err := ShortestPath(g, a, c)
	if err != nil {
		t.Fatalf("ShortestPath returned error: %v", err)
	}
	expected := []int{a, b, c}
	if !equalPath(path.Nodes, expected) {
		t.Errorf("expected path %v, got %v", expected, path.Nodes)
	}

	wab, _ := g.Weight(a, b)
	wbc, _ := g.Weight(b, c)
	assert.InDelta(t, wab+wbc, path.DistanceKm, 1e-9)
}

func TestShortestPathPrefersShorterDetour(t *testing.T) {
	// Two ways from a to c; the southern one is shorter.
	g := BuildGraph([]Geometry{
		line("north", [2]float64{0, 0}, [2]float64{0.01, 0.005}, [2]float64{0, 0.01}),
		line("south", [2]float64{0, 0}, [2]float64{-0.001, 0.005}, [2]float64{0, 0.01}),
	})
	a, c := mustLookup(t, g, 0, 0), mustLookup(t, g, 0, 0.01)
	south := mustLookup(t, g, -0.001, 0.005)

	path, err := ShortestPath(g, a, c)
	require.NoError(t, err)
	assert.Equal(t, []int{a, south, c}, path.Nodes)
}

func TestShortestPathSameNode(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 1})})

	path, err := ShortestPath(g, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, path.Nodes)
	assert.Equal(t, 0.0, path.DistanceKm)
}

func TestShortestPathDisconnected(t *testing.T) {
	g := BuildGraph([]Geometry{
		line("west", [2]float64{0, 0}, [2]float64{0, 1}),
		line("east", [2]float64{0, 5}, [2]float64{0, 6}),
	})

	_, err := ShortestPath(g, mustLookup(t, g, 0, 0), mustLookup(t, g, 0, 6))
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = ShortestPath(g, 0, 99)
	assert.ErrorIs(t, err, ErrNoPath)
}

// bruteForce enumerates every simple path between from and to.
func bruteForce(g *Graph, from, to int) float64 {
	best := math.Inf(1)
	visited := make([]bool, g.NodeCount())

	var walk func(u int, acc float64)
	walk = func(u int, acc float64) {
		if u == to {
			if acc < best {
				best = acc
			}
			return
		}
		visited[u] = true
		for _, e := range g.Neighbors(u) {
			if !visited[e.To] {
				walk(e.To, acc+e.WeightKm)
			}
		}
		visited[u] = false
	}
	walk(from, 0)
	return best
}

func randomGraph(r *rand.Rand, nodes, segments int) *Graph {
	pts := make([][2]float64, nodes)
	for i := range pts {
		pts[i] = [2]float64{r.Float64() * 0.05, r.Float64() * 0.05}
	}
	var geoms []Geometry
	for i := 0; i < segments; i++ {
		a, b := r.Intn(nodes), r.Intn(nodes)
		geoms = append(geoms, line(fmt.Sprintf("s%d", i), pts[a], pts[b]))
	}
	return BuildGraph(geoms)
}

func TestShortestPathMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 25; round++ {
		g := randomGraph(r, 8, 14)
		for from := 0; from < g.NodeCount(); from++ {
			for to := 0; to < g.NodeCount(); to++ {
				want := bruteForce(g, from, to)
				path, err := ShortestPath(g, from, to)

				if math.IsInf(want, 1) {
					assert.ErrorIs(t, err, ErrNoPath)
					continue
				}
				require.NoError(t, err)
				assert.InDelta(t, want, path.DistanceKm, 1e-9, "round %d %d->%d", round, from, to)

				weight, ok := PathWeight(g, path.Nodes)
				require.True(t, ok, "returned path uses a missing edge")
				assert.InDelta(t, path.DistanceKm, weight, 1e-12)
				assert.Equal(t, from, path.Nodes[0])
				assert.Equal(t, to, path.Nodes[len(path.Nodes)-1])
			}
		}
	}
}

func TestPathWeightRejectsGaps(t *testing.T) {
	g := BuildGraph([]Geometry{line("r", [2]float64{0, 0}, [2]float64{0, 1}, [2]float64{0, 2})})

	_, ok := PathWeight(g, []int{mustLookup(t, g, 0, 0), mustLookup(t, g, 0, 2)})
	assert.False(t, ok)
}
