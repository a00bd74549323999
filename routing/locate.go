package routing

import (
	"math"
	"sort"
)

// Snap is a query coordinate mapped onto a graph node.
type Snap struct {
	Node       int        // Node id
	Coord      Coordinate // Node coordinate
	DistanceKm float64    // Distance from the query point to the node
}

// Locate returns the node nearest to p. It reports false when the graph is
// empty or the nearest node is farther than maxKm. Pass math.Inf(1) to accept
// any distance.
func Locate(g *Graph, p Coordinate, maxKm float64) (Snap, bool) {
	nearest := -1
	minDistance := math.Inf(1)

	for id, node := range g.nodesOrNil() {
		dist := Haversine(p, node)
		if dist < minDistance {
			minDistance = dist
			nearest = id
		}
	}

	if nearest < 0 || minDistance > maxKm {
		return Snap{}, false
	}
	return Snap{Node: nearest, Coord: g.nodes[nearest], DistanceKm: minDistance}, true
}

// Within returns every node within radiusKm of p, nearest first.
func Within(g *Graph, p Coordinate, radiusKm float64) []Snap {
	var out []Snap
	for id, node := range g.nodesOrNil() {
		if dist := Haversine(p, node); dist <= radiusKm {
			out = append(out, Snap{Node: id, Coord: node, DistanceKm: dist})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

func (g *Graph) nodesOrNil() []Coordinate {
	if g == nil {
		return nil
	}
	return g.nodes
}
