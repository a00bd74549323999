package routing

import (
	"context"
	"errors"
	"math"
)

var (
	ErrNoNearbyNode      = errors.New("no graph node within bridge radius")
	ErrTooManyCandidates = errors.New("too many bridge candidate pairs")
)

// Bridged is the best connection found between two loosely snapped points.
type Bridged struct {
	Path    Path
	Start   Snap
	End     Snap
	TotalKm float64 // Path distance plus both snap distances
}

// Bridge connects start and end when they do not snap within the primary
// threshold. Every node within radiusKm of start is paired with every node
// within radiusKm of end and the pair minimising path distance plus snap
// distances wins. maxPairs caps the candidate cross product (0 disables the
// cap). Each search from a start candidate ends once every end candidate is
// settled or no unsettled end can beat the best total found so far. The
// context is checked between start candidates and during each search.
func Bridge(ctx context.Context, g *Graph, start, end Coordinate, radiusKm float64, maxPairs int) (Bridged, error) {
	starts := Within(g, start, radiusKm)
	ends := Within(g, end, radiusKm)
	if len(starts) == 0 || len(ends) == 0 {
		return Bridged{}, ErrNoNearbyNode
	}
	if maxPairs > 0 && len(starts)*len(ends) > maxPairs {
		return Bridged{}, ErrTooManyCandidates
	}

	isEnd := make([]bool, g.NodeCount())
	for _, e := range ends {
		isEnd[e.Node] = true
	}

	best := Bridged{TotalKm: math.Inf(1)}
	var bestPrev []int

	for _, s := range starts {
		if err := ctx.Err(); err != nil {
			return Bridged{}, err
		}

		remaining := len(ends)
		dist, prev, settled, err := search(ctx, g, s.Node, func(u int, d float64) bool {
			// End snap distances are non-negative, so nothing at or past
			// this bound can improve on best.
			if d+s.DistanceKm >= best.TotalKm {
				return true
			}
			if isEnd[u] {
				remaining--
			}
			return remaining == 0
		})
		if err != nil {
			return Bridged{}, err
		}

		for _, e := range ends {
			if !settled[e.Node] {
				continue
			}
			total := dist[e.Node] + s.DistanceKm + e.DistanceKm
			if total < best.TotalKm {
				best = Bridged{
					Path:    Path{DistanceKm: dist[e.Node]},
					Start:   s,
					End:     e,
					TotalKm: total,
				}
				bestPrev = prev
			}
		}
	}

	if bestPrev == nil {
		return Bridged{}, ErrNoPath
	}

	best.Path.Nodes = reconstructPath(bestPrev, best.Start.Node, best.End.Node)
	return best, nil
}
