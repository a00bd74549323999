package routing

import (
	"context"
	"errors"
	"fmt"
)

// Options controls snapping and bridging for a route query.
type Options struct {
	SnapThresholdKm   float64 // Primary snap radius
	BridgeThresholdKm float64 // Candidate radius used when a leg endpoint does not snap
	MinLegDistanceKm  float64 // Requests whose start and end are closer are rejected
	MaxBridgePairs    int     // Cap on bridge candidate pairs, 0 for none
}

// DefaultOptions mirrors the defaults of the server configuration.
func DefaultOptions() Options {
	return Options{
		SnapThresholdKm:   0.1,
		BridgeThresholdKm: 0.4,
		MinLegDistanceKm:  0.01,
		MaxBridgePairs:    2500,
	}
}

// Leg summarises one waypoint pair of a route.
type Leg struct {
	Index       int        `json:"index"`
	From        Coordinate `json:"from"`
	To          Coordinate `json:"to"`
	DistanceKm  float64    `json:"distance_km"`
	Bridged     bool       `json:"bridged"`
	StartSnapKm float64    `json:"start_snap_km"`
	EndSnapKm   float64    `json:"end_snap_km"`
}

// Result is a stitched route over all legs.
type Result struct {
	Path            []Coordinate
	TotalDistanceKm float64
	Legs            []Leg
}

// BridgedLegs counts the legs that needed GapBridge.
func (r *Result) BridgedLegs() int {
	n := 0
	for _, l := range r.Legs {
		if l.Bridged {
			n++
		}
	}
	return n
}

// Validate checks a waypoint list before any graph work: at least two valid
// coordinates, and first and last at least MinLegDistanceKm apart.
func Validate(waypoints []Coordinate, opts Options) error {
	if len(waypoints) < 2 {
		return requestError(KindInvalidInput, "at least a start and an end coordinate are required")
	}
	for i, wp := range waypoints {
		if !wp.Valid() {
			return requestError(KindInvalidInput, fmt.Sprintf("coordinate %d %s is out of range", i, wp))
		}
	}

	first, last := waypoints[0], waypoints[len(waypoints)-1]
	if Haversine(first, last) < opts.MinLegDistanceKm {
		return requestError(KindTooClose, "start and end points are too close")
	}
	return nil
}

// Route computes a continuous route through all waypoints. Any failing leg
// aborts the whole request; no partial route is returned.
func Route(ctx context.Context, g *Graph, waypoints []Coordinate, opts Options) (*Result, error) {
	if err := Validate(waypoints, opts); err != nil {
		return nil, err
	}

	res := &Result{}
	for i := 0; i+1 < len(waypoints); i++ {
		leg, coords, err := routeLeg(ctx, g, i, waypoints[i], waypoints[i+1], opts)
		if err != nil {
			return nil, err
		}

		for _, c := range coords {
			if n := len(res.Path); n > 0 && res.Path[n-1].Same(c) {
				continue
			}
			res.Path = append(res.Path, c)
		}
		res.TotalDistanceKm += leg.DistanceKm
		res.Legs = append(res.Legs, leg)
	}

	return res, nil
}

func routeLeg(ctx context.Context, g *Graph, index int, from, to Coordinate, opts Options) (Leg, []Coordinate, error) {
	leg := Leg{Index: index, From: from, To: to}

	startSnap, startOK := Locate(g, from, opts.SnapThresholdKm)
	endSnap, endOK := Locate(g, to, opts.SnapThresholdKm)

	if startOK && endOK {
		path, err := ShortestPath(g, startSnap.Node, endSnap.Node)
		if err != nil {
			return leg, nil, legError(KindNoPath, index, from, to, "no path between snapped nodes", nil)
		}
		leg.StartSnapKm = startSnap.DistanceKm
		leg.EndSnapKm = endSnap.DistanceKm
		leg.DistanceKm = path.DistanceKm + startSnap.DistanceKm + endSnap.DistanceKm
		return leg, g.Coordinates(path.Nodes), nil
	}

	bridged, err := Bridge(ctx, g, from, to, opts.BridgeThresholdKm, opts.MaxBridgePairs)
	if err != nil {
		return leg, nil, bridgeError(index, from, to, err)
	}
	leg.Bridged = true
	leg.StartSnapKm = bridged.Start.DistanceKm
	leg.EndSnapKm = bridged.End.DistanceKm
	leg.DistanceKm = bridged.TotalKm
	return leg, g.Coordinates(bridged.Path.Nodes), nil
}

func bridgeError(index int, from, to Coordinate, err error) error {
	switch {
	case errors.Is(err, ErrNoNearbyNode):
		return legError(KindNoNearbyNode, index, from, to, "no nearby road found, even after attempting to connect different paths", nil)
	case errors.Is(err, ErrTooManyCandidates):
		return legError(KindTooManyCandidates, index, from, to, "too many candidate nodes around endpoints", nil)
	case errors.Is(err, ErrNoPath):
		return legError(KindNoPath, index, from, to, "cannot connect endpoints, even after attempting to connect different paths", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return legError(KindTimeout, index, from, to, "route search aborted", err)
	default:
		return legError(KindInternal, index, from, to, "bridge failed", err)
	}
}
