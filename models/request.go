package models

import "road-route-server/routing"

// FindPathRequest is the body of POST /find-path. Every point is [lat, lon].
type FindPathRequest struct {
	Start     []float64   `json:"start" binding:"required,len=2"`
	Waypoints [][]float64 `json:"waypoints,omitempty" binding:"omitempty,dive,len=2"`
	End       []float64   `json:"end" binding:"required,len=2"`
}

// Coordinates returns start, waypoints and end in travel order.
func (r FindPathRequest) Coordinates() []routing.Coordinate {
	out := make([]routing.Coordinate, 0, len(r.Waypoints)+2)
	out = append(out, pair(r.Start))
	for _, wp := range r.Waypoints {
		out = append(out, pair(wp))
	}
	return append(out, pair(r.End))
}

func pair(p []float64) routing.Coordinate {
	return routing.Coordinate{Lat: p[0], Lon: p[1]}
}

// DirectionsQuery is the query string of GET /directions.
type DirectionsQuery struct {
	StartLat *float64 `form:"startLat" binding:"required"`
	StartLon *float64 `form:"startLon" binding:"required"`
	EndLat   *float64 `form:"endLat" binding:"required"`
	EndLon   *float64 `form:"endLon" binding:"required"`
}

func (q DirectionsQuery) Coordinates() []routing.Coordinate {
	return []routing.Coordinate{
		{Lat: *q.StartLat, Lon: *q.StartLon},
		{Lat: *q.EndLat, Lon: *q.EndLon},
	}
}
