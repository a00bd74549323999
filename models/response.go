package models

import (
	"errors"

	"road-route-server/routing"
)

// FindPathResponse is returned by POST /find-path. Path points are [lat, lon].
type FindPathResponse struct {
	Path          [][2]float64  `json:"path"`
	TotalDistance float64       `json:"total_distance"`
	Legs          []routing.Leg `json:"legs"`
}

type DirectionsResponse struct {
	Path [][2]float64 `json:"path"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Leg       *int   `json:"leg,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Graph  any    `json:"graph,omitempty"`
}

func NewFindPathResponse(res *routing.Result) FindPathResponse {
	return FindPathResponse{
		Path:          PathPairs(res.Path),
		TotalDistance: res.TotalDistanceKm,
		Legs:          res.Legs,
	}
}

// PathPairs flattens coordinates to [lat, lon] pairs.
func PathPairs(coords []routing.Coordinate) [][2]float64 {
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		out[i] = c.Pair()
	}
	return out
}

// NewErrorResponse describes err. Leg is set only for leg-level failures.
func NewErrorResponse(err error, requestID string) ErrorResponse {
	resp := ErrorResponse{
		Error:     err.Error(),
		Code:      string(routing.KindOf(err)),
		RequestID: requestID,
	}
	var re *routing.RouteError
	if errors.As(err, &re) {
		resp.Error = re.Message
		if re.Leg >= 0 {
			leg := re.Leg
			resp.Leg = &leg
		}
	}
	return resp
}
