package handlers

import (
	"net/http"

	"road-route-server/routing"
)

// StatusFor maps a routing failure to its HTTP status.
func StatusFor(err error) int {
	switch routing.KindOf(err) {
	case routing.KindInvalidInput, routing.KindTooClose:
		return http.StatusBadRequest
	case routing.KindNoNearbyNode, routing.KindNoPath:
		return http.StatusNotFound
	case routing.KindTooManyCandidates:
		return http.StatusUnprocessableEntity
	case routing.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case routing.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func invalidInput(err error) *routing.RouteError {
	return &routing.RouteError{Kind: routing.KindInvalidInput, Leg: -1, Message: err.Error(), Err: err}
}
