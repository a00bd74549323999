package routing

import (
	"errors"
	"fmt"
)

// Kind classifies a routing failure.
type Kind string

const (
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindTooClose            Kind = "TOO_CLOSE"
	KindNoNearbyNode        Kind = "NO_NEARBY_NODE"
	KindNoPath              Kind = "NO_PATH"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindTimeout             Kind = "TIMEOUT"
	KindTooManyCandidates   Kind = "TOO_MANY_CANDIDATES"
	KindInternal            Kind = "INTERNAL"
)

// RouteError is the single error type returned across the engine boundary.
// Leg is the zero-based leg index, or -1 when the failure concerns the whole
// request.
type RouteError struct {
	Kind    Kind
	Leg     int
	From    Coordinate
	To      Coordinate
	Message string
	Err     error
}

func (e *RouteError) Error() string {
	msg := e.Message
	if e.Leg >= 0 {
		msg = fmt.Sprintf("leg %d %s -> %s: %s", e.Leg, e.From, e.To, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

func requestError(kind Kind, msg string) *RouteError {
	return &RouteError{Kind: kind, Leg: -1, Message: msg}
}

func legError(kind Kind, leg int, from, to Coordinate, msg string, err error) *RouteError {
	return &RouteError{Kind: kind, Leg: leg, From: from, To: to, Message: msg, Err: err}
}

// Upstream wraps a geometry source failure.
func Upstream(err error) *RouteError {
	return &RouteError{Kind: KindUpstreamUnavailable, Leg: -1, Message: "geometry source unavailable", Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindInternal
}

// Timeout reports a request that ran out of time outside a leg.
func Timeout(err error) *RouteError {
	return &RouteError{Kind: KindTimeout, Leg: -1, Message: "route request timed out", Err: err}
}
