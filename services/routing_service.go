package services

import (
	"context"
	"errors"
	"time"

	"road-route-server/geosource"
	"road-route-server/observability"
	"road-route-server/routing"

	"go.uber.org/zap"
)

// RoutingService answers route queries against the graph of a GraphStore.
type RoutingService struct {
	store   geosource.GraphStore
	opts    routing.Options
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRoutingService creates the service. A zero timeout leaves the deadline to
// the caller's context.
func NewRoutingService(store geosource.GraphStore, opts routing.Options, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *RoutingService {
	return &RoutingService{
		store:   store,
		opts:    opts,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the engine options the service routes with.
func (rs *RoutingService) Options() routing.Options {
	return rs.opts
}

// ComputeRoute validates the waypoints, obtains a graph and routes through
// every waypoint in order. Errors are always *routing.RouteError.
func (rs *RoutingService) ComputeRoute(ctx context.Context, waypoints []routing.Coordinate) (*routing.Result, error) {
	start := time.Now()
	res, err := rs.computeRoute(ctx, waypoints)
	elapsed := time.Since(start)

	if err != nil {
		kind := routing.KindOf(err)
		rs.metrics.ObserveRoute(string(kind), elapsed, 0)

		fields := []zap.Field{
			zap.String("kind", string(kind)),
			zap.Int("waypoints", len(waypoints)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		}
		switch kind {
		case routing.KindInternal, routing.KindUpstreamUnavailable:
			rs.logger.Error("Route computation failed", fields...)
		default:
			rs.logger.Info("Route request rejected", fields...)
		}
		return nil, err
	}

	rs.metrics.ObserveRoute("ok", elapsed, res.BridgedLegs())
	rs.logger.Debug("Route computed",
		zap.Int("waypoints", len(waypoints)),
		zap.Int("legs", len(res.Legs)),
		zap.Int("points", len(res.Path)),
		zap.Float64("total_km", res.TotalDistanceKm),
		zap.Int("bridged_legs", res.BridgedLegs()),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (rs *RoutingService) computeRoute(ctx context.Context, waypoints []routing.Coordinate) (*routing.Result, error) {
	// Reject bad input before paying for a graph load.
	if err := routing.Validate(waypoints, rs.opts); err != nil {
		return nil, err
	}

	if rs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rs.timeout)
		defer cancel()
	}

	g, err := rs.store.Graph(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, routing.Timeout(err)
		}
		return nil, routing.Upstream(err)
	}

	res, err := routing.Route(ctx, g, waypoints, rs.opts)
	if err != nil {
		var re *routing.RouteError
		if !errors.As(err, &re) {
			return nil, &routing.RouteError{Kind: routing.KindInternal, Leg: -1, Message: "route computation failed", Err: err}
		}
		return nil, err
	}
	return res, nil
}
