// Package bootstrap assembles the geometry source, graph store and routing
// service described by a Config.
package bootstrap

import (
	"context"
	"fmt"

	"road-route-server/config"
	"road-route-server/geosource"
	"road-route-server/observability"
	"road-route-server/services"

	"go.uber.org/zap"
)

// Components is everything the servers need to answer route requests.
type Components struct {
	Source    geosource.Source
	Store     geosource.GraphStore
	Snapshots *geosource.SnapshotStore // nil unless the graph cache is enabled
	Service   *services.RoutingService

	closers []func() error
}

// Close releases watchers and connections.
func (c *Components) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewSource opens the configured geometry source.
func NewSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (geosource.Source, func() error, error) {
	switch cfg.Source.Kind {
	case "mongo":
		src, err := geosource.NewMongoSource(ctx, cfg.Source.MongoURI, cfg.Source.MongoDatabase, cfg.Source.MongoCollection, cfg.Source.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to MongoDB",
			zap.String("database", cfg.Source.MongoDatabase),
			zap.String("collection", cfg.Source.MongoCollection),
		)
		return src, func() error { return src.Close(context.Background()) }, nil
	case "file":
		return geosource.NewFileSource(cfg.Source.File), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// Build wires source, store and service together.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*Components, error) {
	src, closeSource, err := NewSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c := &Components{closers: []func() error{closeSource}}

	c.Source = src
	if cfg.Breaker.Enabled {
		c.Source = geosource.NewBreakerSource(src, cfg.BreakerSettings(), logger)
	}

	if cfg.Cache.Enabled {
		c.Snapshots = geosource.NewSnapshotStore(c.Source, cfg.Cache.TTL, logger, metrics)
		c.Store = c.Snapshots

		if cfg.Cache.Watch && cfg.Source.Kind == "file" {
			stop, err := c.Snapshots.Watch(cfg.Source.File)
			if err != nil {
				c.Close()
				return nil, err
			}
			c.closers = append(c.closers, stop)
		}
	} else {
		c.Store = geosource.NewFreshStore(c.Source, logger, metrics)
	}

	c.Service = services.NewRoutingService(c.Store, cfg.RoutingOptions(), cfg.Server.RequestTimeout, logger, metrics)
	return c, nil
}

// Warm builds the first snapshot so the first request does not pay for it.
// A failure is logged and left for the next request to retry.
func (c *Components) Warm(ctx context.Context, logger *zap.Logger) {
	if c.Snapshots == nil {
		return
	}
	if _, err := c.Snapshots.Refresh(ctx); err != nil {
		logger.Warn("Initial graph build failed", zap.Error(err))
	}
}
