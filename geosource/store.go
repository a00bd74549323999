package geosource

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"road-route-server/observability"
	"road-route-server/routing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GraphStore hands out the graph a request is routed on.
type GraphStore interface {
	Graph(ctx context.Context) (*routing.Graph, error)
}

// SnapshotInfo describes a built graph.
type SnapshotInfo struct {
	Version string    `json:"version"`
	BuiltAt time.Time `json:"built_at"`
	Nodes   int       `json:"nodes"`
	Edges   int       `json:"edges"`
}

func buildGraph(ctx context.Context, source Source, logger *zap.Logger, metrics *observability.Metrics) (*routing.Graph, error) {
	geoms, err := source.FetchGeometries(ctx)
	if err != nil {
		metrics.FetchFailed(source.Name())
		return nil, fmt.Errorf("failed to fetch geometries from %s: %w", source.Name(), err)
	}

	start := time.Now()
	g := routing.BuildGraph(geoms)
	elapsed := time.Since(start)
	metrics.ObserveGraphBuild(elapsed, g.NodeCount())

	logger.Debug("Road graph built",
		zap.String("source", source.Name()),
		zap.Int("geometries", len(geoms)),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Duration("elapsed", elapsed),
	)
	return g, nil
}

// FreshStore rebuilds the graph from its source on every call, so each
// request sees the data as it is at that moment.
type FreshStore struct {
	source  Source
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewFreshStore(source Source, logger *zap.Logger, metrics *observability.Metrics) *FreshStore {
	return &FreshStore{source: source, logger: logger, metrics: metrics}
}

func (s *FreshStore) Graph(ctx context.Context) (*routing.Graph, error) {
	return buildGraph(ctx, s.source, s.logger, s.metrics)
}

type snapshot struct {
	graph *routing.Graph
	info  SnapshotInfo
}

// SnapshotStore keeps one immutable graph and swaps it atomically when it is
// rebuilt. Concurrent rebuilds collapse into a single fetch. Requests in flight
// keep the graph they started with.
type SnapshotStore struct {
	source  Source
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics

	current atomic.Pointer[snapshot]
	stale   atomic.Bool
	group   singleflight.Group
	now     func() time.Time
}

// NewSnapshotStore creates an empty store. A ttl of zero never expires the
// snapshot; it is then rebuilt only through Refresh or Invalidate.
func NewSnapshotStore(source Source, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *SnapshotStore {
	return &SnapshotStore{
		source:  source,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Graph returns the current snapshot, rebuilding it first when it is missing,
// expired or invalidated. When a rebuild fails and an older snapshot exists,
// the older one is served.
func (s *SnapshotStore) Graph(ctx context.Context) (*routing.Graph, error) {
	snap := s.current.Load()
	if snap != nil && !s.expired(snap) {
		return snap.graph, nil
	}

	fresh, err := s.refresh(ctx)
	if err != nil {
		if snap != nil {
			s.logger.Warn("Graph rebuild failed, serving previous snapshot",
				zap.String("version", snap.info.Version),
				zap.Error(err),
			)
			return snap.graph, nil
		}
		return nil, err
	}
	return fresh.graph, nil
}

// Refresh rebuilds the snapshot now.
func (s *SnapshotStore) Refresh(ctx context.Context) (SnapshotInfo, error) {
	snap, err := s.refresh(ctx)
	if err != nil {
		return SnapshotInfo{}, err
	}
	return snap.info, nil
}

// Invalidate marks the snapshot stale; the next Graph call rebuilds it.
func (s *SnapshotStore) Invalidate() {
	s.stale.Store(true)
}

// Info describes the current snapshot, if any.
func (s *SnapshotStore) Info() (SnapshotInfo, bool) {
	snap := s.current.Load()
	if snap == nil {
		return SnapshotInfo{}, false
	}
	return snap.info, true
}

func (s *SnapshotStore) expired(snap *snapshot) bool {
	if s.stale.Load() {
		return true
	}
	return s.ttl > 0 && s.now().Sub(snap.info.BuiltAt) >= s.ttl
}

func (s *SnapshotStore) refresh(ctx context.Context) (*snapshot, error) {
	ch := s.group.DoChan("graph", func() (interface{}, error) {
		// Changes arriving while we fetch mark the new snapshot stale again.
		s.stale.Store(false)

		// The build is shared, so one caller cancelling must not abort it.
		g, err := buildGraph(context.WithoutCancel(ctx), s.source, s.logger, s.metrics)
		if err != nil {
			s.stale.Store(true)
			return nil, err
		}

		snap := &snapshot{
			graph: g,
			info: SnapshotInfo{
				Version: uuid.NewString(),
				BuiltAt: s.now(),
				Nodes:   g.NodeCount(),
				Edges:   g.EdgeCount(),
			},
		}
		s.current.Store(snap)
		s.logger.Info("Road graph snapshot ready",
			zap.String("version", snap.info.Version),
			zap.Int("nodes", snap.info.Nodes),
			zap.Int("edges", snap.info.Edges),
		)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
