// Package geosource loads road geometries from files or MongoDB and turns them
// into routing graphs, either on every request or from a cached snapshot.
package geosource

import (
	"context"
	"fmt"

	"road-route-server/preprocessing"
	"road-route-server/routing"
)

// Source supplies the road geometries a graph is built from.
type Source interface {
	Name() string
	FetchGeometries(ctx context.Context) ([]routing.Geometry, error)
}

// FileSource reads a GeoJSON FeatureCollection from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file" }

// Path returns the file the source reads.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) FetchGeometries(ctx context.Context) ([]routing.Geometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	geoms, err := preprocessing.LoadGeoJSONFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	return geoms, nil
}

// StaticSource serves a fixed set of geometries.
type StaticSource []routing.Geometry

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) FetchGeometries(ctx context.Context) ([]routing.Geometry, error) {
	return s, ctx.Err()
}
