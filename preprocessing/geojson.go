package preprocessing

import (
	"fmt"
	"os"
	"strconv"

	"road-route-server/routing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSONFile reads a GeoJSON FeatureCollection of road lines.
func LoadGeoJSONFile(path string) ([]routing.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read geojson file: %w", err)
	}
	geoms, err := ParseFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return geoms, nil
}

// ParseFeatureCollection decodes a FeatureCollection and keeps its line features.
func ParseFeatureCollection(data []byte) ([]routing.Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}
	return GeometriesFromFeatures(fc, 0), nil
}

// GeometriesFromFeatures converts LineString and MultiLineString features to
// routing geometries. GeoJSON positions are [lon, lat]. Features without an id
// are named after their position in the collection, counted from offset.
// Other geometry types are skipped.
func GeometriesFromFeatures(fc *geojson.FeatureCollection, offset int) []routing.Geometry {
	var out []routing.Geometry
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		id := featureID(f, offset+i)

		switch geom := f.Geometry.(type) {
		case orb.LineString:
			out = append(out, routing.Geometry{ID: id, Coordinates: lineCoordinates(geom)})
		case orb.MultiLineString:
			for k, ls := range geom {
				out = append(out, routing.Geometry{
					ID:          id + "#" + strconv.Itoa(k),
					Coordinates: lineCoordinates(ls),
				})
			}
		}
	}
	return out
}

func featureID(f *geojson.Feature, index int) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return strconv.Itoa(index)
}

func lineCoordinates(ls orb.LineString) []routing.Coordinate {
	coords := make([]routing.Coordinate, len(ls))
	for i, p := range ls {
		coords[i] = routing.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
	}
	return coords
}

// RouteFeature renders a computed route as a GeoJSON LineString feature.
func RouteFeature(res *routing.Result) *geojson.Feature {
	ls := make(orb.LineString, len(res.Path))
	for i, c := range res.Path {
		ls[i] = orb.Point{c.Lon, c.Lat}
	}

	f := geojson.NewFeature(ls)
	f.Properties["total_distance"] = res.TotalDistanceKm
	f.Properties["legs"] = len(res.Legs)
	f.Properties["bridged_legs"] = res.BridgedLegs()
	return f
}
