// Command geojson_import stores a GeoJSON FeatureCollection of roads in
// MongoDB, where the server's mongo source reads it from.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"road-route-server/geosource"
	"road-route-server/preprocessing"
	"road-route-server/routing"
)

func main() {
	var file, uri, database, collection string
	var timeout time.Duration
	flag.StringVar(&file, "file", "data/map.geojson", "Path to the GeoJSON FeatureCollection to import")
	flag.StringVar(&uri, "uri", os.Getenv("ROUTE_SOURCE_MONGO_URI"), "MongoDB connection string")
	flag.StringVar(&database, "db", "geojson_db", "Database name")
	flag.StringVar(&collection, "collection", "map_data", "Collection name")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for connecting and inserting")
	flag.Parse()

	if uri == "" {
		log.Fatal("a MongoDB uri is required (-uri or ROUTE_SOURCE_MONGO_URI)")
	}

	log.Printf("Reading GeoJSON from %s...", file)
	raw, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("failed to read %s: %v", file, err)
	}
	geoms, err := preprocessing.ParseFeatureCollection(raw)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", file, err)
	}
	g := routing.BuildGraph(geoms)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	src, err := geosource.NewMongoSource(ctx, uri, database, collection, timeout)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer src.Close(context.Background())

	id, err := src.Insert(ctx, raw)
	if err != nil {
		log.Fatalf("failed to import: %v", err)
	}

	fmt.Printf("Feature collection stored in %s.%s with id %s\n", database, collection, id)
	fmt.Printf("Summary: lines=%d nodes=%d edges=%d\n", len(geoms), g.NodeCount(), g.EdgeCount())
}
