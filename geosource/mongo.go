package geosource

import (
	"context"
	"fmt"
	"time"

	"road-route-server/preprocessing"
	"road-route-server/routing"

	"github.com/paulmach/orb/geojson"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoSource reads FeatureCollection documents from a MongoDB collection.
// Every document in the collection is one FeatureCollection.
type MongoSource struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoSource connects to uri and verifies the connection with a ping.
func NewMongoSource(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoSource, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	s := &MongoSource{
		client:  client,
		coll:    client.Database(database).Collection(collection),
		timeout: timeout,
	}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoSource) Name() string { return "mongo" }

// Ping checks that the server is reachable.
func (s *MongoSource) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// FetchGeometries reads every stored collection. Features without an id are
// numbered across documents so ids stay unique.
func (s *MongoSource) FetchGeometries(ctx context.Context) ([]routing.Geometry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo source: find: %w", err)
	}
	defer cur.Close(ctx)

	var geoms []routing.Geometry
	offset := 0
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo source: decode: %w", err)
		}
		id := doc["_id"]
		fc, err := featureCollectionFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("mongo source: document %v: %w", id, err)
		}
		geoms = append(geoms, preprocessing.GeometriesFromFeatures(fc, offset)...)
		offset += len(fc.Features)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo source: cursor: %w", err)
	}
	return geoms, nil
}

// Insert stores a GeoJSON FeatureCollection as one document and returns its id.
func (s *MongoSource) Insert(ctx context.Context, raw []byte) (string, error) {
	if _, err := geojson.UnmarshalFeatureCollection(raw); err != nil {
		return "", fmt.Errorf("not a feature collection: %w", err)
	}

	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return "", fmt.Errorf("failed to convert geojson to bson: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert feature collection: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// featureCollectionFromDocument round-trips a stored document through relaxed
// extended JSON, which for GeoJSON documents is plain GeoJSON.
func featureCollectionFromDocument(doc bson.M) (*geojson.FeatureCollection, error) {
	delete(doc, "_id")

	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}
