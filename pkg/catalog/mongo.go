package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sperrors "github.com/matzehuels/safephase/pkg/errors"
)

// DefaultCollection holds catalog entries.
const DefaultCollection = "phase_catalog"

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and ensures the junction/created_at index.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if err := sperrors.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		return nil, sperrors.New(sperrors.ErrCodeInvalidConfig, "catalog database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, sperrors.Wrap(sperrors.ErrCodeStorage, err, "ping mongodb")
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "junction", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, sperrors.Wrap(sperrors.ErrCodeStorage, err, "create catalog index")
	}
	return s, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, time.Now())
	if err != nil {
		return Entry{}, err
	}
	if _, err := s.coll.InsertOne(ctx, e); err != nil {
		return Entry{}, sperrors.Wrap(sperrors.ErrCodeStorage, err, "insert catalog entry")
	}
	return e, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, junction string) (Entry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var e Entry
	err := s.coll.FindOne(ctx, bson.D{{Key: "junction", Value: junction}}, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, notFound(junction)
	}
	if err != nil {
		return Entry{}, sperrors.Wrap(sperrors.ErrCodeStorage, err, "find catalog entry")
	}
	return e, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$junction"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$doc"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "junction", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStorage, err, "list catalog")
	}
	defer cur.Close(ctx)

	var out []Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return out, nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
