package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/roach88/sqlmongo/internal/literal"
)

// Defaults for MongoOptions.
const (
	DefaultURI                    = "mongodb://localhost:27017/"
	DefaultDatabase               = "campus"
	DefaultServerSelectionTimeout = 2 * time.Second
)

// MongoOptions configures a MongoDB-backed store.
type MongoOptions struct {
	URI                    string
	Database               string
	ServerSelectionTimeout time.Duration
	Logger                 *slog.Logger
}

func (o MongoOptions) withDefaults() MongoOptions {
	if o.URI == "" {
		o.URI = DefaultURI
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.ServerSelectionTimeout <= 0 {
		o.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Mongo runs find queries against a MongoDB database.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *slog.Logger
}

// OpenMongo creates a client for opts.URI. The driver connects lazily, so
// an unreachable server is reported by Ping rather than here.
func OpenMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	opts = opts.withDefaults()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.URI, err)
	}

	return &Mongo{
		client:  client,
		db:      client.Database(opts.Database),
		timeout: opts.ServerSelectionTimeout,
		logger:  opts.Logger,
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable within the server selection
// timeout. Failures wrap ErrUnavailable.
func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Find runs collection.find(filter, projection) and returns every document
// in cursor order. A collection that does not exist yields no documents.
func (m *Mongo) Find(ctx context.Context, collection string, filter, projection *literal.Mapping) ([]*literal.Mapping, error) {
	findOpts := options.Find()
	if projection != nil && projection.Len() > 0 {
		findOpts.SetProjection(toBSONDoc(projection))
	}

	m.logger.Debug("find", "database", m.db.Name(), "collection", collection)

	cursor, err := m.db.Collection(collection).Find(ctx, toBSONDoc(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var raw []bson.D
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	docs := make([]*literal.Mapping, 0, len(raw))
	for i, d := range raw {
		doc, err := fromBSONDoc(d)
		if err != nil {
			return nil, fmt.Errorf("find: document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Collections returns the collection names of the database.
func (m *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("collections: %w", err)
	}
	return names, nil
}
