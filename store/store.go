// Package store wraps the MongoDB document store. Connections are scoped to
// a single logical operation: each call connects (with a retry budget),
// performs its query and disconnects. Request volume is low enough that the
// reconnect cost is an accepted tradeoff.
package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/volfir1/EcoPulseBackend/config"
	"github.com/volfir1/EcoPulseBackend/models"
)

// Collection names in the ecopulse database.
const (
	CollectionPredictive     = "predictiveAnalysis"
	CollectionPeerToPeer     = "peertopeer"
	CollectionRecommendation = "recommendation"
)

// ErrUnavailable is returned when the store could not be reached after the
// configured retry budget. It is the only store failure that surfaces as a
// hard error to the outermost caller.
var ErrUnavailable = errors.New("document store unavailable")

type Store struct {
	cfg config.MongoConfig
	log *logrus.Logger
}

func New(cfg config.MongoConfig, log *logrus.Logger) *Store {
	return &Store{cfg: cfg, log: log}
}

// ActualOnlyFilter selects records where isPredicted is false or absent:
// persisted ground truth, never synthesized rows.
func ActualOnlyFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"isPredicted": false},
		bson.M{"isPredicted": bson.M{"$exists": false}},
	}}
}

// backoffDelay computes the delay before retry attempt n (0-based):
// exponential from the configured base, with ±25% jitter.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := float64(base) * float64(int64(1)<<uint(attempt))
	jitter := 1 + (rand.Float64()*0.5 - 0.25)
	return time.Duration(d * jitter)
}

// connect dials and pings the server, retrying with exponential backoff.
func (s *Store) connect(ctx context.Context) (*mongo.Client, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.RetryAttempts; attempt++ {
		dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(s.cfg.URI))
		if err == nil {
			err = client.Ping(dialCtx, nil)
			if err == nil {
				cancel()
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		cancel()
		lastErr = err
		s.log.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"retries": s.cfg.RetryAttempts,
		}).Errorf("mongo connection failed: %v", err)

		if attempt < s.cfg.RetryAttempts-1 {
			select {
			case <-time.After(backoffDelay(s.cfg.BackoffBase, attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, s.cfg.RetryAttempts, lastErr)
}

// Find returns all documents of a collection matching the filter, with the
// Mongo _id stripped.
func (s *Store) Find(ctx context.Context, collection string, filter bson.M) ([]models.MetricRecord, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(context.Background())

	coll := client.Database(s.cfg.Database).Collection(collection)
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find on %s failed: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s documents failed: %w", collection, err)
	}

	records := make([]models.MetricRecord, 0, len(docs))
	for _, doc := range docs {
		rec := make(models.MetricRecord, len(doc))
		for k, v := range doc {
			if k == "_id" {
				continue
			}
			rec[k] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindAll returns every document in a collection.
func (s *Store) FindAll(ctx context.Context, collection string) ([]models.MetricRecord, error) {
	return s.Find(ctx, collection, bson.M{})
}

// FindActualOnly returns only persisted ground-truth records.
func (s *Store) FindActualOnly(ctx context.Context, collection string) ([]models.MetricRecord, error) {
	return s.Find(ctx, collection, ActualOnlyFilter())
}

// FindByYear returns all documents of a collection for one year.
func (s *Store) FindByYear(ctx context.Context, collection string, year int) ([]models.MetricRecord, error) {
	return s.Find(ctx, collection, bson.M{"Year": year})
}

// InsertOne persists an actual record, forcing isPredicted=false. Returns
// the generated document id.
func (s *Store) InsertOne(ctx context.Context, collection string, record models.MetricRecord) (string, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Disconnect(context.Background())

	doc := record.Clone()
	doc["isPredicted"] = false
	if year, ok := doc.Year(); ok {
		doc["Year"] = year
	}

	coll := client.Database(s.cfg.Database).Collection(collection)
	res, err := coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("insert into %s failed: %w", collection, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}
