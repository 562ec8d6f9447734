// Package mongodb stores outbox events in a MongoDB collection, writing through the
// caller's session so events commit with the document change that raised them.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
)

// DefaultCollectionName is the default name for the outbox collection
const DefaultCollectionName = "outbox_events"

// ErrEventNotFound is returned by updates addressed to an unknown event id
var ErrEventNotFound = errors.New("event not found")

var oldestFirst = bson.D{{Key: "createdAt", Value: 1}}

// OutboxRepository implements outbox.Repository
type OutboxRepository struct {
	collection pkgmongo.Collection
}

func NewOutboxRepository(collection pkgmongo.Collection) *OutboxRepository {
	return &OutboxRepository{collection: collection}
}

func (r *OutboxRepository) Save(ctx context.Context, event *outbox.Event) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("save outbox event %s: %w", event.ID, err)
	}
	return nil
}

// SaveAll inserts events with one InsertMany. An empty slice is a no-op.
func (r *OutboxRepository) SaveAll(ctx context.Context, events []*outbox.Event) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]any, 0, len(events))
	for _, event := range events {
		docs = append(docs, event)
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("save %d outbox events: %w", len(events), err)
	}
	return nil
}

// FindUnpublished returns up to limit unpublished events with retries left, oldest first
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]*outbox.Event, error) {
	filter := bson.M{
		"publishedAt": bson.M{"$exists": false},
		"$expr":       bson.M{"$lt": bson.A{"$retryCount", "$maxRetries"}},
	}
	return r.find(ctx, filter, options.Find().SetSort(oldestFirst).SetLimit(int64(limit)))
}

// FindByAggregateID returns every event raised by one document, oldest first
func (r *OutboxRepository) FindByAggregateID(ctx context.Context, aggregateID string) ([]*outbox.Event, error) {
	return r.find(ctx, bson.M{"aggregateId": aggregateID}, options.Find().SetSort(oldestFirst))
}

func (r *OutboxRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*outbox.Event, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]*outbox.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode outbox events: %w", err)
	}
	return events, nil
}

// GetByID returns nil without error when the event does not exist
func (r *OutboxRepository) GetByID(ctx context.Context, eventID string) (*outbox.Event, error) {
	var event outbox.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get outbox event %s: %w", eventID, err)
	}
	return &event, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	return r.updateByID(ctx, eventID, bson.M{"$set": bson.M{"publishedAt": pkgmongo.Now()}})
}

// IncrementRetry records a failed relay attempt. The event is parked once retryCount
// reaches maxRetries.
func (r *OutboxRepository) IncrementRetry(ctx context.Context, eventID string, errorMsg string) error {
	return r.updateByID(ctx, eventID, bson.M{
		"$inc": bson.M{"retryCount": 1},
		"$set": bson.M{"lastError": errorMsg},
	})
}

func (r *OutboxRepository) updateByID(ctx context.Context, eventID string, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": eventID}, update)
	if err != nil {
		return fmt.Errorf("update outbox event %s: %w", eventID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return nil
}

// DeletePublished removes events published before the cutoff
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"publishedAt": bson.M{"$exists": true, "$lt": before},
	})
	if err != nil {
		return 0, fmt.Errorf("delete published outbox events: %w", err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates the indexes behind the relay, per-document and cleanup queries
func (r *OutboxRepository) EnsureIndexes(ctx context.Context) error {
	index := func(name string, keys ...string) mongo.IndexModel {
		spec := make(bson.D, 0, len(keys))
		for _, key := range keys {
			spec = append(spec, bson.E{Key: key, Value: 1})
		}
		return mongo.IndexModel{Keys: spec, Options: options.Index().SetName(name)}
	}

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		index("idx_publishedAt_createdAt", "publishedAt", "createdAt"),
		index("idx_aggregateId_createdAt", "aggregateId", "createdAt"),
		index("idx_eventType", "eventType"),
	})
	if err != nil {
		return fmt.Errorf("create outbox indexes: %w", err)
	}
	return nil
}
