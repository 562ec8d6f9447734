package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
)

func newTestEvent(t *testing.T) *outbox.Event {
	t.Helper()
	factory := cloudevents.NewEventFactory(cloudevents.SourceInventory)
	ce := factory.CreateEvent(context.Background(), "receiving.stock-in.posted", "stock-in/si-1", map[string]string{"stockInId": "si-1"})
	event, err := outbox.NewEvent("si-1", "StockIn", "jewellery.receiving.events", ce)
	require.NoError(t, err)
	return event
}

func TestOutboxRepository_Writes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(t, repo.Save(context.Background(), newTestEvent(t)))
	})

	mt.Run("save all", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		require.NoError(t, repo.SaveAll(context.Background(), nil))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))
		require.NoError(t, repo.SaveAll(context.Background(), []*outbox.Event{newTestEvent(t), newTestEvent(t)}))
	})

	mt.Run("save failure", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := repo.Save(context.Background(), newTestEvent(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save outbox event")
	})
}

func TestOutboxRepository_Updates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("mark published", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(t, repo.MarkPublished(context.Background(), "evt-1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := repo.MarkPublished(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	mt.Run("increment retry", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(t, repo.IncrementRetry(context.Background(), "evt-1", "broker down"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.IncrementRetry(context.Background(), "missing", "broker down"), ErrEventNotFound)
	})

	mt.Run("delete published", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		deleted, err := repo.DeletePublished(context.Background(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})
}

func TestOutboxRepository_Reads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find unpublished", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "evt-1"},
				{Key: "aggregateId", Value: "si-1"},
				{Key: "eventType", Value: "receiving.stock-in.posted"},
				{Key: "topic", Value: "jewellery.receiving.events"},
				{Key: "retryCount", Value: 2},
				{Key: "maxRetries", Value: 10},
			},
			bson.D{{Key: "_id", Value: "evt-2"}, {Key: "aggregateId", Value: "si-2"}},
		))

		events, err := repo.FindUnpublished(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "evt-1", events[0].ID)
		assert.Equal(t, 2, events[0].RetryCount)
		assert.True(t, events[0].ShouldRetry())
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "evt-1"},
			{Key: "aggregateType", Value: "StockIn"},
		}))
		event, err := repo.GetByID(context.Background(), "evt-1")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "StockIn", event.AggregateType)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		event, err = repo.GetByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	mt.Run("find by aggregate", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		events, err := repo.FindByAggregateID(context.Background(), "si-9")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewOutboxRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(t, repo.EnsureIndexes(context.Background()))
	})
}
