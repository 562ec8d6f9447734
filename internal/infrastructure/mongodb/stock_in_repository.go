package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	pkgmongo "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
)

// StockInRepository implements domain.StockInRepository
type StockInRepository struct {
	collection pkgmongo.Collection
	events     eventRecorder
}

// NewStockInRepository creates a new goods receipt repository
func NewStockInRepository(collection pkgmongo.Collection, outboxRepo outbox.Repository, eventFactory *cloudevents.EventFactory) *StockInRepository {
	return &StockInRepository{
		collection: collection,
		events:     eventRecorder{outbox: outboxRepo, factory: eventFactory},
	}
}

// EnsureIndexes creates the stock-in indexes
func (r *StockInRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "stockInId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "grnNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "purchaseOrderId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "header.documentDate", Value: -1}}},
		{Keys: bson.D{{Key: "header.partyRef", Value: 1}, {Key: "header.documentDate", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create stock-in indexes: %w", err)
	}
	return nil
}

// Save upserts the stock-in and queues its domain events in the outbox
func (r *StockInRepository) Save(ctx context.Context, si *domain.StockIn) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"stockInId": si.StockInID}, si, opts); err != nil {
		return fmt.Errorf("failed to save stock-in: %w", err)
	}

	if err := r.events.record(ctx, si.StockInID, "StockIn", "stock-in/"+si.StockInID, si.Header.BranchRef, si.GetDomainEvents()); err != nil {
		return err
	}
	si.ClearDomainEvents()
	return nil
}

// FindByID retrieves a stock-in, nil when it does not exist
func (r *StockInRepository) FindByID(ctx context.Context, stockInID string) (*domain.StockIn, error) {
	var si domain.StockIn
	err := r.collection.FindOne(ctx, bson.M{"stockInId": stockInID}).Decode(&si)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stock-in: %w", err)
	}
	return &si, nil
}

// FindByPurchaseOrderID retrieves every stock-in raised against an order, oldest first
func (r *StockInRepository) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID string) ([]*domain.StockIn, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"purchaseOrderId": purchaseOrderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find stock-ins by purchase order: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeStockIns(ctx, cursor)
}

// List retrieves stock-ins matching the filter, newest first
func (r *StockInRepository) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.StockIn, error) {
	cursor, err := r.collection.Find(ctx, documentQuery(filter), newestFirst(pagination))
	if err != nil {
		return nil, fmt.Errorf("failed to list stock-ins: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeStockIns(ctx, cursor)
}

// Count returns the number of stock-ins matching the filter
func (r *StockInRepository) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, documentQuery(filter))
}

func decodeStockIns(ctx context.Context, cursor *mongo.Cursor) ([]*domain.StockIn, error) {
	stockIns := make([]*domain.StockIn, 0)
	if err := cursor.All(ctx, &stockIns); err != nil {
		return nil, fmt.Errorf("failed to decode stock-ins: %w", err)
	}
	return stockIns, nil
}
