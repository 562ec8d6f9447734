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

// PurchaseOrderRepository implements domain.PurchaseOrderRepository
type PurchaseOrderRepository struct {
	collection pkgmongo.Collection
	events     eventRecorder
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(collection pkgmongo.Collection, outboxRepo outbox.Repository, eventFactory *cloudevents.EventFactory) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		collection: collection,
		events:     eventRecorder{outbox: outboxRepo, factory: eventFactory},
	}
}

// EnsureIndexes creates the purchase order indexes
func (r *PurchaseOrderRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "purchaseOrderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "header.documentDate", Value: -1}}},
		{Keys: bson.D{{Key: "header.partyRef", Value: 1}, {Key: "header.documentDate", Value: -1}}},
		{Keys: bson.D{{Key: "header.branchRef", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create purchase order indexes: %w", err)
	}
	return nil
}

// Save upserts the order and queues its domain events in the outbox
func (r *PurchaseOrderRepository) Save(ctx context.Context, po *domain.PurchaseOrder) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"purchaseOrderId": po.PurchaseOrderID}, po, opts); err != nil {
		return fmt.Errorf("failed to save purchase order: %w", err)
	}

	if err := r.events.record(ctx, po.PurchaseOrderID, "PurchaseOrder", "purchase-order/"+po.PurchaseOrderID, po.Header.BranchRef, po.GetDomainEvents()); err != nil {
		return err
	}
	po.ClearDomainEvents()
	return nil
}

// FindByID retrieves an order, nil when it does not exist
func (r *PurchaseOrderRepository) FindByID(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.collection.FindOne(ctx, bson.M{"purchaseOrderId": purchaseOrderID}).Decode(&po)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase order: %w", err)
	}
	return &po, nil
}

// List retrieves orders matching the filter, newest first
func (r *PurchaseOrderRepository) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.PurchaseOrder, error) {
	cursor, err := r.collection.Find(ctx, documentQuery(filter), newestFirst(pagination))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.PurchaseOrder, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode purchase orders: %w", err)
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *PurchaseOrderRepository) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, documentQuery(filter))
}
