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

// PurchaseReturnRepository implements domain.PurchaseReturnRepository
type PurchaseReturnRepository struct {
	collection pkgmongo.Collection
	events     eventRecorder
}

// NewPurchaseReturnRepository creates a new purchase return repository
func NewPurchaseReturnRepository(collection pkgmongo.Collection, outboxRepo outbox.Repository, eventFactory *cloudevents.EventFactory) *PurchaseReturnRepository {
	return &PurchaseReturnRepository{
		collection: collection,
		events:     eventRecorder{outbox: outboxRepo, factory: eventFactory},
	}
}

// EnsureIndexes creates the purchase return indexes
func (r *PurchaseReturnRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "returnId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "returnNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "stockInId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "header.documentDate", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create purchase return indexes: %w", err)
	}
	return nil
}

// Save upserts the return and queues its domain events in the outbox
func (r *PurchaseReturnRepository) Save(ctx context.Context, pr *domain.PurchaseReturn) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"returnId": pr.ReturnID}, pr, opts); err != nil {
		return fmt.Errorf("failed to save purchase return: %w", err)
	}

	if err := r.events.record(ctx, pr.ReturnID, "PurchaseReturn", "purchase-return/"+pr.ReturnID, pr.Header.BranchRef, pr.GetDomainEvents()); err != nil {
		return err
	}
	pr.ClearDomainEvents()
	return nil
}

// FindByID retrieves a return, nil when it does not exist
func (r *PurchaseReturnRepository) FindByID(ctx context.Context, returnID string) (*domain.PurchaseReturn, error) {
	var pr domain.PurchaseReturn
	err := r.collection.FindOne(ctx, bson.M{"returnId": returnID}).Decode(&pr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase return: %w", err)
	}
	return &pr, nil
}

// List retrieves returns matching the filter, newest first
func (r *PurchaseReturnRepository) List(ctx context.Context, filter domain.DocumentFilter, pagination domain.Pagination) ([]*domain.PurchaseReturn, error) {
	cursor, err := r.collection.Find(ctx, documentQuery(filter), newestFirst(pagination))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase returns: %w", err)
	}
	defer cursor.Close(ctx)

	returns := make([]*domain.PurchaseReturn, 0)
	if err := cursor.All(ctx, &returns); err != nil {
		return nil, fmt.Errorf("failed to decode purchase returns: %w", err)
	}
	return returns, nil
}

// Count returns the number of returns matching the filter
func (r *PurchaseReturnRepository) Count(ctx context.Context, filter domain.DocumentFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, documentQuery(filter))
}
