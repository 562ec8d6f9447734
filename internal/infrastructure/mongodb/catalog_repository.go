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

// CatalogRepository implements domain.CatalogRepository. All kinds share one collection.
type CatalogRepository struct {
	collection pkgmongo.Collection
	events     eventRecorder
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(collection pkgmongo.Collection, outboxRepo outbox.Repository, eventFactory *cloudevents.EventFactory) *CatalogRepository {
	return &CatalogRepository{
		collection: collection,
		events:     eventRecorder{outbox: outboxRepo, factory: eventFactory},
	}
}

// EnsureIndexes creates the catalog indexes
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "entryId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "active", Value: 1}, {Key: "label", Value: 1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "code", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create catalog indexes: %w", err)
	}
	return nil
}

// Save upserts the entry and queues its domain events in the outbox
func (r *CatalogRepository) Save(ctx context.Context, entry *domain.CatalogEntry) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"kind": entry.Kind, "entryId": entry.EntryID}
	if _, err := r.collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		return fmt.Errorf("failed to save catalog entry: %w", err)
	}

	subject := "catalog/" + string(entry.Kind) + "/" + entry.EntryID
	if err := r.events.record(ctx, entry.EntryID, "CatalogEntry", subject, "", entry.GetDomainEvents()); err != nil {
		return err
	}
	entry.ClearDomainEvents()
	return nil
}

// FindByID retrieves an entry of a kind, nil when it does not exist
func (r *CatalogRepository) FindByID(ctx context.Context, kind domain.CatalogKind, entryID string) (*domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := r.collection.FindOne(ctx, bson.M{"kind": kind, "entryId": entryID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find catalog entry: %w", err)
	}
	return &entry, nil
}

// FindByIDs retrieves the entries of a kind with the given ids
func (r *CatalogRepository) FindByIDs(ctx context.Context, kind domain.CatalogKind, entryIDs []string) ([]*domain.CatalogEntry, error) {
	if len(entryIDs) == 0 {
		return []*domain.CatalogEntry{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"kind": kind, "entryId": bson.M{"$in": entryIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog entries: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeEntries(ctx, cursor)
}

// List retrieves entries matching the filter ordered by label
func (r *CatalogRepository) List(ctx context.Context, filter domain.CatalogFilter, pagination domain.Pagination) ([]*domain.CatalogEntry, error) {
	opts := pkgmongo.PageOptions(pagination.Skip(), pagination.Limit(), "label", 1)
	cursor, err := r.collection.Find(ctx, catalogQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeEntries(ctx, cursor)
}

// Count returns the number of entries matching the filter
func (r *CatalogRepository) Count(ctx context.Context, filter domain.CatalogFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, catalogQuery(filter))
}

// catalogQuery matches Search as a prefix of the label or the code
func catalogQuery(filter domain.CatalogFilter) bson.M {
	query := bson.M{"kind": filter.Kind}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.Search != "" {
		prefix := pkgmongo.PrefixMatch(filter.Search)
		query["$or"] = bson.A{
			bson.M{"label": prefix},
			bson.M{"code": prefix},
		}
	}
	return query
}

func decodeEntries(ctx context.Context, cursor *mongo.Cursor) ([]*domain.CatalogEntry, error) {
	entries := make([]*domain.CatalogEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog entries: %w", err)
	}
	return entries, nil
}
