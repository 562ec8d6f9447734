package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/cloudevents"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/kafka"
	pkgmongo "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
)

// Collection names
const (
	CollectionPurchaseOrders  = "purchase_orders"
	CollectionStockIns        = "stock_ins"
	CollectionPurchaseReturns = "purchase_returns"
	CollectionCatalogEntries  = "catalog_entries"
)

// eventRecorder writes pending domain events to the outbox. It must run on the
// same context as the aggregate write so both land in one transaction.
type eventRecorder struct {
	outbox  outbox.Repository
	factory *cloudevents.EventFactory
}

func (r eventRecorder) record(ctx context.Context, aggregateID, aggregateType, subject, branchID string, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*outbox.Event, 0, len(events))
	for _, event := range events {
		topic := kafka.TopicFor(event.EventType())
		if topic == "" {
			return fmt.Errorf("no topic for event type %s", event.EventType())
		}

		ce := r.factory.CreateBranchEvent(ctx, event.EventType(), subject, branchID, event)
		entry, err := outbox.NewEvent(aggregateID, aggregateType, topic, ce)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := r.outbox.SaveAll(ctx, entries); err != nil {
		return fmt.Errorf("failed to save outbox events: %w", err)
	}
	return nil
}

// documentQuery translates a DocumentFilter into a query on the shared document layout
func documentQuery(filter domain.DocumentFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.PartyRef != nil {
		query["header.partyRef"] = *filter.PartyRef
	}
	if filter.BranchRef != nil {
		query["header.branchRef"] = *filter.BranchRef
	}
	if filter.PurchaseOrderID != nil {
		query["purchaseOrderId"] = *filter.PurchaseOrderID
	}
	if filter.StockInID != nil {
		query["stockInId"] = *filter.StockInID
	}
	if dates := pkgmongo.DateRange(filter.FromDate, filter.ToDate); dates != nil {
		query["header.documentDate"] = dates
	}
	return query
}

func newestFirst(p domain.Pagination) *options.FindOptions {
	return pkgmongo.PageOptions(p.Skip(), p.Limit(), "header.documentDate", -1)
}
