package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
)

func TestDocumentQuery(t *testing.T) {
	assert.Empty(t, documentQuery(domain.DocumentFilter{}))

	status := "posted"
	party := "SUP-001"
	order := "po-1"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	query := documentQuery(domain.DocumentFilter{
		Status:          &status,
		PartyRef:        &party,
		PurchaseOrderID: &order,
		FromDate:        &from,
	})

	assert.Equal(t, bson.M{
		"status":              "posted",
		"header.partyRef":     "SUP-001",
		"purchaseOrderId":     "po-1",
		"header.documentDate": bson.M{"$gte": from},
	}, query)
}

func TestCatalogQuery(t *testing.T) {
	assert.Equal(t, bson.M{"kind": domain.CatalogUnit}, catalogQuery(domain.CatalogFilter{Kind: domain.CatalogUnit}))

	query := catalogQuery(domain.CatalogFilter{Kind: domain.CatalogSupplier, ActiveOnly: true, Search: "a.b"})
	assert.Equal(t, true, query["active"])

	prefix := primitive.Regex{Pattern: `^a\.b`, Options: "i"}
	assert.Equal(t, bson.A{bson.M{"label": prefix}, bson.M{"code": prefix}}, query["$or"])
}
