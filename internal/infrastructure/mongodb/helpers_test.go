package mongodb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	pkgmongo "github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/outbox"
)

var errOutboxDown = errors.New("outbox unavailable")

func mockOptions() *mtest.Options {
	return mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetRegistry(pkgmongo.NewRegistry()))
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

// recordingOutbox captures SaveAll calls
type recordingOutbox struct {
	mu      sync.Mutex
	events  []*outbox.Event
	saveErr error
}

func (o *recordingOutbox) Save(ctx context.Context, event *outbox.Event) error {
	return o.SaveAll(ctx, []*outbox.Event{event})
}

func (o *recordingOutbox) SaveAll(_ context.Context, events []*outbox.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.saveErr != nil {
		return o.saveErr
	}
	o.events = append(o.events, events...)
	return nil
}

func (o *recordingOutbox) FindUnpublished(context.Context, int) ([]*outbox.Event, error) {
	return nil, nil
}

func (o *recordingOutbox) MarkPublished(context.Context, string) error { return nil }

func (o *recordingOutbox) IncrementRetry(context.Context, string, string) error { return nil }

func (o *recordingOutbox) DeletePublished(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testHeader() domain.DocumentHeader {
	return domain.DocumentHeader{
		DocumentDate: time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		PartyRef:     "SUP-001",
		BranchRef:    "BR-MAIN",
	}
}

func newOrder(t *testing.T) *domain.PurchaseOrder {
	t.Helper()
	po, err := domain.NewPurchaseOrder(testHeader(), []domain.OrderLine{
		{Ref: "R1", TrackingMode: reconciliation.ModeCount, UnitRef: "pcs", Ordered: dec("10"), UnitCost: dec("100")},
		{Ref: "R2", TrackingMode: reconciliation.ModeWeight, UnitRef: "gm", Ordered: dec("25.5"), UnitCost: dec("6000")},
	})
	require.NoError(t, err)
	return po
}
