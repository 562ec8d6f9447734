package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

func TestParseCatalogKind(t *testing.T) {
	tests := []struct {
		raw  string
		want CatalogKind
		err  error
	}{
		{"unit", CatalogUnit, nil},
		{" Supplier ", CatalogSupplier, nil},
		{"stone-purity", CatalogStonePurity, nil},
		{"STONE_PURITY", CatalogStonePurity, nil},
		{"metal", "", ErrInvalidCatalogKind},
		{"", "", ErrInvalidCatalogKind},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			kind, err := ParseCatalogKind(tt.raw)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	assert.Len(t, AllCatalogKinds(), 5)
}

func TestNewCatalogEntry(t *testing.T) {
	t.Run("unit keeps tracking mode", func(t *testing.T) {
		entry, err := NewCatalogEntry(CatalogUnit, "gm", " Gram ", reconciliation.ModeWeight, map[string]string{"symbol": "g"})
		require.NoError(t, err)
		assert.NotEmpty(t, entry.EntryID)
		assert.Equal(t, "Gram", entry.Label)
		assert.True(t, entry.Active)
		assert.Equal(t, reconciliation.ModeWeight, entry.TrackingMode)

		require.Len(t, entry.GetDomainEvents(), 1)
		upserted := entry.GetDomainEvents()[0].(*CatalogEntryUpsertedEvent)
		assert.Equal(t, CatalogUnit, upserted.Kind)
		assert.True(t, upserted.Active)
	})

	t.Run("other kinds drop tracking mode", func(t *testing.T) {
		entry, err := NewCatalogEntry(CatalogStonePurity, "VVS1", "VVS1 clarity", reconciliation.ModeCount, nil)
		require.NoError(t, err)
		assert.Equal(t, reconciliation.ModeUnset, entry.TrackingMode)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewCatalogEntry(CatalogKind("metal"), "", "Gold", reconciliation.ModeUnset, nil)
		assert.Equal(t, ErrInvalidCatalogKind, err)

		_, err = NewCatalogEntry(CatalogSupplier, "S1", "  ", reconciliation.ModeUnset, nil)
		assert.Equal(t, ErrLabelRequired, err)

		_, err = NewCatalogEntry(CatalogUnit, "pcs", "Pieces", reconciliation.ModeUnset, nil)
		assert.Equal(t, ErrUnitTrackingMode, err)
	})
}

func TestCatalogEntry_Lifecycle(t *testing.T) {
	entry, err := NewCatalogEntry(CatalogSupplier, "S1", "Shree Gems", reconciliation.ModeUnset, nil)
	require.NoError(t, err)
	entry.ClearDomainEvents()

	require.NoError(t, entry.Rename("S1", "Shree Gems & Co"))
	assert.Equal(t, "Shree Gems & Co", entry.Label)
	assert.Equal(t, ErrLabelRequired, entry.Rename("S1", ""))

	require.NoError(t, entry.Deactivate())
	assert.False(t, entry.Active)
	assert.Equal(t, ErrCatalogEntryInactive, entry.Deactivate())

	require.NoError(t, entry.Update("S01", "Shree Gems", reconciliation.ModeUnset, map[string]string{"gstin": "27AAAAA0000A1Z5"}))
	assert.True(t, entry.Active)
	assert.Equal(t, "S01", entry.Code)

	events := entry.GetDomainEvents()
	require.Len(t, events, 3)
	assert.False(t, events[1].(*CatalogEntryUpsertedEvent).Active)
	assert.True(t, events[2].(*CatalogEntryUpsertedEvent).Active)

	unit, err := NewCatalogEntry(CatalogUnit, "ct", "Carat", reconciliation.ModeWeight, nil)
	require.NoError(t, err)
	assert.Equal(t, ErrUnitTrackingMode, unit.Update("ct", "Carat", reconciliation.ModeUnset, nil))
}
