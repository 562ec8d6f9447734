package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
)

// Catalog errors
var (
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")
	ErrInvalidCatalogKind   = errors.New("invalid catalog kind")
	ErrLabelRequired        = errors.New("catalog label is required")
	ErrUnitTrackingMode     = errors.New("a unit must declare a tracking mode")
	ErrCatalogEntryInactive = errors.New("catalog entry is inactive")
)

// CatalogKind names one of the reference catalogs
type CatalogKind string

const (
	CatalogUnit        CatalogKind = "unit"
	CatalogSupplier    CatalogKind = "supplier"
	CatalogCustomer    CatalogKind = "customer"
	CatalogBranch      CatalogKind = "branch"
	CatalogStonePurity CatalogKind = "stone_purity"
)

// AllCatalogKinds lists every catalog kind
func AllCatalogKinds() []CatalogKind {
	return []CatalogKind{CatalogUnit, CatalogSupplier, CatalogCustomer, CatalogBranch, CatalogStonePurity}
}

// IsValid checks if the kind is valid
func (k CatalogKind) IsValid() bool {
	switch k {
	case CatalogUnit, CatalogSupplier, CatalogCustomer, CatalogBranch, CatalogStonePurity:
		return true
	default:
		return false
	}
}

// ParseCatalogKind parses a kind case-insensitively, accepting "stone-purity" as well
func ParseCatalogKind(raw string) (CatalogKind, error) {
	kind := CatalogKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if !kind.IsValid() {
		return "", ErrInvalidCatalogKind
	}
	return kind, nil
}

// CatalogEntry is one reference catalog row: a unit, party, branch or stone purity
type CatalogEntry struct {
	ID           primitive.ObjectID          `bson:"_id,omitempty" json:"-"`
	EntryID      string                      `bson:"entryId" json:"entryId"`
	Kind         CatalogKind                 `bson:"kind" json:"kind"`
	Code         string                      `bson:"code,omitempty" json:"code,omitempty"`
	Label        string                      `bson:"label" json:"label"`
	Active       bool                        `bson:"active" json:"active"`
	TrackingMode reconciliation.TrackingMode `bson:"trackingMode,omitempty" json:"trackingMode,omitempty"`
	Attributes   map[string]string           `bson:"attributes,omitempty" json:"attributes,omitempty"`
	CreatedAt    time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                   `bson:"updatedAt" json:"updatedAt"`
	DomainEvents []DomainEvent               `bson:"-" json:"-"`
}

// NewCatalogEntry creates an active entry. Units carry the tracking mode their lines use;
// the mode is ignored for other kinds.
func NewCatalogEntry(kind CatalogKind, code, label string, mode reconciliation.TrackingMode, attributes map[string]string) (*CatalogEntry, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidCatalogKind
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrLabelRequired
	}
	if kind == CatalogUnit && !mode.IsSet() {
		return nil, ErrUnitTrackingMode
	}
	if kind != CatalogUnit {
		mode = reconciliation.ModeUnset
	}

	now := time.Now().UTC()
	entry := &CatalogEntry{
		ID:           primitive.NewObjectID(),
		EntryID:      uuid.NewString(),
		Kind:         kind,
		Code:         strings.TrimSpace(code),
		Label:        label,
		Active:       true,
		TrackingMode: mode,
		Attributes:   attributes,
		CreatedAt:    now,
		UpdatedAt:    now,
		DomainEvents: make([]DomainEvent, 0),
	}
	entry.recordUpsert(now)
	return entry, nil
}

// Rename changes the code and label
func (e *CatalogEntry) Rename(code, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrLabelRequired
	}
	e.Code = strings.TrimSpace(code)
	e.Label = label
	e.touch()
	return nil
}

// Update replaces the mutable fields of an entry, reactivating it
func (e *CatalogEntry) Update(code, label string, mode reconciliation.TrackingMode, attributes map[string]string) error {
	if e.Kind == CatalogUnit && !mode.IsSet() {
		return ErrUnitTrackingMode
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrLabelRequired
	}
	if e.Kind != CatalogUnit {
		mode = reconciliation.ModeUnset
	}
	e.Code = strings.TrimSpace(code)
	e.Label = label
	e.TrackingMode = mode
	e.Attributes = attributes
	e.Active = true
	e.touch()
	return nil
}

// Deactivate hides the entry from pickers. Existing documents keep their references.
func (e *CatalogEntry) Deactivate() error {
	if !e.Active {
		return ErrCatalogEntryInactive
	}
	e.Active = false
	e.touch()
	return nil
}

func (e *CatalogEntry) touch() {
	e.UpdatedAt = time.Now().UTC()
	e.recordUpsert(e.UpdatedAt)
}

func (e *CatalogEntry) recordUpsert(at time.Time) {
	e.DomainEvents = append(e.DomainEvents, &CatalogEntryUpsertedEvent{
		Kind:        e.Kind,
		EntryID:     e.EntryID,
		Code:        e.Code,
		Label:       e.Label,
		Active:      e.Active,
		OccurredAt_: at,
	})
}

// GetDomainEvents returns all domain events
func (e *CatalogEntry) GetDomainEvents() []DomainEvent {
	return e.DomainEvents
}

// ClearDomainEvents clears all domain events
func (e *CatalogEntry) ClearDomainEvents() {
	e.DomainEvents = make([]DomainEvent, 0)
}
