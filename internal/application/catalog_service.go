package application

import (
	"context"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/metrics"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/mongodb"
)

// Catalog lookup results
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// LabelCache caches id -> label per catalog kind
type LabelCache interface {
	// GetLabels returns the cached labels of the ids it knows
	GetLabels(ctx context.Context, kind domain.CatalogKind, ids []string) (map[string]string, error)

	// SetLabels stores labels
	SetLabels(ctx context.Context, kind domain.CatalogKind, labels map[string]string) error

	// Invalidate drops cached labels
	Invalidate(ctx context.Context, kind domain.CatalogKind, ids ...string) error
}

// CatalogService manages the reference catalogs and resolves their labels
type CatalogService struct {
	repo    domain.CatalogRepository
	cache   LabelCache
	tx      mongodb.TxRunner
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repo domain.CatalogRepository, cache LabelCache, tx mongodb.TxRunner, logger *logging.Logger, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		repo:    repo,
		cache:   cache,
		tx:      tx,
		logger:  logger.WithComponent("catalog"),
		metrics: m,
	}
}

// UpsertEntry creates an entry when cmd.EntryID is empty, otherwise updates the existing one
func (s *CatalogService) UpsertEntry(ctx context.Context, cmd UpsertCatalogEntryCommand) (*domain.CatalogEntry, error) {
	var entry *domain.CatalogEntry
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if cmd.EntryID == "" {
			entry, err = domain.NewCatalogEntry(cmd.Kind, cmd.Code, cmd.Label, cmd.TrackingMode, cmd.Attributes)
			if err != nil {
				return err
			}
		} else {
			entry, err = s.find(ctx, cmd.Kind, cmd.EntryID)
			if err != nil {
				return err
			}
			if err := entry.Update(cmd.Code, cmd.Label, cmd.TrackingMode, cmd.Attributes); err != nil {
				return err
			}
		}
		return s.repo.Save(ctx, entry)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.invalidate(ctx, entry)
	s.logger.WithContext(ctx).Info("Upserted catalog entry",
		"kind", entry.Kind,
		"entryId", entry.EntryID,
		"label", entry.Label,
	)
	return entry, nil
}

// Deactivate hides an entry from pickers
func (s *CatalogService) Deactivate(ctx context.Context, kind domain.CatalogKind, entryID string) (*domain.CatalogEntry, error) {
	var entry *domain.CatalogEntry
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		found, err := s.find(ctx, kind, entryID)
		if err != nil {
			return err
		}
		if err := found.Deactivate(); err != nil {
			return err
		}
		entry = found
		return s.repo.Save(ctx, found)
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.invalidate(ctx, entry)
	s.logger.WithContext(ctx).Info("Deactivated catalog entry", "kind", kind, "entryId", entryID)
	return entry, nil
}

func (s *CatalogService) invalidate(ctx context.Context, entry *domain.CatalogEntry) {
	if err := s.cache.Invalidate(ctx, entry.Kind, entry.EntryID); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to invalidate catalog label cache",
			"kind", entry.Kind,
			"entryId", entry.EntryID,
		)
	}
}

func (s *CatalogService) find(ctx context.Context, kind domain.CatalogKind, entryID string) (*domain.CatalogEntry, error) {
	if !kind.IsValid() {
		return nil, domain.ErrInvalidCatalogKind
	}
	entry, err := s.repo.FindByID(ctx, kind, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrCatalogEntryNotFound
	}
	return entry, nil
}

// GetEntry retrieves a catalog entry
func (s *CatalogService) GetEntry(ctx context.Context, kind domain.CatalogKind, entryID string) (*domain.CatalogEntry, error) {
	entry, err := s.find(ctx, kind, entryID)
	if err != nil {
		return nil, mapError(err)
	}
	return entry, nil
}

// ListEntries lists the entries of one kind
func (s *CatalogService) ListEntries(ctx context.Context, query ListCatalogQuery) (*Page[*domain.CatalogEntry], error) {
	if !query.Filter.Kind.IsValid() {
		return nil, mapError(domain.ErrInvalidCatalogKind)
	}
	entries, err := s.repo.List(ctx, query.Filter, query.Pagination)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := s.repo.Count(ctx, query.Filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &Page[*domain.CatalogEntry]{Items: entries, TotalItems: total, Pagination: query.Pagination}, nil
}

// ResolveLabels maps ids to labels, reading through the cache. Unknown ids are left out.
// Inactive entries still resolve so posted documents keep rendering.
func (s *CatalogService) ResolveLabels(ctx context.Context, kind domain.CatalogKind, ids []string) (map[string]string, error) {
	if !kind.IsValid() {
		return nil, mapError(domain.ErrInvalidCatalogKind)
	}
	ids = uniqueIDs(ids)
	labels := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	cached, err := s.cache.GetLabels(ctx, kind, ids)
	if err != nil {
		s.metrics.RecordCatalogLookup(LookupError)
		s.logger.WithContext(ctx).WithError(err).Warn("Catalog label cache read failed, falling back to repository", "kind", kind)
		cached = nil
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if label, ok := cached[id]; ok {
			labels[id] = label
			s.metrics.RecordCatalogLookup(LookupHit)
			continue
		}
		missing = append(missing, id)
		s.metrics.RecordCatalogLookup(LookupMiss)
	}
	if len(missing) == 0 {
		return labels, nil
	}

	entries, err := s.repo.FindByIDs(ctx, kind, missing)
	if err != nil {
		return nil, mapError(err)
	}
	fresh := make(map[string]string, len(entries))
	for _, entry := range entries {
		labels[entry.EntryID] = entry.Label
		fresh[entry.EntryID] = entry.Label
	}

	if len(fresh) > 0 {
		if err := s.cache.SetLabels(ctx, kind, fresh); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Catalog label cache write failed", "kind", kind)
		}
	}
	return labels, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
