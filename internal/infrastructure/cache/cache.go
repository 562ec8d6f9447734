package cache

import (
	"context"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain"
)

// NoopLabelCache never holds anything, so every lookup goes to the repository
type NoopLabelCache struct{}

// GetLabels returns an empty map
func (NoopLabelCache) GetLabels(context.Context, domain.CatalogKind, []string) (map[string]string, error) {
	return map[string]string{}, nil
}

// SetLabels discards labels
func (NoopLabelCache) SetLabels(context.Context, domain.CatalogKind, map[string]string) error {
	return nil
}

// Invalidate is a no-op
func (NoopLabelCache) Invalidate(context.Context, domain.CatalogKind, ...string) error {
	return nil
}
