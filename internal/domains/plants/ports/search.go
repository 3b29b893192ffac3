package ports

import (
	"context"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
)

// SearchIndex is a full-text index over listings. It returns ids only;
// callers hydrate from the Repository so stock figures are never stale.
type SearchIndex interface {
	Index(ctx context.Context, plant *domain.Plant) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
