package memory

import (
	"context"
	"sync"

	"github.com/seatfeed/offer-aggregator/internal/domain/team"
)

type CatalogRepository struct {
	mu         sync.RWMutex
	identities []team.Identity
	mappings   team.MappingTable
}

func NewCatalogRepository(identities []team.Identity, mappings team.MappingTable) *CatalogRepository {
	return &CatalogRepository{identities: identities, mappings: mappings}
}

func (r *CatalogRepository) ListIdentities(_ context.Context) ([]team.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Identity, 0, len(r.identities))
	out = append(out, r.identities...)

	return out, nil
}

func (r *CatalogRepository) ListMappings(_ context.Context) (team.MappingTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(team.MappingTable, len(r.mappings))
	for name, slug := range r.mappings {
		out[name] = slug
	}

	return out, nil
}

func (r *CatalogRepository) UpsertIdentities(_ context.Context, items []team.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		replaced := false
		for i, existing := range r.identities {
			if existing.CanonicalID == item.CanonicalID {
				r.identities[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			r.identities = append(r.identities, item)
		}
	}

	return nil
}
