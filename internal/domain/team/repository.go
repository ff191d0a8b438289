package team

import "context"

// CatalogRepository loads the identity catalog the resolver is built from.
type CatalogRepository interface {
	ListIdentities(ctx context.Context) ([]Identity, error)
	ListMappings(ctx context.Context) (MappingTable, error)
}

// LoadCatalog builds a validated catalog snapshot from a repository.
func LoadCatalog(ctx context.Context, repo CatalogRepository) (Catalog, error) {
	identities, err := repo.ListIdentities(ctx)
	if err != nil {
		return Catalog{}, err
	}

	mappings, err := repo.ListMappings(ctx)
	if err != nil {
		return Catalog{}, err
	}

	catalog := Catalog{Identities: identities, Mappings: mappings}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}

	return catalog, nil
}
