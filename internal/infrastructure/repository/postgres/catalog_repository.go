package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/seatfeed/offer-aggregator/internal/domain/team"
)

type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListIdentities(ctx context.Context) ([]team.Identity, error) {
	const query = `
		SELECT id, canonical_id, name, slug, aliases, external_ids, created_at, deleted_at
		FROM team_identities
		WHERE deleted_at IS NULL
		ORDER BY id`

	var rows []teamIdentityTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select team identities: %w", err)
	}

	out := make([]team.Identity, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Identity{
			CanonicalID: row.CanonicalID,
			Name:        row.Name,
			Slug:        row.Slug,
			Aliases:     row.Aliases,
			ExternalIDs: row.ExternalIDs,
		})
	}

	return out, nil
}

func (r *CatalogRepository) ListMappings(ctx context.Context) (team.MappingTable, error) {
	const query = `
		SELECT provider_name, slug
		FROM team_mappings
		ORDER BY provider_name`

	var rows []teamMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select team mappings: %w", err)
	}

	out := make(team.MappingTable, len(rows))
	for _, row := range rows {
		out[row.ProviderName] = row.Slug
	}

	return out, nil
}

func (r *CatalogRepository) GetIdentityBySlug(ctx context.Context, slug string) (team.Identity, bool, error) {
	const query = `
		SELECT id, canonical_id, name, slug, aliases, external_ids, created_at, deleted_at
		FROM team_identities
		WHERE slug = $1 AND deleted_at IS NULL`

	var row teamIdentityTableModel
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		if isNotFound(err) {
			return team.Identity{}, false, nil
		}
		return team.Identity{}, false, fmt.Errorf("select team identity by slug: %w", err)
	}

	return team.Identity{
		CanonicalID: row.CanonicalID,
		Name:        row.Name,
		Slug:        row.Slug,
		Aliases:     row.Aliases,
		ExternalIDs: row.ExternalIDs,
	}, true, nil
}

func (r *CatalogRepository) UpsertIdentities(ctx context.Context, items []team.Identity) error {
	const query = `
		INSERT INTO team_identities (canonical_id, name, slug, aliases, external_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (canonical_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			aliases = EXCLUDED.aliases,
			external_ids = EXCLUDED.external_ids,
			deleted_at = NULL`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert team identities: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query,
			item.CanonicalID,
			item.Name,
			item.Slug,
			pq.StringArray(item.Aliases),
			pq.StringArray(item.ExternalIDs),
		); err != nil {
			return fmt.Errorf("upsert team identity %s: %w", item.CanonicalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert team identities: %w", err)
	}
	return nil
}

func (r *CatalogRepository) UpsertMappings(ctx context.Context, mappings team.MappingTable) error {
	const query = `
		INSERT INTO team_mappings (provider_name, slug)
		VALUES ($1, $2)
		ON CONFLICT (provider_name) DO UPDATE SET slug = EXCLUDED.slug`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert team mappings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for providerName, slug := range mappings {
		if _, err := tx.ExecContext(ctx, query, providerName, slug); err != nil {
			return fmt.Errorf("upsert team mapping %q: %w", providerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert team mappings: %w", err)
	}
	return nil
}
