package postgres

import (
	"database/sql"

	"github.com/lib/pq"
)

type teamIdentityTableModel struct {
	ID          int64          `db:"id"`
	CanonicalID string         `db:"canonical_id"`
	Name        string         `db:"name"`
	Slug        string         `db:"slug"`
	Aliases     pq.StringArray `db:"aliases"`
	ExternalIDs pq.StringArray `db:"external_ids"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

type teamMappingTableModel struct {
	ProviderName string `db:"provider_name"`
	Slug         string `db:"slug"`
}
