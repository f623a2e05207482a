package store

import (
	"github.com/jackc/pgx/v5"

	"github.com/notevault/notevault/internal/model"
)

// NewAPIKeyStore binds the generic store to the api_keys table.
// API keys have no search column; List ignores any search argument.
func NewAPIKeyStore(db DB) (*Store[model.APIKey], error) {
	return New(db, Binding[model.APIKey]{
		Table:    "api_keys",
		Columns:  []string{"id", "owner_id", "key_hash", "key_prefix", "created_at"},
		Settable: []string{"key_hash", "key_prefix"},
		Scan: func(row pgx.Row) (*model.APIKey, error) {
			var k model.APIKey
			err := row.Scan(
				&k.ID,
				&k.OwnerID,
				&k.KeyHash,
				&k.KeyPrefix,
				&k.CreatedAt,
			)
			return &k, err
		},
		Values: func(k *model.APIKey) []any {
			return []any{k.KeyHash, k.KeyPrefix}
		},
	})
}
