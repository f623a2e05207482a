package repository

import (
	"context"
	"fmt"

	"github.com/notevault/notevault/internal/model"
)

// GetAPIKeysByPrefix retrieves all API keys matching a lookup prefix.
// Used during authentication to find candidate keys for hash verification;
// the prefix is short, so collisions between users are possible and every
// candidate must be verified against the presented key.
func (r *Repository) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error) {
	query := `
		SELECT id, owner_id, key_hash, key_prefix, created_at
		FROM api_keys
		WHERE key_prefix = $1
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*model.APIKey
	for rows.Next() {
		var key model.APIKey
		err := rows.Scan(&key.ID, &key.OwnerID, &key.KeyHash, &key.KeyPrefix, &key.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API keys: %w", err)
	}

	return keys, nil
}
