// Package model defines domain entities for the application.
package model

import "time"

// APIKey is a long-lived credential owned by exactly one user.
// Only the argon2id hash of the key material is stored; the plaintext
// is returned to the owner once, at provisioning time, and never again.
type APIKey struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	KeyHash   string    `json:"-"` // Never serialize
	KeyPrefix string    `json:"key_prefix"`
	CreatedAt time.Time `json:"created_at"`
}
