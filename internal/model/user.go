// Package model defines domain entities for the application.
package model

import "time"

// User is an identity record. Username and email are globally unique;
// PasswordHash always holds an argon2id hash, never plaintext.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity holds the resolved owner of a verified API key.
// This is what the API-key gate caches and injects into the request context.
type Identity struct {
	UserID int64
	KeyID  int64
}
