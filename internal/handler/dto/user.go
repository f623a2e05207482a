// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/notevault/notevault/internal/model"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse represents a minted bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// APIKeyResponse represents an API key in profile responses. Key carries
// the plaintext exactly once, on the response that created the key.
type APIKeyResponse struct {
	ID        int64     `json:"id"`
	KeyPrefix string    `json:"key_prefix"`
	Key       string    `json:"key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse represents the authenticated user's own account view.
type ProfileResponse struct {
	UserResponse
	APIKeys []APIKeyResponse `json:"api_keys"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// ToProfileResponse converts a user and their keys to a ProfileResponse.
// plaintextKey is empty except on the response that provisioned a key.
func ToProfileResponse(user *model.User, keys []*model.APIKey, plaintextKey string) *ProfileResponse {
	responses := make([]APIKeyResponse, len(keys))
	for i, key := range keys {
		responses[i] = APIKeyResponse{
			ID:        key.ID,
			KeyPrefix: key.KeyPrefix,
			CreatedAt: key.CreatedAt,
		}
		if plaintextKey != "" && key.KeyPrefix == plaintextKey[:len(key.KeyPrefix)] {
			responses[i].Key = plaintextKey
		}
	}
	return &ProfileResponse{
		UserResponse: *ToUserResponse(user),
		APIKeys:      responses,
	}
}
