// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
	"github.com/notevault/notevault/internal/store"
)

// Service errors.
var (
	// ErrInvalidCredentials is deliberately uniform: wrong username and
	// wrong password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidInput       = errors.New("invalid input")
)

// profileKeyPageSize bounds the keys embedded in a profile. The lazy
// provisioning scheme creates at most one key per user, so one page is
// always the full set.
const profileKeyPageSize = 50

// AccountService handles registration, login, profiles and deletion.
type AccountService struct {
	repo   *repository.Repository
	keys   *store.Store[model.APIKey]
	tokens *auth.TokenIssuer
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, tokens *auth.TokenIssuer) (*AccountService, error) {
	keys, err := store.NewAPIKeyStore(repo.Pool())
	if err != nil {
		return nil, fmt.Errorf("build api key store: %w", err)
	}

	return &AccountService{
		repo:   repo,
		keys:   keys,
		tokens: tokens,
	}, nil
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user with a hashed password.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Authenticate resolves username+password to a user.
// Both unknown usernames and wrong passwords yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates and mints a bearer token for the user.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.IssueDefault(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Profile is a user's own view of their account.
// PlaintextKey is set exactly once, on the call that provisions the key.
type Profile struct {
	User         *model.User
	Keys         []*model.APIKey
	PlaintextKey string
}

// Profile returns the user's profile, lazily provisioning an API key the
// first time an account with no keys asks for it. The plaintext key is
// embedded in that one response and never recoverable afterwards.
func (s *AccountService) Profile(ctx context.Context, user *model.User) (*Profile, error) {
	keys, err := s.keys.List(ctx, user.ID, profileKeyPageSize, 1, "")
	if err != nil {
		return nil, err
	}

	if len(keys) > 0 {
		return &Profile{User: user, Keys: keys}, nil
	}

	created, plaintext, err := s.provisionKey(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if created == nil {
		// Lost a provisioning race; the winner holds the plaintext.
		keys, err = s.keys.List(ctx, user.ID, profileKeyPageSize, 1, "")
		if err != nil {
			return nil, err
		}
		return &Profile{User: user, Keys: keys}, nil
	}

	return &Profile{
		User:         user,
		Keys:         []*model.APIKey{created},
		PlaintextKey: plaintext,
	}, nil
}

// provisionKey generates and stores a key for the owner inside one
// transaction. The owner row lock serializes concurrent provisioning;
// a nil key with nil error means another request already provisioned.
func (s *AccountService) provisionKey(ctx context.Context, ownerID int64) (*model.APIKey, string, error) {
	gen, err := auth.GenerateKey()
	if err != nil {
		return nil, "", err
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin provisioning: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, ownerID).Scan(&locked)
	if err != nil {
		return nil, "", repository.ErrUserNotFound
	}

	txKeys := s.keys.WithTx(tx)

	existing, err := txKeys.List(ctx, ownerID, 1, 1, "")
	if err != nil {
		return nil, "", err
	}
	if len(existing) > 0 {
		return nil, "", nil
	}

	created, err := txKeys.Create(ctx, ownerID, &model.APIKey{
		KeyHash:   gen.Hash,
		KeyPrefix: gen.Prefix,
	})
	if err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit provisioning: %w", err)
	}

	return created, gen.Plaintext, nil
}

// Delete removes the user's account. Notes and API keys cascade.
func (s *AccountService) Delete(ctx context.Context, userID int64) error {
	return s.repo.DeleteUser(ctx, userID)
}
