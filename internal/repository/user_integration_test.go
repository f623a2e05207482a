//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
	"github.com/notevault/notevault/internal/store"
	"github.com/notevault/notevault/internal/testutil"
)

func TestIntegrationRepository_UserLookups(t *testing.T) {
	ctx := context.Background()
	repo := testutil.SetupDB(ctx, t)

	created := testutil.CreateTestUser(ctx, t, repo, "lookup")

	byID, err := repo.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "lookup" {
		t.Errorf("Username = %q, want %q", byID.Username, "lookup")
	}

	byUsername, err := repo.GetUserByUsername(ctx, "lookup")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byUsername.ID != created.ID {
		t.Errorf("ID = %d, want %d", byUsername.ID, created.ID)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("ID = %d, want %d", byEmail.ID, created.ID)
	}

	if _, err := repo.GetUserByUsername(ctx, "ghost"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("unknown username: err = %v, want ErrUserNotFound", err)
	}
}

func TestIntegrationRepository_APIKeyPrefixLookup(t *testing.T) {
	ctx := context.Background()
	repo := testutil.SetupDB(ctx, t)

	owner := testutil.CreateTestUser(ctx, t, repo, "keyed")

	keys, err := store.NewAPIKeyStore(repo.Pool())
	if err != nil {
		t.Fatalf("NewAPIKeyStore failed: %v", err)
	}

	gen, err := auth.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	stored, err := keys.Create(ctx, owner.ID, &model.APIKey{
		KeyHash:   gen.Hash,
		KeyPrefix: gen.Prefix,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	candidates, err := repo.GetAPIKeysByPrefix(ctx, gen.Prefix)
	if err != nil {
		t.Fatalf("GetAPIKeysByPrefix failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("found %d candidates, want 1", len(candidates))
	}
	if candidates[0].ID != stored.ID || candidates[0].KeyHash != gen.Hash {
		t.Errorf("candidate mismatch: %+v", candidates[0])
	}

	none, err := repo.GetAPIKeysByPrefix(ctx, "zzzzzz")
	if err != nil {
		t.Fatalf("GetAPIKeysByPrefix (miss) failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no candidates for unknown prefix, got %d", len(none))
	}
}
