//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
	"github.com/notevault/notevault/internal/store"
	"github.com/notevault/notevault/internal/testutil"
)

func newNoteStoreEnv(t *testing.T) (context.Context, *repository.Repository, *store.Store[model.Note]) {
	t.Helper()

	ctx := context.Background()
	repo := testutil.SetupDB(ctx, t)

	notes, err := store.NewNoteStore(repo.Pool())
	if err != nil {
		t.Fatalf("NewNoteStore failed: %v", err)
	}

	return ctx, repo, notes
}

func TestIntegrationNoteStore_CreateAndGet(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	owner := testutil.CreateTestUser(ctx, t, repo, "note-owner")

	created, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, "first note"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("ID should be assigned")
	}
	if created.OwnerID != owner.ID {
		t.Errorf("OwnerID = %d, want %d", created.OwnerID, owner.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	retrieved, err := notes.GetByID(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Title != "first note" {
		t.Errorf("Title = %q, want %q", retrieved.Title, "first note")
	}
}

func TestIntegrationNoteStore_Pagination(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	owner := testutil.CreateTestUser(ctx, t, repo, "pager")

	for i := 1; i <= 25; i++ {
		if _, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, fmt.Sprintf("note %02d", i))); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	page2, err := notes.List(ctx, owner.ID, 10, 2, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page2) != 10 {
		t.Fatalf("page 2 length = %d, want 10", len(page2))
	}
	if page2[0].Title != "note 11" || page2[9].Title != "note 20" {
		t.Errorf("page 2 spans %q..%q, want note 11..note 20", page2[0].Title, page2[9].Title)
	}

	page3, err := notes.List(ctx, owner.ID, 10, 3, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page3) != 5 {
		t.Errorf("page 3 length = %d, want 5", len(page3))
	}
}

func TestIntegrationNoteStore_Search(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	owner := testutil.CreateTestUser(ctx, t, repo, "searcher")

	titles := []string{"Grocery list", "Meeting notes", "grocery budget", "Travel plan"}
	for _, title := range titles {
		if _, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, title)); err != nil {
			t.Fatalf("Create %q failed: %v", title, err)
		}
	}

	// Case-insensitive substring match on the title
	found, err := notes.List(ctx, owner.ID, 10, 1, "grocery")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found %d notes, want 2", len(found))
	}

	// LIKE metacharacters in the needle are literals
	if _, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, "Progress: 50% done")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	found, err = notes.List(ctx, owner.ID, 10, 1, "50% done")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("found %d notes for literal %%, want 1", len(found))
	}
}

func TestIntegrationNoteStore_PartialUpdate(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	owner := testutil.CreateTestUser(ctx, t, repo, "updater")

	created, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, "before"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := notes.Update(ctx, owner.ID, created.ID, map[string]any{
		"title": "after",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "after" {
		t.Errorf("Title = %q, want %q", updated.Title, "after")
	}
	if updated.Content != created.Content {
		t.Errorf("Content changed on partial update: %q", updated.Content)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("UpdatedAt should advance on update")
	}

	// Empty patch reads back the current row
	same, err := notes.Update(ctx, owner.ID, created.ID, nil)
	if err != nil {
		t.Fatalf("empty Update failed: %v", err)
	}
	if same.Title != "after" {
		t.Errorf("Title = %q, want %q", same.Title, "after")
	}
}

func TestIntegrationNoteStore_OwnershipIsolation(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	alice := testutil.CreateTestUser(ctx, t, repo, "alice")
	bob := testutil.CreateTestUser(ctx, t, repo, "bob")

	created, err := notes.Create(ctx, alice.ID, testutil.NewTestNote(t, "private"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := notes.GetByID(ctx, bob.ID, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID across owners: err = %v, want ErrNotFound", err)
	}
	if _, err := notes.Update(ctx, bob.ID, created.ID, map[string]any{"title": "stolen"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update across owners: err = %v, want ErrNotFound", err)
	}
	if err := notes.Delete(ctx, bob.ID, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete across owners: err = %v, want ErrNotFound", err)
	}

	listed, err := notes.List(ctx, bob.ID, 10, 1, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("bob sees %d of alice's notes", len(listed))
	}

	// Owner still has full access
	if _, err := notes.GetByID(ctx, alice.ID, created.ID); err != nil {
		t.Errorf("owner GetByID failed: %v", err)
	}
}

func TestIntegrationNoteStore_DeleteCascade(t *testing.T) {
	ctx, repo, notes := newNoteStoreEnv(t)
	owner := testutil.CreateTestUser(ctx, t, repo, "doomed")

	created, err := notes.Create(ctx, owner.ID, testutil.NewTestNote(t, "ephemeral"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, owner.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := notes.GetByID(ctx, owner.ID, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("note survived owner deletion: err = %v", err)
	}
}
