package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/store"
)

// Note service errors.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrNoteNotFound  = errors.New("note not found")
)

// List pagination bounds.
const (
	defaultNoteLimit = 10
	maxNoteLimit     = 100
)

// NoteService handles note business logic over the ownership-scoped store.
type NoteService struct {
	notes *store.Store[model.Note]
}

// NewNoteService creates a new NoteService.
func NewNoteService(db store.DB) (*NoteService, error) {
	notes, err := store.NewNoteStore(db)
	if err != nil {
		return nil, fmt.Errorf("build note store: %w", err)
	}
	return &NoteService{notes: notes}, nil
}

// CreateNoteInput defines input for creating a note.
type CreateNoteInput struct {
	Title     string
	Content   string
	Category  string
	Published bool
}

// Create persists a new note owned by owner.
func (s *NoteService) Create(ctx context.Context, owner *model.User, input CreateNoteInput) (*model.Note, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	return s.notes.Create(ctx, owner.ID, &model.Note{
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		Published: input.Published,
	})
}

// Get fetches one of the owner's notes by id.
func (s *NoteService) Get(ctx context.Context, owner *model.User, id int64) (*model.Note, error) {
	note, err := s.notes.GetByID(ctx, owner.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// List returns one page of the owner's notes, optionally filtered by a
// title substring.
func (s *NoteService) List(ctx context.Context, owner *model.User, limit, page int, search string) ([]*model.Note, error) {
	if limit < 1 {
		limit = defaultNoteLimit
	}
	if limit > maxNoteLimit {
		limit = maxNoteLimit
	}
	if page < 1 {
		page = 1
	}

	return s.notes.List(ctx, owner.ID, limit, page, search)
}

// UpdateNoteInput defines a partial update; nil fields are left unchanged.
type UpdateNoteInput struct {
	Title     *string
	Content   *string
	Category  *string
	Published *bool
}

// Update applies the non-nil fields of input to the owner's note.
func (s *NoteService) Update(ctx context.Context, owner *model.User, id int64, input UpdateNoteInput) (*model.Note, error) {
	fields := make(map[string]any)
	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		fields["title"] = *input.Title
	}
	if input.Content != nil {
		fields["content"] = *input.Content
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Published != nil {
		fields["published"] = *input.Published
	}

	note, err := s.notes.Update(ctx, owner.ID, id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return note, nil
}

// Delete removes the owner's note by id.
func (s *NoteService) Delete(ctx context.Context, owner *model.User, id int64) error {
	if err := s.notes.Delete(ctx, owner.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}
