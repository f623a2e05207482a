package dto

import (
	"time"

	"github.com/notevault/notevault/internal/model"
)

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Category  string `json:"category,omitempty"`
	Published bool   `json:"published,omitempty"`
}

// UpdateNoteRequest represents a partial note update; absent fields are
// left unchanged.
type UpdateNoteRequest struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Category  *string `json:"category,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse represents one page of notes.
type NoteListResponse struct {
	Data  []NoteResponse `json:"data"`
	Limit int            `json:"limit"`
	Page  int            `json:"page"`
}

// ToNoteResponse converts a Note model to NoteResponse DTO.
func ToNoteResponse(note *model.Note) *NoteResponse {
	return &NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Category:  note.Category,
		Published: note.Published,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// ToNoteListResponse converts a page of notes to NoteListResponse.
func ToNoteListResponse(notes []*model.Note, limit, page int) *NoteListResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = *ToNoteResponse(note)
	}
	return &NoteListResponse{
		Data:  responses,
		Limit: limit,
		Page:  page,
	}
}
