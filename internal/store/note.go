package store

import (
	"github.com/jackc/pgx/v5"

	"github.com/notevault/notevault/internal/model"
)

// NewNoteStore binds the generic store to the notes table.
// Notes are searchable by title substring.
func NewNoteStore(db DB) (*Store[model.Note], error) {
	return New(db, Binding[model.Note]{
		Table:        "notes",
		Columns:      []string{"id", "owner_id", "title", "content", "category", "published", "created_at", "updated_at"},
		Settable:     []string{"title", "content", "category", "published"},
		SearchColumn: "title",
		HasUpdatedAt: true,
		Scan: func(row pgx.Row) (*model.Note, error) {
			var n model.Note
			err := row.Scan(
				&n.ID,
				&n.OwnerID,
				&n.Title,
				&n.Content,
				&n.Category,
				&n.Published,
				&n.CreatedAt,
				&n.UpdatedAt,
			)
			return &n, err
		},
		Values: func(n *model.Note) []any {
			return []any{n.Title, n.Content, n.Category, n.Published}
		},
	})
}
