package store

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/notevault/notevault/internal/model"
)

func newTestNoteStore(t *testing.T) *Store[model.Note] {
	t.Helper()

	s, err := NewNoteStore(nil)
	if err != nil {
		t.Fatalf("NewNoteStore failed: %v", err)
	}
	return s
}

func TestNew_BindingValidation(t *testing.T) {
	t.Parallel()

	scan := func(row pgx.Row) (*model.Note, error) { return &model.Note{}, nil }
	values := func(n *model.Note) []any { return nil }

	tests := []struct {
		name    string
		binding Binding[model.Note]
	}{
		{"empty table", Binding[model.Note]{
			Columns: []string{"id", "owner_id"}, Scan: scan, Values: values,
		}},
		{"missing id column", Binding[model.Note]{
			Table: "notes", Columns: []string{"owner_id", "title"}, Scan: scan, Values: values,
		}},
		{"missing owner_id column", Binding[model.Note]{
			Table: "notes", Columns: []string{"id", "title"}, Scan: scan, Values: values,
		}},
		{"nil scan", Binding[model.Note]{
			Table: "notes", Columns: []string{"id", "owner_id"}, Values: values,
		}},
		{"settable outside select list", Binding[model.Note]{
			Table: "notes", Columns: []string{"id", "owner_id"},
			Settable: []string{"title"}, Scan: scan, Values: values,
		}},
		{"search column outside select list", Binding[model.Note]{
			Table: "notes", Columns: []string{"id", "owner_id"},
			SearchColumn: "title", Scan: scan, Values: values,
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New[model.Note](nil, tt.binding); err == nil {
				t.Error("expected binding validation error, got nil")
			}
		})
	}
}

func TestBuildListQuery_Pagination(t *testing.T) {
	t.Parallel()

	s := newTestNoteStore(t)

	query, args := s.buildListQuery(7, 10, 2, "")

	if !strings.Contains(query, "WHERE owner_id = $1") {
		t.Errorf("query missing owner scope: %s", query)
	}
	if !strings.Contains(query, "ORDER BY id LIMIT $2 OFFSET $3") {
		t.Errorf("query missing pagination clause: %s", query)
	}
	if strings.Contains(query, "ILIKE") {
		t.Errorf("empty search must not add a filter: %s", query)
	}

	// skip = (page-1) * limit
	want := []any{int64(7), 10, 10}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildListQuery_Search(t *testing.T) {
	t.Parallel()

	s := newTestNoteStore(t)

	query, args := s.buildListQuery(7, 20, 1, "groceries")

	if !strings.Contains(query, "AND title ILIKE $2") {
		t.Errorf("query missing search filter: %s", query)
	}
	if args[1] != "%groceries%" {
		t.Errorf("search arg = %v, want %%groceries%%", args[1])
	}
}

func TestBuildListQuery_SearchEscaping(t *testing.T) {
	t.Parallel()

	s := newTestNoteStore(t)

	_, args := s.buildListQuery(7, 20, 1, "50%_done")

	if args[1] != `%50\%\_done%` {
		t.Errorf("LIKE metacharacters not escaped: %v", args[1])
	}
}

func TestBuildListQuery_NoSearchColumnIgnoresSearch(t *testing.T) {
	t.Parallel()

	s, err := NewAPIKeyStore(nil)
	if err != nil {
		t.Fatalf("NewAPIKeyStore failed: %v", err)
	}

	query, args := s.buildListQuery(7, 20, 1, "anything")

	if strings.Contains(query, "ILIKE") {
		t.Errorf("store without search column must ignore search: %s", query)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want owner, limit, offset only", args)
	}
}

func TestBuildUpdateSet_PartialAndOrdered(t *testing.T) {
	t.Parallel()

	s := newTestNoteStore(t)

	assignments, args, err := s.buildUpdateSet(map[string]any{
		"published": true,
		"title":     "new title",
	})
	if err != nil {
		t.Fatalf("buildUpdateSet failed: %v", err)
	}

	// Settable order, not map order, plus the updated_at touch.
	want := []string{"title = $1", "published = $2", "updated_at = now()"}
	if !reflect.DeepEqual(assignments, want) {
		t.Errorf("assignments = %v, want %v", assignments, want)
	}

	if !reflect.DeepEqual(args, []any{"new title", true}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateSet_RejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	s := newTestNoteStore(t)

	_, _, err := s.buildUpdateSet(map[string]any{"owner_id": int64(99)})
	if err == nil {
		t.Fatal("expected error for non-settable column, got nil")
	}
	if !strings.Contains(err.Error(), "owner_id") {
		t.Errorf("error should name the offending column: %v", err)
	}
}
