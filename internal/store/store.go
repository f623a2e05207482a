// Package store provides a generic ownership-scoped data access layer.
// Every resource it manages carries an owner_id column; all reads and
// mutations are filtered to the owning user, so no cross-user access
// path exists through this package.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no record matches the given owner and id.
var ErrNotFound = errors.New("record not found")

// defaultLimit is used when a caller passes a non-positive page size.
const defaultLimit = 20

// DB is the subset of pgxpool.Pool and pgx.Tx the store needs.
// Using the interface lets multi-statement operations run a store
// call inside an enclosing transaction via WithTx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Binding describes how one resource kind maps onto its table.
type Binding[T any] struct {
	// Table is the table name.
	Table string
	// Columns is the full select list, in the order Scan consumes it.
	// Must start with id and owner_id.
	Columns []string
	// Settable is the subset of Columns that clients may set on create
	// and update (no id, owner_id or server-managed timestamps).
	Settable []string
	// SearchColumn, when non-empty, enables substring search on List.
	SearchColumn string
	// HasUpdatedAt makes Update touch updated_at alongside the payload.
	HasUpdatedAt bool
	// Scan reads one full row (Columns order) into a record.
	Scan func(row pgx.Row) (*T, error)
	// Values returns the record's values for Settable, same order.
	Values func(rec *T) []any
}

// Store runs CRUD for one resource kind, scoped to an owner on every call.
type Store[T any] struct {
	db       DB
	b        Binding[T]
	selects  string
	settable map[string]bool
}

// New validates the binding and returns a Store.
func New[T any](db DB, b Binding[T]) (*Store[T], error) {
	if b.Table == "" {
		return nil, errors.New("store: empty table name")
	}
	if len(b.Columns) < 2 || b.Columns[0] != "id" || b.Columns[1] != "owner_id" {
		return nil, fmt.Errorf("store %s: columns must start with id, owner_id", b.Table)
	}
	if b.Scan == nil || b.Values == nil {
		return nil, fmt.Errorf("store %s: Scan and Values are required", b.Table)
	}
	settable := make(map[string]bool, len(b.Settable))
	for _, col := range b.Settable {
		if !slices.Contains(b.Columns, col) {
			return nil, fmt.Errorf("store %s: settable column %q not in select list", b.Table, col)
		}
		settable[col] = true
	}
	if b.SearchColumn != "" && !slices.Contains(b.Columns, b.SearchColumn) {
		return nil, fmt.Errorf("store %s: search column %q not in select list", b.Table, b.SearchColumn)
	}

	return &Store[T]{
		db:       db,
		b:        b,
		selects:  strings.Join(b.Columns, ", "),
		settable: settable,
	}, nil
}

// WithTx returns a copy of the store that runs against the given transaction.
func (s *Store[T]) WithTx(tx pgx.Tx) *Store[T] {
	clone := *s
	clone.db = tx
	return &clone
}

// Create inserts a new record owned by ownerID and returns the persisted
// row including server-assigned id and timestamps.
func (s *Store[T]) Create(ctx context.Context, ownerID int64, rec *T) (*T, error) {
	cols := append([]string{"owner_id"}, s.b.Settable...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.b.Table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		s.selects,
	)

	args := append([]any{ownerID}, s.b.Values(rec)...)

	created, err := s.b.Scan(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.b.Table, err)
	}

	return created, nil
}

// GetByID fetches one record by primary key, scoped to its owner.
func (s *Store[T]) GetByID(ctx context.Context, ownerID, id int64) (*T, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1 AND owner_id = $2",
		s.selects, s.b.Table,
	)

	rec, err := s.b.Scan(s.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.b.Table, err)
	}

	return rec, nil
}

// List returns one page of the owner's records ordered by id.
// Pagination uses skip = (page-1) * limit. A non-empty search filters
// rows whose search column contains it, case-insensitively; stores
// built without a search column ignore the argument.
func (s *Store[T]) List(ctx context.Context, ownerID int64, limit, page int, search string) ([]*T, error) {
	if limit < 1 {
		limit = defaultLimit
	}
	if page < 1 {
		page = 1
	}

	query, args := s.buildListQuery(ownerID, limit, page, search)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.b.Table, err)
	}
	defer rows.Close()

	var recs []*T
	for rows.Next() {
		rec, err := s.b.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.b.Table, err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.b.Table, err)
	}

	return recs, nil
}

// Update applies a partial update: only the supplied fields change.
// Field names are validated against the binding's settable columns.
// An empty patch returns the current record unchanged.
func (s *Store[T]) Update(ctx context.Context, ownerID, id int64, fields map[string]any) (*T, error) {
	if len(fields) == 0 {
		return s.GetByID(ctx, ownerID, id)
	}

	assignments, args, err := s.buildUpdateSet(fields)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s",
		s.b.Table,
		strings.Join(assignments, ", "),
		len(args)+1,
		len(args)+2,
		s.selects,
	)
	args = append(args, id, ownerID)

	rec, err := s.b.Scan(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", s.b.Table, err)
	}

	return rec, nil
}

// Delete removes the owner's record by id.
func (s *Store[T]) Delete(ctx context.Context, ownerID, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND owner_id = $2", s.b.Table)

	tag, err := s.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.b.Table, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// buildListQuery assembles the paginated, optionally filtered select.
func (s *Store[T]) buildListQuery(ownerID int64, limit, page int, search string) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE owner_id = $1", s.selects, s.b.Table)
	args := []any{ownerID}

	if s.b.SearchColumn != "" && search != "" {
		fmt.Fprintf(&sb, " AND %s ILIKE $%d", s.b.SearchColumn, len(args)+1)
		args = append(args, "%"+escapeLike(search)+"%")
	}

	fmt.Fprintf(&sb, " ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	return sb.String(), args
}

// buildUpdateSet assembles SET assignments in deterministic column order.
func (s *Store[T]) buildUpdateSet(fields map[string]any) ([]string, []any, error) {
	var assignments []string
	var args []any

	for _, col := range s.b.Settable {
		value, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if len(assignments) != len(fields) {
		for name := range fields {
			if !s.settable[name] {
				return nil, nil, fmt.Errorf("store %s: column %q is not settable", s.b.Table, name)
			}
		}
	}

	if s.b.HasUpdatedAt {
		assignments = append(assignments, "updated_at = now()")
	}

	return assignments, args, nil
}

// likeEscaper escapes LIKE metacharacters so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
