package contact

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fashionablylate/internal/adapters/storage"
	domain "fashionablylate/internal/domain/contact"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new contact store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectEntry = `SELECT c.id, c.category_id, c.first_name, c.last_name, c.gender, c.email, c.tell,
	c.address, c.building, c.detail, c.created_at, c.updated_at, COALESCE(cat.content, '')
	FROM contacts c LEFT JOIN categories cat ON cat.id = c.category_id`

// Create inserts a contact and returns its ID.
// PRE: value has been validated
// POST: One row inserted; foreign key violations wrap storage.ErrConstraint
func (s *SQLiteStore) Create(ctx context.Context, value domain.Contact) (int64, error) {
	var building any
	if value.Building != "" {
		building = value.Building
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (category_id, first_name, last_name, gender, email, tell, address, building, detail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		value.CategoryID, value.FirstName, value.LastName, int(value.Gender), value.Email, value.Tell,
		value.Address, building, value.Detail,
		storage.FormatTime(value.CreatedAt), storage.FormatTime(value.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", storage.Classify(err))
	}
	return res.LastInsertId()
}

// GetByID retrieves a contact with its category label.
// PRE: id > 0
// POST: Returns the entry or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+" WHERE c.id = ?", id)
	entry, err := scanEntry(row.Scan)
	if err != nil {
		return Entry{}, fmt.Errorf("contact %d: %w", id, storage.Classify(err))
	}
	return entry, nil
}

// Delete removes a contact.
// PRE: id > 0
// POST: Row removed, or storage.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, storage.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete contact %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List returns matching entries, newest first.
// PRE: filter has valid parameters
// POST: Returns at most filter.Limit entries (all when Limit is 0)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	where, args := buildWhere(filter)

	var q strings.Builder
	q.WriteString(selectEntry)
	q.WriteString(where)
	q.WriteString(" ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?")
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Count returns the number of matching contacts, ignoring Limit and Offset.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts c"+where, args...).Scan(&n)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildWhere(f ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		clauses = append(clauses, `(c.first_name LIKE ? ESCAPE '\' OR c.last_name LIKE ? ESCAPE '\' OR c.email LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.Gender != 0 {
		clauses = append(clauses, "c.gender = ?")
		args = append(args, int(f.Gender))
	}
	if f.CategoryID != 0 {
		clauses = append(clauses, "c.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.CreatedFrom.IsZero() {
		clauses = append(clauses, "c.created_at >= ?")
		args = append(args, storage.FormatTime(f.CreatedFrom))
	}
	if !f.CreatedTo.IsZero() {
		clauses = append(clauses, "c.created_at < ?")
		args = append(args, storage.FormatTime(f.CreatedTo))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanEntry(scan func(dest ...any) error) (Entry, error) {
	var e Entry
	var gender int
	var building sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&e.ID,
		&e.CategoryID,
		&e.FirstName,
		&e.LastName,
		&gender,
		&e.Email,
		&e.Tell,
		&e.Address,
		&building,
		&e.Detail,
		&createdAt,
		&updatedAt,
		&e.CategoryContent,
	)
	if err != nil {
		return Entry{}, err
	}
	e.Gender = domain.Gender(gender)
	e.Building = building.String
	e.CreatedAt, _ = storage.ParseTime(createdAt)
	e.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return e, nil
}
