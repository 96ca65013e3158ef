package category

import (
	"context"
	"fmt"
	"time"

	"fashionablylate/internal/adapters/storage"
	domain "fashionablylate/internal/domain/category"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new category store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Category by its ID.
// PRE: id > 0
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, content, created_at, updated_at FROM categories WHERE id = ?", id)
	entity, err := scanCategory(row.Scan)
	if err != nil {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, storage.Classify(err))
	}
	return entity, nil
}

// Exists reports whether a category row with id is present.
func (s *SQLiteStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns every category ordered by ID.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, content, created_at, updated_at FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		entity, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

// Create inserts a category and returns its ID.
// PRE: value has been validated
// POST: Row inserted with created_at/updated_at set
func (s *SQLiteStore) Create(ctx context.Context, value domain.Category) (int64, error) {
	now := value.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (content, created_at, updated_at) VALUES (?, ?, ?)",
		value.Content, storage.FormatTime(now), storage.FormatTime(now),
	)
	if err != nil {
		return 0, storage.Classify(err)
	}
	return res.LastInsertId()
}

// Count returns the number of categories.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n)
	return n, err
}

func scanCategory(scan func(dest ...any) error) (domain.Category, error) {
	var entity domain.Category
	var createdAt, updatedAt string
	if err := scan(&entity.ID, &entity.Content, &createdAt, &updatedAt); err != nil {
		return domain.Category{}, err
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}
