package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fashionablylate/internal/adapters/storage"
	domain "fashionablylate/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectUser = `SELECT id, name, email, email_verified_at, password, remember_token,
	failed_logins, locked_until, created_at, updated_at FROM users`

// GetByID retrieves a User by its ID.
// PRE: id > 0
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, selectUser+" WHERE id = ?", id)
	entity, err := scanUser(row.Scan)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %d: %w", id, storage.Classify(err))
	}
	return entity, nil
}

// GetByEmail retrieves a User by email, ignoring ASCII case.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, selectUser+" WHERE email = ? COLLATE NOCASE", email)
	entity, err := scanUser(row.Scan)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %s: %w", email, storage.Classify(err))
	}
	return entity, nil
}

// Create inserts a User and returns its ID.
// PRE: entity has been validated and PasswordHash is set
// POST: Row inserted, or an error wrapping storage.ErrDuplicate when the email is taken
func (s *SQLiteStore) Create(ctx context.Context, entity domain.User) (int64, error) {
	now := entity.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, email_verified_at, password, remember_token, failed_logins, locked_until, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.Name, entity.Email, storage.NullTime(entity.EmailVerifiedAt), entity.PasswordHash,
		nullString(entity.RememberToken), entity.FailedLogins, storage.NullTime(entity.LockedUntil),
		storage.FormatTime(now), storage.FormatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", storage.Classify(err))
	}
	return res.LastInsertId()
}

// Save updates an existing User.
// PRE: entity.ID refers to an existing row
// POST: Mutable columns are updated and updated_at is bumped
func (s *SQLiteStore) Save(ctx context.Context, entity domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, email_verified_at = ?, password = ?, remember_token = ?,
		failed_logins = ?, locked_until = ?, updated_at = ? WHERE id = ?`,
		entity.Name, entity.Email, storage.NullTime(entity.EmailVerifiedAt), entity.PasswordHash,
		nullString(entity.RememberToken), entity.FailedLogins, storage.NullTime(entity.LockedUntil),
		storage.FormatTime(time.Now()), entity.ID,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", entity.ID, storage.Classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user %d: %w", entity.ID, storage.ErrNotFound)
	}
	return nil
}

// Count returns the number of users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// scanUser extracts a User from a row scanner function.
func scanUser(scan func(dest ...any) error) (domain.User, error) {
	var entity domain.User
	var verifiedAt, rememberToken, lockedUntil sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Email,
		&verifiedAt,
		&entity.PasswordHash,
		&rememberToken,
		&entity.FailedLogins,
		&lockedUntil,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	entity.EmailVerifiedAt = storage.ScanNullTime(verifiedAt)
	entity.RememberToken = rememberToken.String
	entity.LockedUntil = storage.ScanNullTime(lockedUntil)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return entity, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
