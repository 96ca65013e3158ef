package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestClassify_Driver verifies driver errors map onto the storage classes.
func TestClassify_Driver(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	now := FormatTime(time.Now())
	insertUser := func() error {
		_, err := db.Exec(`INSERT INTO users (name, email, password, created_at, updated_at) VALUES ('a', 'dup@example.com', 'x', ?, ?)`, now, now)
		return err
	}
	if err := insertUser(); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := Classify(insertUser())
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
	}
	if errors.Is(err, ErrConstraint) {
		t.Errorf("duplicate email also matched ErrConstraint")
	}

	var name string
	err = Classify(db.QueryRow("SELECT name FROM users WHERE id = 999").Scan(&name))
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing row: got %v", err)
	}
}

// TestClassify_Passthrough verifies unknown errors and nil pass through.
func TestClassify_Passthrough(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
	boom := fmt.Errorf("disk on fire")
	if got := Classify(boom); got != boom {
		t.Errorf("Classify(boom) = %v", got)
	}
}
