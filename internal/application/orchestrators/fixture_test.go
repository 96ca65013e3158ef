package orchestrators

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	emailAdapter "fashionablylate/internal/adapters/email"
	"fashionablylate/internal/adapters/storage"
	accountStore "fashionablylate/internal/adapters/storage/account"
	categoryStore "fashionablylate/internal/adapters/storage/category"
	contactStore "fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/application/validation"
	"fashionablylate/internal/domain/account"
	"fashionablylate/internal/domain/category"
)

func init() {
	account.BcryptCost = bcrypt.MinCost
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

type fixture struct {
	db         *sql.DB
	categories *categoryStore.SQLiteStore
	contacts   *contactStore.SQLiteStore
	users      *accountStore.SQLiteStore
	validator  *validation.Validator
	catID      int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(db, ":memory:"))

	f := fixture{
		db:         db,
		categories: categoryStore.NewSQLiteStore(db),
		contacts:   contactStore.NewSQLiteStore(db),
		users:      accountStore.NewSQLiteStore(db),
		validator:  validation.New(),
	}
	f.catID, err = f.categories.Create(context.Background(), category.Category{
		Content: "商品のお届けについて", CreatedAt: fixedTime, UpdatedAt: fixedTime,
	})
	require.NoError(t, err)
	return f
}

// recordingSender captures sent messages.
type recordingSender struct {
	mu   sync.Mutex
	sent []emailAdapter.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg emailAdapter.Message) (emailAdapter.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return emailAdapter.Result{}, r.err
	}
	r.sent = append(r.sent, msg)
	return emailAdapter.Result{MessageID: "test", SentAt: fixedTime}, nil
}
