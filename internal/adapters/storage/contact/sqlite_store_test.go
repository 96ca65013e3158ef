package contact

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fashionablylate/internal/adapters/storage"
	domain "fashionablylate/internal/domain/contact"
)

type fixture struct {
	store *SQLiteStore
	db    *sql.DB
	catA  int64
	catB  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(db, ":memory:"))

	now := storage.FormatTime(time.Now())
	insert := func(content string) int64 {
		res, err := db.Exec("INSERT INTO categories (content, created_at, updated_at) VALUES (?, ?, ?)", content, now, now)
		require.NoError(t, err)
		id, _ := res.LastInsertId()
		return id
	}
	return fixture{store: NewSQLiteStore(db), db: db, catA: insert("商品のお届けについて"), catB: insert("その他")}
}

func (f fixture) add(t *testing.T, c domain.Contact) int64 {
	t.Helper()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	if c.Tell == "" {
		c.Tell = "080-1234-5678"
	}
	if c.Address == "" {
		c.Address = "東京都渋谷区"
	}
	if c.Detail == "" {
		c.Detail = "テスト"
	}
	id, err := f.store.Create(context.Background(), c)
	require.NoError(t, err)
	return id
}

func ids(entries []Entry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.add(t, domain.Contact{
		CategoryID: f.catA, LastName: "山田", FirstName: "太郎", Gender: domain.GenderMale,
		Email: "a@b.com", Tell: "080-1234-5678", Address: "東京都渋谷区千駄ヶ谷1-2-3", Detail: "届かない",
	})

	got, err := f.store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "080-1234-5678", got.Tell)
	assert.Equal(t, "商品のお届けについて", got.CategoryContent)
	assert.Empty(t, got.Building)
	assert.Equal(t, domain.GenderMale, got.Gender)

	_, err = f.store.GetByID(ctx, id+1)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func TestSQLiteStore_CreateRejectsMissingCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), domain.Contact{
		CategoryID: 999, LastName: "山田", FirstName: "太郎", Gender: 1, Email: "a@b.com",
		Tell: "1-2-3", Address: "x", Detail: "x", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	assert.True(t, errors.Is(err, storage.ErrConstraint), "got %v", err)
}

func TestSQLiteStore_MissingCategoryLabelIsEmpty(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, domain.Contact{CategoryID: f.catB, LastName: "a", FirstName: "b", Gender: 1, Email: "x@y.z"})

	// Simulate a broken reference.
	_, err := f.db.Exec("PRAGMA foreign_keys=OFF")
	require.NoError(t, err)
	_, err = f.db.Exec("DELETE FROM categories WHERE id = ?", f.catB)
	require.NoError(t, err)

	got, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryContent)
}

func TestSQLiteStore_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.add(t, domain.Contact{CategoryID: f.catA, LastName: "a", FirstName: "b", Gender: 1, Email: "x@y.z"})

	require.NoError(t, f.store.Delete(ctx, id))
	err := f.store.Delete(ctx, id)
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 3, 0, 0, 0, time.UTC)

	yamada := f.add(t, domain.Contact{CategoryID: f.catA, LastName: "山田", FirstName: "太郎", Gender: 1, Email: "taro@example.com", CreatedAt: base})
	suzuki := f.add(t, domain.Contact{CategoryID: f.catB, LastName: "鈴木", FirstName: "花子", Gender: 2, Email: "hanako@example.com", CreatedAt: base.Add(time.Hour)})
	tanaka := f.add(t, domain.Contact{CategoryID: f.catA, LastName: "田中", FirstName: "一郎", Gender: 1, Email: "ICHIRO@example.com", CreatedAt: base.Add(24 * time.Hour)})
	percent := f.add(t, domain.Contact{CategoryID: f.catB, LastName: "100%", FirstName: "x", Gender: 3, Email: "p@example.com", CreatedAt: base.Add(48 * time.Hour)})

	tests := []struct {
		name   string
		filter ListFilter
		want   []int64
	}{
		{"no filter newest first", ListFilter{}, []int64{percent, tanaka, suzuki, yamada}},
		{"search last name", ListFilter{Search: "山"}, []int64{yamada}},
		{"search first name", ListFilter{Search: "花子"}, []int64{suzuki}},
		{"search email case-insensitive", ListFilter{Search: "ichiro"}, []int64{tanaka}},
		{"search escapes wildcards", ListFilter{Search: "%"}, []int64{percent}},
		{"gender", ListFilter{Gender: 1}, []int64{tanaka, yamada}},
		{"category", ListFilter{CategoryID: f.catB}, []int64{percent, suzuki}},
		{"gender and category", ListFilter{Gender: 1, CategoryID: f.catA}, []int64{tanaka, yamada}},
		{"date range", ListFilter{CreatedFrom: base.Add(-time.Hour), CreatedTo: base.Add(23 * time.Hour)}, []int64{suzuki, yamada}},
		{"search and gender disjoint", ListFilter{Search: "花子", Gender: 1}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.store.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))

			n, err := f.store.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func TestSQLiteStore_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	var all []int64
	for i := 0; i < 10; i++ {
		all = append(all, f.add(t, domain.Contact{CategoryID: f.catA, LastName: "a", FirstName: "b", Gender: 1, Email: "x@y.z", CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	page1, err := f.store.List(ctx, ListFilter{Limit: 7})
	require.NoError(t, err)
	assert.Equal(t, []int64{all[9], all[8], all[7], all[6], all[5], all[4], all[3]}, ids(page1))

	page2, err := f.store.List(ctx, ListFilter{Limit: 7, Offset: 7})
	require.NoError(t, err)
	assert.Equal(t, []int64{all[2], all[1], all[0]}, ids(page2))

	page3, err := f.store.List(ctx, ListFilter{Limit: 7, Offset: 14})
	require.NoError(t, err)
	assert.Empty(t, page3)
}
