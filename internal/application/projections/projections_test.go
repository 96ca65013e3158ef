package projections

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fashionablylate/internal/adapters/storage"
	categoryStore "fashionablylate/internal/adapters/storage/category"
	"fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/domain/category"
	domainContact "fashionablylate/internal/domain/contact"
)

var tokyo = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		panic(err)
	}
	return loc
}()

type fixture struct {
	db         *sql.DB
	contacts   *contact.SQLiteStore
	categories *categoryStore.SQLiteStore
	catA, catB int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(db, ":memory:"))

	f := fixture{db: db, contacts: contact.NewSQLiteStore(db), categories: categoryStore.NewSQLiteStore(db)}
	now := time.Now()
	f.catA, err = f.categories.Create(context.Background(), category.Category{Content: "商品の交換について", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	f.catB, err = f.categories.Create(context.Background(), category.Category{Content: "その他", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	return f
}

func (f fixture) add(t *testing.T, last, first, email string, g domainContact.Gender, cat int64, created time.Time) int64 {
	t.Helper()
	id, err := f.contacts.Create(context.Background(), domainContact.Contact{
		CategoryID: cat, LastName: last, FirstName: first, Email: email, Gender: g,
		Tell: "080-1234-5678", Address: "東京都渋谷区", Detail: "テスト", CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)
	return id
}

func (f fixture) listDeps() GetContactListDeps {
	return GetContactListDeps{ContactStore: f.contacts, CategoryStore: f.categories, Location: tokyo}
}

func ids(rows []contact.Entry) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

// TestParseContactListQuery checks raw values are kept and page is parsed.
func TestParseContactListQuery(t *testing.T) {
	q := ParseContactListQuery(url.Values{
		"search": {"  山田 "}, "gender": {"2"}, "category_id": {"x"}, "date": {"2026-03-01"}, "page": {"3"},
	})
	assert.Equal(t, GetContactListQuery{Search: "山田", Gender: "2", CategoryID: "x", Date: "2026-03-01", Page: 3}, q)
	assert.Equal(t, url.Values{"search": {"山田"}, "gender": {"2"}, "category_id": {"x"}, "date": {"2026-03-01"}}, q.Values())
}

// TestFilter_IgnoresMalformedValues checks bad filter values disable their predicate.
func TestFilter_IgnoresMalformedValues(t *testing.T) {
	f := GetContactListQuery{Gender: "9", CategoryID: "-1", Date: "2026/03/01"}.Filter(tokyo)
	assert.Equal(t, contact.ListFilter{}, f)

	f = GetContactListQuery{Gender: "male", CategoryID: "abc", Date: "yesterday"}.Filter(tokyo)
	assert.Equal(t, contact.ListFilter{}, f)
}

// TestFilter_DateIsLocalDay checks the date filter spans one local calendar day.
func TestFilter_DateIsLocalDay(t *testing.T) {
	f := GetContactListQuery{Date: "2026-03-01"}.Filter(tokyo)
	assert.Equal(t, time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC), f.CreatedFrom.UTC())
	assert.Equal(t, time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC), f.CreatedTo.UTC())
}

// TestQueryGetContactList_Filters checks every filter combination is applied conjunctively.
func TestQueryGetContactList_Filters(t *testing.T) {
	fx := newFixture(t)
	base := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC) // 12:00 JST on 2026-03-01
	yamada := fx.add(t, "山田", "太郎", "taro@example.com", domainContact.GenderMale, fx.catA, base)
	suzuki := fx.add(t, "鈴木", "花子", "hanako@example.com", domainContact.GenderFemale, fx.catB, base.Add(time.Hour))
	yamadaF := fx.add(t, "山田", "花子", "hy@sample.jp", domainContact.GenderFemale, fx.catA, base.Add(-24*time.Hour))
	// 2026-03-02 00:30 JST but still 2026-03-01 in UTC.
	late := fx.add(t, "佐藤", "一郎", "ichiro@EXAMPLE.com", domainContact.GenderOther, fx.catB, time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC))

	tests := []struct {
		name  string
		query GetContactListQuery
		want  []int64
	}{
		{"no filters newest first", GetContactListQuery{}, []int64{late, suzuki, yamada, yamadaF}},
		{"last name", GetContactListQuery{Search: "山田"}, []int64{yamada, yamadaF}},
		{"first name", GetContactListQuery{Search: "花子"}, []int64{suzuki, yamadaF}},
		{"email partial case insensitive", GetContactListQuery{Search: "example.com"}, []int64{late, suzuki, yamada}},
		{"gender", GetContactListQuery{Gender: "2"}, []int64{suzuki, yamadaF}},
		{"category", GetContactListQuery{CategoryID: "1"}, []int64{yamada, yamadaF}},
		{"date in tokyo", GetContactListQuery{Date: "2026-03-01"}, []int64{suzuki, yamada}},
		{"date next day tokyo", GetContactListQuery{Date: "2026-03-02"}, []int64{late}},
		{"search and gender", GetContactListQuery{Search: "山田", Gender: "2"}, []int64{yamadaF}},
		{"all four", GetContactListQuery{Search: "山田", Gender: "1", CategoryID: "1", Date: "2026-03-01"}, []int64{yamada}},
		{"no match", GetContactListQuery{Search: "山田", CategoryID: "2"}, []int64{}},
		{"malformed gender ignored", GetContactListQuery{Gender: "7", Search: "鈴木"}, []int64{suzuki}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.query.Page = 1
			res, err := QueryGetContactList(context.Background(), tt.query, fx.listDeps())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Contacts))
			assert.Equal(t, len(tt.want), res.Page.Total)
			assert.Len(t, res.Categories, 2)
		})
	}
}

// TestQueryGetContactList_Pagination checks page size 7 and empty pages past the end.
func TestQueryGetContactList_Pagination(t *testing.T) {
	fx := newFixture(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 16; i++ {
		fx.add(t, "山田", "太郎", "p@example.com", domainContact.GenderMale, fx.catA, start.Add(time.Duration(i)*time.Minute))
	}

	sizes := map[int]int{1: 7, 2: 7, 3: 2, 4: 0, 50: 0}
	for page, want := range sizes {
		res, err := QueryGetContactList(context.Background(), GetContactListQuery{Page: page}, fx.listDeps())
		require.NoError(t, err)
		assert.Len(t, res.Contacts, want, "page %d", page)
		assert.Equal(t, 16, res.Page.Total)
		assert.Equal(t, 3, res.Page.TotalPages)
		assert.Equal(t, page, res.Page.Page)
	}

	first, err := QueryGetContactList(context.Background(), GetContactListQuery{Page: 1}, fx.listDeps())
	require.NoError(t, err)
	for i := 1; i < len(first.Contacts); i++ {
		assert.True(t, first.Contacts[i-1].CreatedAt.After(first.Contacts[i].CreatedAt))
	}
}

// TestQueryGetContactDetail checks labels, including a missing category row.
func TestQueryGetContactDetail(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	id := fx.add(t, "山田", "太郎", "taro@example.com", domainContact.GenderFemale, fx.catA, time.Now())

	res, err := QueryGetContactDetail(ctx, id, GetContactDetailDeps{ContactStore: fx.contacts})
	require.NoError(t, err)
	assert.Equal(t, "女性", res.GenderLabel)
	assert.Equal(t, "商品の交換について", res.CategoryLabel)

	_, err = fx.db.Exec("PRAGMA foreign_keys=OFF")
	require.NoError(t, err)
	_, err = fx.db.Exec("UPDATE contacts SET category_id = 999, gender = 7 WHERE id = ?", id)
	require.NoError(t, err)

	res, err = QueryGetContactDetail(ctx, id, GetContactDetailDeps{ContactStore: fx.contacts})
	require.NoError(t, err)
	assert.Equal(t, "未選択", res.CategoryLabel)
	assert.Equal(t, "未選択", res.GenderLabel)

	_, err = QueryGetContactDetail(ctx, id+1, GetContactDetailDeps{ContactStore: fx.contacts})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// TestExportContacts checks the BOM, header and filtered rows.
func TestExportContacts(t *testing.T) {
	fx := newFixture(t)
	created := time.Date(2026, 3, 1, 3, 4, 5, 0, time.UTC)
	fx.add(t, "山田", "太郎", "taro@example.com", domainContact.GenderMale, fx.catA, created)
	fx.add(t, "鈴木", "花子", "hanako@example.com", domainContact.GenderFemale, fx.catB, created)

	var buf bytes.Buffer
	n, err := ExportContacts(context.Background(), GetContactListQuery{Gender: "1", Page: 3}, &buf,
		ExportContactsDeps{ContactStore: fx.contacts, Location: tokyo})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ExportHeader, records[0])
	assert.Equal(t, []string{
		"山田 太郎", "男性", "taro@example.com", "080-1234-5678", "東京都渋谷区", "", "商品の交換について", "テスト", "2026-03-01 12:04:05",
	}, records[1])
}

// TestExportContacts_NeutralisesFormulas checks visitor text cannot become a spreadsheet formula.
func TestExportContacts_NeutralisesFormulas(t *testing.T) {
	fx := newFixture(t)
	created := time.Date(2026, 3, 1, 3, 4, 5, 0, time.UTC)
	_, err := fx.contacts.Create(context.Background(), domainContact.Contact{
		CategoryID: fx.catA, LastName: `=HYPERLINK("https://evil.example","x")`, FirstName: "太郎",
		Email: "taro@example.com", Gender: domainContact.GenderMale, Tell: "080-1234-5678",
		Address: "+81 東京都", Building: "@SUM(A1)", Detail: "=1+2", CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = ExportContacts(context.Background(), GetContactListQuery{}, &buf,
		ExportContactsDeps{ContactStore: fx.contacts, Location: tokyo})
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, `'=HYPERLINK("https://evil.example","x") 太郎`, row[0])
	assert.Equal(t, "080-1234-5678", row[3])
	assert.Equal(t, "'+81 東京都", row[4])
	assert.Equal(t, "'@SUM(A1)", row[5])
	assert.Equal(t, "'=1+2", row[7])
}

func TestSpreadsheetSafe(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"山田":        "山田",
		"-1":        "'-1",
		"\tx":       "'\tx",
		"\rx":       "'\rx",
		"a=b":       "a=b",
		"080-1-2":   "080-1-2",
		"x@example": "x@example",
	}
	for in, want := range tests {
		assert.Equal(t, want, spreadsheetSafe(in), "input %q", in)
	}
}

type failingContacts struct{ ContactStore }

func (failingContacts) Count(context.Context, contact.ListFilter) (int, error) {
	return 0, errors.New("db down")
}

// TestQueryGetContactList_StoreError checks store errors propagate.
func TestQueryGetContactList_StoreError(t *testing.T) {
	fx := newFixture(t)
	_, err := QueryGetContactList(context.Background(), GetContactListQuery{Page: 1},
		GetContactListDeps{ContactStore: failingContacts{fx.contacts}, CategoryStore: fx.categories, Location: tokyo})
	assert.Error(t, err)
}
