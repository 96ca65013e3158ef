package projections

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ExportHeader is the first CSV row.
var ExportHeader = []string{
	"お名前", "性別", "メールアドレス", "電話番号", "住所", "建物名", "お問い合わせの種類", "お問い合わせ内容", "登録日時",
}

// ExportTimeLayout formats created_at in the export.
const ExportTimeLayout = "2006-01-02 15:04:05"

// utf8BOM lets spreadsheet tools detect the encoding.
const utf8BOM = "\ufeff"

// ExportContactsDeps holds dependencies for ExportContacts.
type ExportContactsDeps struct {
	ContactStore ContactStore
	Location     *time.Location
}

// ExportContacts writes every contact matching the query as CSV, newest first.
// The page number is ignored.
// PRE: w is writable
// POST: Returns the number of data rows written
func ExportContacts(ctx context.Context, query GetContactListQuery, w io.Writer, deps ExportContactsDeps) (int, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	rows, err := deps.ContactStore.List(ctx, query.Filter(loc))
	if err != nil {
		return 0, fmt.Errorf("list contacts: %w", err)
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, err
	}
	for _, e := range rows {
		if err := cw.Write([]string{
			spreadsheetSafe(e.FullName()),
			e.Gender.Label(),
			spreadsheetSafe(e.Email),
			spreadsheetSafe(e.Tell),
			spreadsheetSafe(e.Address),
			spreadsheetSafe(e.Building),
			spreadsheetSafe(CategoryLabel(e)),
			spreadsheetSafe(e.Detail),
			e.CreatedAt.In(loc).Format(ExportTimeLayout),
		}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// spreadsheetSafe prefixes a quote to cells a spreadsheet would evaluate as a formula.
func spreadsheetSafe(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}
