package projections

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/application/listutil"
	"fashionablylate/internal/domain/category"
	domainContact "fashionablylate/internal/domain/contact"
)

// ContactsPerPage is the fixed admin listing page size.
const ContactsPerPage = 7

// DateLayout is the format of the date filter.
const DateLayout = "2006-01-02"

// GetContactListQuery carries the admin filters as typed by the user.
// Raw strings are kept so the filter form can be re-rendered unchanged.
type GetContactListQuery struct {
	Search     string
	Gender     string
	CategoryID string
	Date       string
	Page       int
}

// ParseContactListQuery reads filters from the request query.
func ParseContactListQuery(q url.Values) GetContactListQuery {
	return GetContactListQuery{
		Search:     strings.TrimSpace(q.Get("search")),
		Gender:     strings.TrimSpace(q.Get("gender")),
		CategoryID: strings.TrimSpace(q.Get("category_id")),
		Date:       strings.TrimSpace(q.Get("date")),
		Page:       listutil.ParsePageParams(q, ContactsPerPage).Page,
	}
}

// Values encodes the active filters, without the page.
func (q GetContactListQuery) Values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{
		"search":      q.Search,
		"gender":      q.Gender,
		"category_id": q.CategoryID,
		"date":        q.Date,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// Filter converts the query into a store filter. Malformed values are ignored.
// The date is a calendar day in loc, turned into a [start, next day) range.
// PRE: loc is non-nil
// POST: Limit and Offset are zero
func (q GetContactListQuery) Filter(loc *time.Location) contact.ListFilter {
	f := contact.ListFilter{Search: q.Search}
	if g, err := strconv.Atoi(q.Gender); err == nil && domainContact.Gender(g).Valid() {
		f.Gender = domainContact.Gender(g)
	}
	if id, err := strconv.ParseInt(q.CategoryID, 10, 64); err == nil && id > 0 {
		f.CategoryID = id
	}
	if day, err := time.ParseInLocation(DateLayout, q.Date, loc); err == nil {
		f.CreatedFrom = day
		f.CreatedTo = day.AddDate(0, 0, 1)
	}
	return f
}

// GetContactListResult carries one page of the admin listing.
type GetContactListResult struct {
	Contacts   []contact.Entry
	Categories []category.Category
	Page       listutil.PageInfo
	Query      GetContactListQuery
}

// GetContactListDeps holds dependencies for GetContactList.
type GetContactListDeps struct {
	ContactStore  ContactStore
	CategoryStore CategoryStore
	Location      *time.Location
}

// QueryGetContactList retrieves one page of contacts matching every supplied filter.
// PRE: Location is set
// POST: Contacts are newest first, at most ContactsPerPage; a page past the end is empty
// INVARIANT: Categories is always the full unfiltered list
func QueryGetContactList(ctx context.Context, query GetContactListQuery, deps GetContactListDeps) (GetContactListResult, error) {
	filter := query.Filter(deps.location())

	total, err := deps.ContactStore.Count(ctx, filter)
	if err != nil {
		return GetContactListResult{}, fmt.Errorf("count contacts: %w", err)
	}
	page := listutil.NewPageInfo(query.Page, ContactsPerPage, total)

	var rows []contact.Entry
	if !page.OutOfRange() && total > 0 {
		filter.Limit = page.PerPage
		filter.Offset = page.Offset()
		rows, err = deps.ContactStore.List(ctx, filter)
		if err != nil {
			return GetContactListResult{}, fmt.Errorf("list contacts: %w", err)
		}
	}

	cats, err := deps.CategoryStore.List(ctx)
	if err != nil {
		return GetContactListResult{}, fmt.Errorf("list categories: %w", err)
	}

	return GetContactListResult{
		Contacts:   rows,
		Categories: cats,
		Page:       page,
		Query:      query,
	}, nil
}

func (d GetContactListDeps) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}
