// Package listing implements the paginated collection accessor shared by
// the wallpaper, category and collection listings: equality filters,
// keyset cursor continuation, prefix search and a freshness-window page
// cache.
package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// SortDirection selects listing order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const maxPageSize = 100

// Query describes one page request against an entity listing.
type Query struct {
	// Filters maps field name to a required equality value. Entries with
	// the value "all" or an empty value are ignored.
	Filters       map[string]string
	SortField     string
	SortDirection SortDirection
	PageSize      int
	// Cursor is the opaque continuation returned by a prior page, empty
	// for the first page.
	Cursor string
	// Search is an optional case-insensitive prefix term. Empty means a
	// plain listing.
	Search string
	// Refresh bypasses the page cache freshness window.
	Refresh bool
}

// Page is one fetched slice of a collection.
type Page[T any] struct {
	Items []T `json:"items"`
	// NextCursor references the last returned item, empty when the page
	// came back empty.
	NextCursor string `json:"next_cursor,omitempty"`
	// HasMore is the exact-page-size heuristic: true iff the page was
	// full. The true end of data is only observed when a later page
	// comes up short.
	HasMore bool `json:"has_more"`
}

// Seal stamps the pagination trailer on a fetched page: NextCursor
// references the last returned item (and stays empty for an empty
// page), HasMore applies the exact-page-size heuristic.
func (p *Page[T]) Seal(pageSize int, sig string, cursorOf func(T) (key, id string)) {
	if n := len(p.Items); n > 0 {
		key, id := cursorOf(p.Items[n-1])
		p.NextCursor = Cursor{Key: key, ID: id, Sig: sig}.Encode()
	}
	p.HasMore = len(p.Items) == pageSize
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters so a user supplied search term
// matches literally instead of acting as a wildcard.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// Normalize drops ignored filters and clamps the page size.
func (q Query) Normalize(defaultPageSize int) Query {
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		filters[k] = v
	}
	q.Filters = filters
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.SortDirection != SortAsc && q.SortDirection != SortDesc {
		q.SortDirection = SortDesc
	}
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))
	return q
}

// Signature derives a stable digest of everything a cursor is bound to.
// A cursor minted under one signature is invalid under any other, which
// forces pagination to restart whenever filters, sort or search change.
func (q Query) Signature(kind string) string {
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(kind)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(q.Filters[k])
	}
	b.WriteString("|sort=")
	b.WriteString(q.SortField)
	b.WriteString(string(q.SortDirection))
	b.WriteString("|q=")
	b.WriteString(q.Search)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
