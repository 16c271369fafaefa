package listing

import (
	"net/http"
	"strconv"
)

// ParseQuery extracts a page request from URL parameters. Only the
// named filter fields are read; everything else in the query string is
// ignored.
func ParseQuery(r *http.Request, filterFields ...string) Query {
	params := r.URL.Query()

	filters := make(map[string]string, len(filterFields))
	for _, field := range filterFields {
		if v := params.Get(field); v != "" {
			filters[field] = v
		}
	}

	q := Query{
		Filters:       filters,
		SortField:     params.Get("sort"),
		SortDirection: SortDirection(params.Get("dir")),
		Cursor:        params.Get("cursor"),
		Search:        params.Get("q"),
		Refresh:       params.Get("refresh") == "true",
	}
	if size := params.Get("page_size"); size != "" {
		if parsed, err := strconv.Atoi(size); err == nil && parsed > 0 {
			q.PageSize = parsed
		}
	}
	return q
}
