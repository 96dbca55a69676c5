package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// page is one page of a paginated list response. Agile list endpoints put
// items under "values"; issue list endpoints use "issues".
type page[T any] struct {
	StartAt    int   `json:"startAt"`
	MaxResults int   `json:"maxResults"`
	Total      int   `json:"total"`
	IsLast     *bool `json:"isLast"`
	Values     []T   `json:"values"`
	Issues     []T   `json:"issues"`
}

func (p page[T]) items() []T {
	if p.Values != nil {
		return p.Values
	}
	return p.Issues
}

// last treats an absent isLast as true.
func (p page[T]) last() bool {
	return p.IsLast == nil || *p.IsLast
}

// collect fetches every page of path and returns the items in server order.
// The offset advances by each page's maxResults until isLast is true or
// missing. There is no page cap; bound the call with ctx.
func collect[T any](ctx context.Context, e endpoint, path string, query url.Values) ([]T, error) {
	out := []T{}
	startAt := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collect %s: %w", path, err)
		}
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("startAt", strconv.Itoa(startAt))

		var p page[T]
		if err := e.do(ctx, http.MethodGet, path, q, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.items()...)
		if p.last() {
			return out, nil
		}
		startAt += p.MaxResults
	}
}
