package admin

import (
	"context"

	"github.com/go-cloudinary/cloudinary/api"
)

// Search accumulates a query for the search endpoint. The zero value
// matches everything; methods return the receiver for chaining.
type Search struct {
	expression string
	sortBy     []map[string]string
	aggregates []string
	withFields []string
	maxResults int
	nextCursor string
}

// NewSearch starts an empty query
func NewSearch() *Search {
	return &Search{}
}

// Expression sets the query expression
func (s *Search) Expression(expression string) *Search {
	s.expression = expression
	return s
}

// SortBy appends a sort criterion; direction is "asc" or "desc"
func (s *Search) SortBy(field, direction string) *Search {
	s.sortBy = append(s.sortBy, map[string]string{field: direction})
	return s
}

// Aggregate requests counts bucketed by the given field
func (s *Search) Aggregate(field string) *Search {
	s.aggregates = append(s.aggregates, field)
	return s
}

// WithField includes an extra attribute in each result
func (s *Search) WithField(field string) *Search {
	s.withFields = append(s.withFields, field)
	return s
}

// MaxResults caps the number of results per page
func (s *Search) MaxResults(n int) *Search {
	s.maxResults = n
	return s
}

// NextCursor resumes a paged query
func (s *Search) NextCursor(cursor string) *Search {
	s.nextCursor = cursor
	return s
}

func (s *Search) toQuery() map[string]interface{} {
	query := map[string]interface{}{}
	if s.expression != "" {
		query["expression"] = s.expression
	}
	if len(s.sortBy) > 0 {
		query["sort_by"] = s.sortBy
	}
	if len(s.aggregates) > 0 {
		query["aggregate"] = s.aggregates
	}
	if len(s.withFields) > 0 {
		query["with_field"] = s.withFields
	}
	if s.maxResults > 0 {
		query["max_results"] = s.maxResults
	}
	if s.nextCursor != "" {
		query["next_cursor"] = s.nextCursor
	}
	return query
}

// Execute runs the query
func (s *Search) Execute(ctx context.Context, a *API) (*api.Response, error) {
	return a.SearchResources(ctx, s)
}

// SearchResources runs a search query against the stored assets
func (a *API) SearchResources(ctx context.Context, s *Search) (*api.Response, error) {
	return a.callJSON(ctx, "POST", []string{"resources", "search"}, s.toQuery())
}
