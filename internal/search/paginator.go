// Package search filters catalog snapshots by name and pages the matches.
package search

import (
	"errors"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/Proton-105/storefront-bot/internal/catalog"
)

// DefaultPageSize is the number of items rendered per selection page.
const DefaultPageSize = 8

// ErrNotFound indicates that no item matched the query.
var ErrNotFound = errors.New("no items match query")

// Result holds the matched items in snapshot order.
type Result struct {
	Query      string
	Items      []catalog.Item
	TotalPages int
}

// Match returns every item whose name contains query, ignoring case and
// surrounding whitespace.
func Match(snapshot *catalog.Snapshot, query string) []catalog.Item {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(query))

	return lo.Filter(snapshot.All(), func(item catalog.Item, _ int) bool {
		return strings.Contains(folder.String(item.Name), needle)
	})
}

// Paginator slices result lists into fixed size pages. Pages are zero based.
type Paginator struct {
	PageSize int
}

// NewPaginator returns a Paginator, falling back to DefaultPageSize for
// non-positive sizes.
func NewPaginator(pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginator{PageSize: pageSize}
}

// Search matches query against snapshot and computes the page count.
// An empty match is reported as ErrNotFound.
func (p Paginator) Search(snapshot *catalog.Snapshot, query string) (Result, error) {
	query = strings.TrimSpace(query)

	matches := Match(snapshot, query)
	if len(matches) == 0 {
		return Result{Query: query}, ErrNotFound
	}

	return Result{Query: query, Items: matches, TotalPages: p.TotalPages(len(matches))}, nil
}

// TotalPages returns ceil(count / PageSize), or 0 when count is 0.
func (p Paginator) TotalPages(count int) int {
	if count <= 0 {
		return 0
	}
	size := p.size()
	return (count + size - 1) / size
}

// Valid reports whether page lies in [0, TotalPages(count)-1].
func (p Paginator) Valid(page, count int) bool {
	return page >= 0 && page < p.TotalPages(count)
}

// Page returns the items of the given page, clamped to the list bounds.
func (p Paginator) Page(items []catalog.Item, page int) []catalog.Item {
	if page < 0 || len(items) == 0 {
		return nil
	}

	size := p.size()
	start := page * size
	if start >= len(items) {
		return nil
	}

	return lo.Subset(items, start, uint(size))
}

func (p Paginator) size() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}
