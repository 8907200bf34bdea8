// Package catalog holds the product catalog model and the sources it is read from.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable indicates that the catalog store could not be reached.
var ErrUnavailable = errors.New("catalog unavailable")

// Item is a single product row.
type Item struct {
	ID       int64           `json:"id" db:"id"`
	Category string          `json:"category" db:"category"`
	Brand    string          `json:"brand" db:"brand"`
	Model    string          `json:"model" db:"model"`
	Name     string          `json:"name" db:"name"`
	Price    decimal.Decimal `json:"price" db:"price"`
}

// Group is an ordered list of items sharing a category.
type Group struct {
	Category string
	Items    []Item
}
