// Package money formats prices for chat messages.
package money

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var acc = accounting.Accounting{
	Symbol:    "₽",
	Precision: 2,
	Thousand:  " ",
	Decimal:   ".",
	Format:    "%v %s",
}

// String renders price as "1 000.00 ₽".
func String(price decimal.Decimal) string {
	return acc.FormatMoney(price)
}
