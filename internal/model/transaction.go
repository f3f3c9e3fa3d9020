package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for transaction dates,
// both in the store and in rendered output.
const DateFormat = "2006-01-02"

// Transaction is one normalized aggregator transaction. Records are
// immutable once seen, except that Pending may flip to false when a later
// sync reports the transaction as settled.
type Transaction struct {
	ID          string // aggregator-assigned, globally unique
	AccountID   string // weak reference; the account may no longer exist
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out
	Pending     bool
}
