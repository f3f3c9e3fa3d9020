package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies aggregator accounts.
type AccountType string

const (
	AccountTypeBank   AccountType = "bank"
	AccountTypeCredit AccountType = "credit"
)

// Account is the current snapshot of one aggregator account. Snapshots are
// replaced wholesale on every account sync; there is no account history.
type Account struct {
	ID       string
	Type     AccountType
	Name     string
	FIName   string // financial institution display name
	Balance  decimal.Decimal
	Currency string
	Active   bool

	// Informational only, never used for diffing.
	CreatedAt time.Time
	UpdatedAt time.Time
}
