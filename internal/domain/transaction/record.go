// Package transaction holds the canonical generated transaction record, its
// identifier scheme and the weekly batch grouping used for persistence.
package transaction

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Status is the settlement status carried on a record.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
)

const (
	// DateLayout is the wire format of a record's calendar day.
	DateLayout = "2006-01-02"
	// TimestampLayout is the wire format of a record's generation instant (local time, no zone).
	TimestampLayout = "2006-01-02T15:04:05"
)

// Record is one line of an account's generated history. Amount is signed:
// debits are stored negative, credits positive.
type Record struct {
	TransactionID ID              `validate:"required,txnid"`
	AccountID     string
	Date          civil.Date      `validate:"-"`
	Amount        decimal.Decimal `validate:"-"`
	Category      string
	Merchant      string
	Location      string
	Type          string
	Status        Status
	Timestamp     time.Time
	PaymentMethod string
}

// IsDebit reports whether the record takes money out of the account.
func (r Record) IsDebit() bool {
	return r.Amount.IsNegative()
}
