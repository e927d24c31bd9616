package transaction

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
)

// Repository is the relational store of persisted records.
type Repository interface {
	// LastTransactionID returns the highest persisted ID; ok is false when
	// nothing has been persisted yet.
	LastTransactionID(ctx context.Context) (id ID, ok bool, err error)

	// BulkInsert writes all records in one statement and returns the row count.
	BulkInsert(ctx context.Context, currency string, records []Record) (int64, error)

	// HasTransactions reports whether the account has persisted records dated in [from, to).
	HasTransactions(ctx context.Context, accountID string, from, to civil.Date) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ViewFilter narrows read-model queries. Empty From/To leave the range open;
// both bounds are inclusive YYYY-MM-DD dates.
type ViewFilter struct {
	AccountID string
	From      string
	To        string
}

// ViewRepository is the document read model fed from committed batches.
type ViewRepository interface {
	// Upsert stores views keyed by transaction ID; re-delivering a view replaces it.
	Upsert(ctx context.Context, views []View) error
	GetByTransactionID(ctx context.Context, id ID) (*View, error)
	Find(ctx context.Context, filter ViewFilter, limit, offset int) ([]*View, error)
	Count(ctx context.Context, filter ViewFilter) (int64, error)
}

// ErrDuplicateTransaction indicates a primary key collision on insert
type ErrDuplicateTransaction struct {
	TransactionID ID
}

func (e ErrDuplicateTransaction) Error() string {
	if e.TransactionID == "" {
		return "duplicate transaction id"
	}
	return "duplicate transaction id: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrDuplicateTransaction
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	return t.TransactionID == "" || t.TransactionID == e.TransactionID
}

// ErrTransactionNotFound indicates a missing read-model document
type ErrTransactionNotFound struct {
	TransactionID ID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.TransactionID == "" || t.TransactionID == e.TransactionID
}
