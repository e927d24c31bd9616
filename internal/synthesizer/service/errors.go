package service

import (
	"fmt"

	"github.com/ledger-synth/internal/domain/transaction"
)

// ErrBatchPersist reports a week batch that was rolled back. None of its rows
// were written.
type ErrBatchPersist struct {
	AccountID string
	Week      transaction.WeekKey
	FirstID   transaction.ID
	LastID    transaction.ID
	Size      int
	Cause     error
}

// NewErrBatchPersist describes batch and wraps cause
func NewErrBatchPersist(batch transaction.Batch, cause error) ErrBatchPersist {
	first, last := batch.IDRange()
	return ErrBatchPersist{
		AccountID: batch.AccountID,
		Week:      batch.Week,
		FirstID:   first,
		LastID:    last,
		Size:      batch.Len(),
		Cause:     cause,
	}
}

func (e ErrBatchPersist) Error() string {
	return fmt.Sprintf("failed to persist batch %s (%s..%s, %d records) of account %s: %v",
		e.Week, e.FirstID, e.LastID, e.Size, e.AccountID, e.Cause)
}

func (e ErrBatchPersist) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface for ErrBatchPersist
func (e ErrBatchPersist) Is(target error) bool {
	t, ok := target.(ErrBatchPersist)
	if !ok {
		return false
	}
	return t.AccountID == "" || t.AccountID == e.AccountID
}
