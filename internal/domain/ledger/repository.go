package ledger

import (
	"context"
)

// SnapshotRepository stores the latest snapshot per account
type SnapshotRepository interface {
	// Save replaces any previous snapshot of the same account
	Save(ctx context.Context, snapshot Snapshot) error
	GetByAccountID(ctx context.Context, accountID string) (*Snapshot, error)
}

// ErrSnapshotNotFound indicates no snapshot was stored for the account
type ErrSnapshotNotFound struct {
	AccountID string
}

func (e ErrSnapshotNotFound) Error() string {
	return "snapshot not found for account: " + e.AccountID
}

// Is implements the errors.Is interface for ErrSnapshotNotFound
func (e ErrSnapshotNotFound) Is(target error) bool {
	t, ok := target.(ErrSnapshotNotFound)
	if !ok {
		return false
	}
	return t.AccountID == "" || t.AccountID == e.AccountID
}
