package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Exists(ctx context.Context, accountID string) (bool, error)

	// Create inserts the account row; callers check Exists first
	Create(ctx context.Context, identity Identity, balance Balance) error

	GetByID(ctx context.Context, accountID string) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == "" || t.AccountID == e.AccountID
}

// ErrAccountExists indicates a primary key collision on account insert
type ErrAccountExists struct {
	AccountID string
}

func (e ErrAccountExists) Error() string {
	return "account already exists: " + e.AccountID
}

// Is implements the errors.Is interface for ErrAccountExists
func (e ErrAccountExists) Is(target error) bool {
	t, ok := target.(ErrAccountExists)
	if !ok {
		return false
	}
	return t.AccountID == "" || t.AccountID == e.AccountID
}
