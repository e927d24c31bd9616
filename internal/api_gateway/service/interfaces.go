package service

import (
	"context"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/generator"
)

// GenerationService defines the interface for queueing generation runs
type GenerationService interface {
	// SubmitGeneration validates the request and publishes it for the synthesizer
	// Returns an error wrapping shared.ErrInvalidRequest or generator.ErrUnknownProfile for bad input
	SubmitGeneration(ctx context.Context, request *shared.GenerationRequest) error

	// ListProfiles returns the profiles a request may name
	ListProfiles() []*generator.Profile
}

// AccountSummary is an account row plus the state of its read model
type AccountSummary struct {
	Account        *account.Account
	PendingBatches int
}

// AccountService defines the interface for account operations
type AccountService interface {
	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id string) (*AccountSummary, error)

	// GetSnapshot returns the ledger snapshot saved by the last completed run
	// Returns ErrSnapshotNotFound if no run has completed for the account
	GetSnapshot(ctx context.Context, id string) (*ledger.Snapshot, error)
}

// TransactionService defines the interface for transaction read operations
type TransactionService interface {
	// GetTransactionByID retrieves a transaction by its ID
	// Returns nil if the transaction is not found
	GetTransactionByID(ctx context.Context, transactionID transaction.ID) (*transaction.View, error)

	// GetTransactionsByAccountID retrieves paginated list of transactions for an account
	// Returns views, total count matching the filter, and any error
	GetTransactionsByAccountID(ctx context.Context, filter transaction.ViewFilter, page, perPage int) ([]*transaction.View, int64, error)
}
