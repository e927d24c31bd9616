package service

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/generator"
)

// GenerationService runs one account's generation request end to end.
type GenerationService interface {
	Generate(ctx context.Context, request *shared.GenerationRequest) (*RunResult, error)
}

// ProfileSource resolves profile names
type ProfileSource interface {
	Get(name string) (*generator.Profile, error)
}

// AccountProvisioner creates the account row once. created is false when the
// account already existed; an existing row is never updated.
type AccountProvisioner interface {
	Ensure(ctx context.Context, identity account.Identity, balance account.Balance) (created bool, err error)
}

// BatchFlusher persists one week batch atomically and returns the number of rows written.
type BatchFlusher interface {
	Flush(ctx context.Context, runID uuid.UUID, batch transaction.Batch) (int, error)
}

// TransactionHistory answers questions about already persisted rows
type TransactionHistory interface {
	LastTransactionID(ctx context.Context) (transaction.ID, bool, error)
	HasTransactions(ctx context.Context, accountID string, from, to civil.Date) (bool, error)
}

// FailureRecorder parks requests and batches that could not be processed.
type FailureRecorder interface {
	RecordRequestFailure(ctx context.Context, key string, raw []byte, reason shared.FailureReason, detail string) error
	RecordBatchFailure(ctx context.Context, runID uuid.UUID, batch transaction.Batch, cause error) error
}
