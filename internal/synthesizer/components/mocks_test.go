package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/outbox"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Exists(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepo) Create(ctx context.Context, identity account.Identity, balance account.Balance) error {
	args := m.Called(ctx, identity, balance)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, accountID string) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	return args.Get(0).(account.Repository)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) LastTransactionID(ctx context.Context) (transaction.ID, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(transaction.ID), args.Bool(1), args.Error(2)
}

func (m *MockTransactionRepo) BulkInsert(ctx context.Context, currency string, records []transaction.Record) (int64, error) {
	args := m.Called(ctx, currency, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) HasTransactions(ctx context.Context, accountID string, from, to civil.Date) (bool, error) {
	args := m.Called(ctx, accountID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepo) WithTx(tx pgx.Tx) transaction.Repository {
	args := m.Called(tx)
	return args.Get(0).(transaction.Repository)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) CountPending(ctx context.Context, accountID string) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

type MockDLQ struct {
	mock.Mock
}

func (m *MockDLQ) PublishToDLQ(ctx context.Context, key string, value []byte, reason shared.FailureReason, detail string) error {
	args := m.Called(ctx, key, value, reason, detail)
	return args.Error(0)
}

func (m *MockDLQ) Close() error {
	return m.Called().Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBatch() transaction.Batch {
	day := civil.Date{Year: 2025, Month: time.January, Day: 2}
	record := func(id transaction.ID, amount string) transaction.Record {
		return transaction.Record{
			TransactionID: id,
			AccountID:     "1234567890",
			Type:          "Debit",
			Amount:        decimal.RequireFromString(amount),
			Category:      "Food & Drink",
			Merchant:      "Starbucks",
			Location:      "Seattle, WA",
			Date:          day,
			Status:        transaction.StatusCompleted,
			PaymentMethod: "Credit Card",
		}
	}
	return transaction.Batch{
		AccountID: "1234567890",
		Currency:  "USD",
		Week:      transaction.WeekOf(day),
		Records:   []transaction.Record{record("TXN00001", "-6.50"), record("TXN00002", "-7.25")},
	}
}

var testRunID = uuid.MustParse("6f1c1f0e-8f8b-4a4c-9a53-0c1d2e3f4a5b")
