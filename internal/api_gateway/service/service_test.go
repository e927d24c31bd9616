package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/outbox"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/generator"
)

type MockRequestPublisher struct {
	mock.Mock
}

func (m *MockRequestPublisher) PublishRequest(ctx context.Context, req *shared.GenerationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockRequestPublisher) Close() error {
	return m.Called().Error(0)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Exists(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepo) Create(ctx context.Context, identity account.Identity, balance account.Balance) error {
	return m.Called(ctx, identity, balance).Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, accountID string) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	return m.Called(tx).Get(0).(account.Repository)
}

type MockOutboxRepo struct {
	mock.Mock
	outbox.Repository
}

func (m *MockOutboxRepo) CountPending(ctx context.Context, accountID string) (int, error) {
	args := m.Called(ctx, accountID)
	return args.Int(0), args.Error(1)
}

type MockSnapshotRepo struct {
	mock.Mock
}

func (m *MockSnapshotRepo) Save(ctx context.Context, snapshot ledger.Snapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *MockSnapshotRepo) GetByAccountID(ctx context.Context, accountID string) (*ledger.Snapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Snapshot), args.Error(1)
}

type MockViewRepo struct {
	mock.Mock
}

func (m *MockViewRepo) Upsert(ctx context.Context, views []transaction.View) error {
	return m.Called(ctx, views).Error(0)
}

func (m *MockViewRepo) GetByTransactionID(ctx context.Context, id transaction.ID) (*transaction.View, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.View), args.Error(1)
}

func (m *MockViewRepo) Find(ctx context.Context, filter transaction.ViewFilter, limit, offset int) ([]*transaction.View, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.View), args.Error(1)
}

func (m *MockViewRepo) Count(ctx context.Context, filter transaction.ViewFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerationService_SubmitGeneration(t *testing.T) {
	registry, err := generator.LoadBuiltin()
	require.NoError(t, err)

	valid := func() *shared.GenerationRequest {
		return &shared.GenerationRequest{
			RunID:          uuid.New(),
			AccountID:      "1234567894",
			OwnerName:      "Bob",
			Profile:        "poor-spending",
			InitialBalance: decimal.NewFromInt(10000),
		}
	}

	t.Run("publishes valid request", func(t *testing.T) {
		producer := &MockRequestPublisher{}
		request := valid()
		producer.On("PublishRequest", mock.Anything, request).Return(nil)

		err := NewGenerationService(newTestLogger(), registry, producer).SubmitGeneration(context.Background(), request)

		assert.NoError(t, err)
		producer.AssertExpectations(t)
	})

	t.Run("rejects invalid request", func(t *testing.T) {
		producer := &MockRequestPublisher{}
		request := valid()
		request.OwnerName = ""

		err := NewGenerationService(newTestLogger(), registry, producer).SubmitGeneration(context.Background(), request)

		assert.ErrorIs(t, err, shared.ErrInvalidRequest)
		producer.AssertNotCalled(t, "PublishRequest", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown profile", func(t *testing.T) {
		producer := &MockRequestPublisher{}
		request := valid()
		request.Profile = "millionaire"

		err := NewGenerationService(newTestLogger(), registry, producer).SubmitGeneration(context.Background(), request)

		assert.ErrorIs(t, err, generator.ErrUnknownProfile{})
		producer.AssertNotCalled(t, "PublishRequest", mock.Anything, mock.Anything)
	})

	t.Run("publish failure", func(t *testing.T) {
		producer := &MockRequestPublisher{}
		producer.On("PublishRequest", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		err := NewGenerationService(newTestLogger(), registry, producer).SubmitGeneration(context.Background(), valid())

		assert.EqualError(t, err, "broker down")
	})

	t.Run("lists profiles", func(t *testing.T) {
		profiles := NewGenerationService(newTestLogger(), registry, &MockRequestPublisher{}).ListProfiles()
		assert.Len(t, profiles, len(registry.Names()))
	})
}

func TestAccountService(t *testing.T) {
	acc := &account.Account{Identity: account.Identity{AccountID: "1234567890", OwnerName: "John"}}

	t.Run("account with pending batches", func(t *testing.T) {
		accounts, outboxRepo := &MockAccountRepo{}, &MockOutboxRepo{}
		accounts.On("GetByID", mock.Anything, "1234567890").Return(acc, nil)
		outboxRepo.On("CountPending", mock.Anything, "1234567890").Return(3, nil)

		summary, err := NewAccountService(newTestLogger(), accounts, outboxRepo, &MockSnapshotRepo{}).GetAccountByID(context.Background(), "1234567890")

		require.NoError(t, err)
		assert.Equal(t, acc, summary.Account)
		assert.Equal(t, 3, summary.PendingBatches)
	})

	t.Run("not found passes through", func(t *testing.T) {
		accounts := &MockAccountRepo{}
		accounts.On("GetByID", mock.Anything, "999999").Return(nil, account.ErrAccountNotFound{AccountID: "999999"})

		_, err := NewAccountService(newTestLogger(), accounts, &MockOutboxRepo{}, &MockSnapshotRepo{}).GetAccountByID(context.Background(), "999999")

		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
	})

	t.Run("snapshot", func(t *testing.T) {
		snapshots := &MockSnapshotRepo{}
		snap := &ledger.Snapshot{Account: ledger.AccountDocument{AccountID: "1234567890"}}
		snapshots.On("GetByAccountID", mock.Anything, "1234567890").Return(snap, nil)

		got, err := NewAccountService(newTestLogger(), &MockAccountRepo{}, &MockOutboxRepo{}, snapshots).GetSnapshot(context.Background(), "1234567890")

		require.NoError(t, err)
		assert.Equal(t, snap, got)
	})
}

func TestTransactionService(t *testing.T) {
	view := &transaction.View{TransactionID: "TXN00001", AccountID: "1234567890"}

	t.Run("found", func(t *testing.T) {
		views := &MockViewRepo{}
		views.On("GetByTransactionID", mock.Anything, transaction.ID("TXN00001")).Return(view, nil)

		got, err := NewTransactionService(newTestLogger(), views).GetTransactionByID(context.Background(), "TXN00001")

		require.NoError(t, err)
		assert.Equal(t, view, got)
	})

	t.Run("not found is nil", func(t *testing.T) {
		views := &MockViewRepo{}
		views.On("GetByTransactionID", mock.Anything, transaction.ID("TXN09999")).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: "TXN09999"})

		got, err := NewTransactionService(newTestLogger(), views).GetTransactionByID(context.Background(), "TXN09999")

		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("pages with offset", func(t *testing.T) {
		views := &MockViewRepo{}
		filter := transaction.ViewFilter{AccountID: "1234567890", From: "2025-01-01"}
		views.On("Find", mock.Anything, filter, 20, 40).Return([]*transaction.View{view}, nil)
		views.On("Count", mock.Anything, filter).Return(int64(41), nil)

		got, total, err := NewTransactionService(newTestLogger(), views).GetTransactionsByAccountID(context.Background(), filter, 3, 20)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int64(41), total)
	})

	t.Run("count failure", func(t *testing.T) {
		views := &MockViewRepo{}
		views.On("Find", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*transaction.View{}, nil)
		views.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("mongo down"))

		_, _, err := NewTransactionService(newTestLogger(), views).GetTransactionsByAccountID(context.Background(), transaction.ViewFilter{}, 1, 10)

		assert.Error(t, err)
	})
}
