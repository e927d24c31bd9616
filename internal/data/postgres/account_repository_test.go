package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledger-synth/internal/domain/account"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testIdentity(t *testing.T) account.Identity {
	t.Helper()
	identity, err := account.NewIdentity("1234567890", "John Doe")
	require.NoError(t, err)
	return identity
}

func TestAccountRepository_Exists(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := `SELECT EXISTS \(SELECT 1 FROM accounts WHERE account_id = \$1\)`

	t.Run("exists", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("1234567890").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, "1234567890")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("1234567890").WillReturnError(errors.New("db error"))

		_, err := repo.Exists(ctx, "1234567890")
		assert.ErrorContains(t, err, "failed to check account existence")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	identity := testIdentity(t)
	balance, err := account.NewBalance(decimal.NewFromInt(2000), "usd")
	require.NoError(t, err)

	query := `
		INSERT INTO accounts \(account_id, account_name, account_type, account_number, balance_current, balance_available, balance_currency, owner_name, bank_name, routing_number, branch\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11\)
	`
	args := []any{
		identity.AccountID, identity.AccountName, identity.AccountType, identity.AccountNumber,
		numeric(balance.Current), numeric(balance.Available), "USD", identity.OwnerName,
		account.DefaultBankName, account.DefaultRoutingNumber, account.DefaultBranch,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, identity, balance)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already exists", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, identity, balance)
		assert.ErrorIs(t, err, account.ErrAccountExists{AccountID: "1234567890"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).WithArgs(args...).WillReturnError(expectedErr)

		err := repo.Create(ctx, identity, balance)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	identity := testIdentity(t)

	query := `
		SELECT account_id, account_name, account_type, account_number, balance_current::text, balance_available::text, balance_currency, owner_name, bank_name, routing_number, branch
		FROM accounts
		WHERE account_id = \$1
	`
	columns := []string{"account_id", "account_name", "account_type", "account_number", "balance_current", "balance_available", "balance_currency", "owner_name", "bank_name", "routing_number", "branch"}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(columns).AddRow(
			identity.AccountID, identity.AccountName, identity.AccountType, identity.AccountNumber,
			"1843.27", "1843.27", "USD", identity.OwnerName,
			identity.Bank.BankName, identity.Bank.RoutingNumber, identity.Bank.Branch,
		)
		mock.ExpectQuery(query).WithArgs("1234567890").WillReturnRows(rows)

		acc, err := repo.GetByID(ctx, "1234567890")
		require.NoError(t, err)
		assert.Equal(t, identity, acc.Identity)
		assert.Equal(t, "1843.27", acc.Balance.Current.StringFixed(2))
		assert.True(t, acc.Balance.Current.Equal(acc.Balance.Available))
		assert.Equal(t, "USD", acc.Balance.Currency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("1234567890").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, "1234567890")
		assert.Nil(t, acc)
		var notFound account.ErrAccountNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "1234567890", notFound.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("1234567890").WillReturnError(errors.New("db error"))

		acc, err := repo.GetByID(ctx, "1234567890")
		assert.Nil(t, acc)
		assert.ErrorContains(t, err, "failed to get account")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_WithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	txRepo, ok := repo.WithTx(tx).(*AccountRepository)

	require.True(t, ok)
	assert.Equal(t, tx, txRepo.querier)
	assert.Equal(t, repo.logger, txRepo.logger)
}
