// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a transaction with WithTx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/platform/persistence"
)

const uniqueViolation = "23505"

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Exists checks the primary key only
func (r *AccountRepository) Exists(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_id = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check account existence", "account_id", accountID, "error", err)
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}

// Create inserts the account row. A primary key collision is reported as
// account.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, identity account.Identity, balance account.Balance) error {
	query := `
		INSERT INTO accounts (account_id, account_name, account_type, account_number, balance_current, balance_available, balance_currency, owner_name, bank_name, routing_number, branch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		identity.AccountID,
		identity.AccountName,
		identity.AccountType,
		identity.AccountNumber,
		numeric(balance.Current),
		numeric(balance.Available),
		balance.Currency,
		identity.OwnerName,
		identity.Bank.BankName,
		identity.Bank.RoutingNumber,
		identity.Bank.Branch,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return account.ErrAccountExists{AccountID: identity.AccountID}
		}
		r.logger.Error("Failed to create account", "account_id", identity.AccountID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*account.Account, error) {
	query := `
		SELECT account_id, account_name, account_type, account_number, balance_current::text, balance_available::text, balance_currency, owner_name, bank_name, routing_number, branch
		FROM accounts
		WHERE account_id = $1
	`

	var (
		acc                account.Account
		current, available string
	)
	err := r.querier.QueryRow(ctx, query, accountID).Scan(
		&acc.Identity.AccountID,
		&acc.Identity.AccountName,
		&acc.Identity.AccountType,
		&acc.Identity.AccountNumber,
		&current,
		&available,
		&acc.Balance.Currency,
		&acc.Identity.OwnerName,
		&acc.Identity.Bank.BankName,
		&acc.Identity.Bank.RoutingNumber,
		&acc.Identity.Bank.Branch,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: accountID}
		}
		r.logger.Error("Failed to get account", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if acc.Balance.Current, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("failed to parse balance_current: %w", err)
	}
	if acc.Balance.Available, err = decimal.NewFromString(available); err != nil {
		return nil, fmt.Errorf("failed to parse balance_available: %w", err)
	}

	return &acc, nil
}
