package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/platform/persistence"
)

var transactionColumns = []string{
	"transaction_id",
	"account_id",
	"transaction_type",
	"transaction_amount",
	"transaction_currency",
	"category",
	"merchant",
	"location",
	"transaction_date",
	"status",
	"payment_method",
}

// duplicateKeyDetail extracts the key value from a unique violation detail,
// e.g. `Key (transaction_id)=(TXN00042) already exists.`
var duplicateKeyDetail = regexp.MustCompile(`=\(([^)]*)\)`)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// LastTransactionID returns the highest persisted ID across all accounts.
// IDs widen past five digits, so longer IDs sort first.
func (r *TransactionRepository) LastTransactionID(ctx context.Context) (transaction.ID, bool, error) {
	query := `
		SELECT transaction_id
		FROM transactions
		ORDER BY LENGTH(transaction_id) DESC, transaction_id DESC
		LIMIT 1
	`

	var id string
	err := r.querier.QueryRow(ctx, query).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		r.logger.Error("Failed to get last transaction id", "error", err)
		return "", false, fmt.Errorf("failed to get last transaction id: %w", err)
	}

	return transaction.ID(id), true, nil
}

// BulkInsert copies all records in a single COPY statement. Nothing is written
// when any row collides with an existing transaction_id.
func (r *TransactionRepository) BulkInsert(ctx context.Context, currency string, records []transaction.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.TransactionID.String(),
			rec.AccountID,
			rec.Type,
			numeric(rec.Amount),
			currency,
			rec.Category,
			rec.Merchant,
			rec.Location,
			rec.Date.In(time.UTC),
			string(rec.Status),
			rec.PaymentMethod,
		})
	}

	n, err := r.querier.CopyFrom(ctx, pgx.Identifier{"transactions"}, transactionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			dup := transaction.ErrDuplicateTransaction{}
			if m := duplicateKeyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
				dup.TransactionID = transaction.ID(m[1])
			}
			return 0, dup
		}
		first, last := records[0].TransactionID, records[len(records)-1].TransactionID
		r.logger.Error("Failed to bulk insert transactions",
			"account_id", records[0].AccountID,
			"first_id", first.String(),
			"last_id", last.String(),
			"error", err,
		)
		return 0, fmt.Errorf("failed to bulk insert transactions: %w", err)
	}

	return n, nil
}

// HasTransactions reports whether any record of the account is dated in [from, to)
func (r *TransactionRepository) HasTransactions(ctx context.Context, accountID string, from, to civil.Date) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE account_id = $1 AND transaction_date >= $2::date AND transaction_date < $3::date
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, accountID, from.String(), to.String()).Scan(&exists); err != nil {
		r.logger.Error("Failed to check persisted transactions",
			"account_id", accountID,
			"from", from.String(),
			"to", to.String(),
			"error", err,
		)
		return false, fmt.Errorf("failed to check persisted transactions: %w", err)
	}
	return exists, nil
}
