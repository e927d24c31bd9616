package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/platform/persistence"
)

// TransactionViewRepository implements the transaction.ViewRepository interface for MongoDB
type TransactionViewRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewTransactionViewRepository creates a new MongoDB transaction read model
func NewTransactionViewRepository(logger *slog.Logger, db *mongo.Database) transaction.ViewRepository {
	return &TransactionViewRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes every view in one unordered bulk write keyed by transaction_id,
// so a redelivered batch overwrites its own documents.
func (r *TransactionViewRepository) Upsert(ctx context.Context, views []transaction.View) error {
	if len(views) == 0 {
		return nil
	}
	collection := r.db.Collection(persistence.TransactionsCollection)

	models := make([]mongo.WriteModel, 0, len(views))
	for _, v := range views {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"transaction_id": v.TransactionID}).
			SetReplacement(v).
			SetUpsert(true))
	}

	if _, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		r.logger.Error("Failed to upsert transaction views",
			"account_id", views[0].AccountID,
			"count", len(views),
			"error", err)
		return fmt.Errorf("failed to upsert transaction views: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a single view.
func (r *TransactionViewRepository) GetByTransactionID(ctx context.Context, id transaction.ID) (*transaction.View, error) {
	collection := r.db.Collection(persistence.TransactionsCollection)

	var view transaction.View
	err := collection.FindOne(ctx, bson.M{"transaction_id": id.String()}).Decode(&view)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction view",
			"transaction_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction view: %w", err)
	}

	return &view, nil
}

// Find returns a page of the account's views in calendar order
func (r *TransactionViewRepository) Find(ctx context.Context, filter transaction.ViewFilter, limit, offset int) ([]*transaction.View, error) {
	collection := r.db.Collection(persistence.TransactionsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "transaction_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, viewQuery(filter), opts)
	if err != nil {
		r.logger.Error("Failed to find transaction views",
			"account_id", filter.AccountID,
			"error", err)
		return nil, fmt.Errorf("failed to find transaction views: %w", err)
	}
	defer cursor.Close(ctx)

	views := []*transaction.View{}
	if err := cursor.All(ctx, &views); err != nil {
		r.logger.Error("Failed to decode transaction views",
			"account_id", filter.AccountID,
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction views: %w", err)
	}

	return views, nil
}

// Count counts the views matching filter
func (r *TransactionViewRepository) Count(ctx context.Context, filter transaction.ViewFilter) (int64, error) {
	collection := r.db.Collection(persistence.TransactionsCollection)

	count, err := collection.CountDocuments(ctx, viewQuery(filter))
	if err != nil {
		r.logger.Error("Failed to count transaction views",
			"account_id", filter.AccountID,
			"error", err)
		return 0, fmt.Errorf("failed to count transaction views: %w", err)
	}

	return count, nil
}

// viewQuery relies on YYYY-MM-DD dates sorting lexically.
func viewQuery(filter transaction.ViewFilter) bson.M {
	query := bson.M{"account_id": filter.AccountID}
	dateRange := bson.M{}
	if filter.From != "" {
		dateRange["$gte"] = filter.From
	}
	if filter.To != "" {
		dateRange["$lte"] = filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}
	return query
}
