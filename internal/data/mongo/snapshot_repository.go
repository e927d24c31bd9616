// Package mongo provides MongoDB implementations of the document read models.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/platform/persistence"
)

// SnapshotRepository implements the ledger.SnapshotRepository interface for MongoDB
type SnapshotRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSnapshotRepository creates a new MongoDB snapshot repository
func NewSnapshotRepository(logger *slog.Logger, db *mongo.Database) ledger.SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Save replaces the account's snapshot, inserting it on first save.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot ledger.Snapshot) error {
	collection := r.db.Collection(persistence.SnapshotsCollection)
	accountID := snapshot.Account.AccountID

	filter := bson.M{"account.account_id": accountID}
	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, snapshot, opts); err != nil {
		r.logger.Error("Failed to save account snapshot",
			"account_id", accountID,
			"transactions", len(snapshot.Account.Transactions),
			"error", err)
		return fmt.Errorf("failed to save account snapshot: %w", err)
	}

	return nil
}

// GetByAccountID returns ErrSnapshotNotFound when the account was never snapshotted.
func (r *SnapshotRepository) GetByAccountID(ctx context.Context, accountID string) (*ledger.Snapshot, error) {
	collection := r.db.Collection(persistence.SnapshotsCollection)

	var snapshot ledger.Snapshot
	err := collection.FindOne(ctx, bson.M{"account.account_id": accountID}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrSnapshotNotFound{AccountID: accountID}
		}
		r.logger.Error("Failed to get account snapshot",
			"account_id", accountID,
			"error", err)
		return nil, fmt.Errorf("failed to get account snapshot: %w", err)
	}

	return &snapshot, nil
}
