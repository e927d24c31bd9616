package mongo

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/transaction"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func toDoc(t testing.TB, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func amount(v float64) *float64 { return &v }

func testView(id string, date string, value float64) transaction.View {
	return transaction.View{
		TransactionID: id,
		AccountID:     "1234567890",
		Date:          date,
		Amount:        amount(value),
		Category:      "Coffee",
		Merchant:      "Starbucks",
		Location:      "New York, NY",
		Type:          "Card Purchase",
		Status:        "Completed",
		Timestamp:     date + "T08:15:00",
		PaymentMethod: "Debit Card",
	}
}

func TestSnapshotRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "test.account_snapshots"

	snapshot := ledger.Snapshot{Account: ledger.AccountDocument{
		AccountID:     "1234567890",
		AccountName:   "Chase Total Checking",
		AccountType:   "Checking",
		AccountNumber: "****7890",
		Balance:       ledger.BalanceDocument{Current: 1994.25, Available: 1994.25, Currency: "USD"},
		OwnerName:     "John Doe",
		Transactions:  []transaction.View{testView("TXN00001", "2025-01-01", -5.75)},
	}}

	mt.Run("save upserts", func(mt *mtest.T) {
		repo := NewSnapshotRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Save(context.Background(), snapshot)

		assert.NoError(mt, err)
		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
	})

	mt.Run("save failure", func(mt *mtest.T) {
		repo := NewSnapshotRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "duplicate key"}))

		err := repo.Save(context.Background(), snapshot)

		assert.ErrorContains(mt, err, "failed to save account snapshot")
	})

	mt.Run("get found", func(mt *mtest.T) {
		repo := NewSnapshotRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDoc(mt, snapshot)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		got, err := repo.GetByAccountID(context.Background(), "1234567890")

		require.NoError(mt, err)
		assert.Equal(mt, snapshot.Account.AccountID, got.Account.AccountID)
		assert.Equal(mt, 1994.25, got.Account.Balance.Current)
		require.Len(mt, got.Account.Transactions, 1)
		assert.Equal(mt, -5.75, *got.Account.Transactions[0].Amount)
	})

	mt.Run("get not found", func(mt *mtest.T) {
		repo := NewSnapshotRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := repo.GetByAccountID(context.Background(), "999999")

		assert.Nil(mt, got)
		assert.ErrorIs(mt, err, ledger.ErrSnapshotNotFound{AccountID: "999999"})
	})
}

func TestTransactionViewRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "test.transactions"
	views := []transaction.View{
		testView("TXN00001", "2025-01-01", -5.75),
		testView("TXN00002", "2025-01-02", -6.10),
	}

	mt.Run("upsert", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		assert.NoError(mt, repo.Upsert(context.Background(), views))
		assert.NoError(mt, repo.Upsert(context.Background(), nil))
	})

	mt.Run("upsert failure", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad"}))

		err := repo.Upsert(context.Background(), views)

		assert.ErrorContains(mt, err, "failed to upsert transaction views")
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDoc(mt, views[1])),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		got, err := repo.GetByTransactionID(context.Background(), "TXN00002")

		require.NoError(mt, err)
		assert.Equal(mt, views[1], *got)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByTransactionID(context.Background(), "TXN09999")

		assert.ErrorIs(mt, err, transaction.ErrTransactionNotFound{TransactionID: "TXN09999"})
	})

	mt.Run("find", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDoc(mt, views[0]), toDoc(mt, views[1])),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		got, err := repo.Find(context.Background(), transaction.ViewFilter{AccountID: "1234567890", From: "2025-01-01"}, 20, 0)

		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "TXN00001", got[0].TransactionID)
		assert.Equal(mt, "TXN00002", got[1].TransactionID)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := NewTransactionViewRepository(newTestLogger(), mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(42)}}))

		count, err := repo.Count(context.Background(), transaction.ViewFilter{AccountID: "1234567890"})

		require.NoError(mt, err)
		assert.Equal(mt, int64(42), count)
	})
}

func TestViewQuery(t *testing.T) {
	assert.Equal(t, bson.M{"account_id": "1"}, viewQuery(transaction.ViewFilter{AccountID: "1"}))
	assert.Equal(t,
		bson.M{"account_id": "1", "date": bson.M{"$gte": "2025-01-01", "$lte": "2025-01-31"}},
		viewQuery(transaction.ViewFilter{AccountID: "1", From: "2025-01-01", To: "2025-01-31"}),
	)
}
