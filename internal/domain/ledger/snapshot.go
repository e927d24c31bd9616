package ledger

import (
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/transaction"
)

// Snapshot is the serialisable projection of a ledger.
type Snapshot struct {
	Account AccountDocument `json:"account" bson:"account"`
}

// AccountDocument carries identity, balance and the full transaction list.
type AccountDocument struct {
	AccountID     string              `json:"account_id" bson:"account_id"`
	AccountName   string              `json:"account_name" bson:"account_name"`
	AccountType   string              `json:"account_type" bson:"account_type"`
	AccountNumber string              `json:"account_number" bson:"account_number"`
	Balance       BalanceDocument     `json:"balance" bson:"balance"`
	OwnerName     string              `json:"owner_name" bson:"owner_name"`
	BankDetails   account.BankDetails `json:"bank_details" bson:"bank_details"`
	Transactions  []transaction.View  `json:"transactions" bson:"transactions"`
}

// BalanceDocument is the balance in document form
type BalanceDocument struct {
	Current   float64 `json:"current" bson:"current"`
	Available float64 `json:"available" bson:"available"`
	Currency  string  `json:"currency" bson:"currency"`
}

// Snapshot returns a read-only copy of the ledger in document form.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Snapshot{
		Account: AccountDocument{
			AccountID:     l.identity.AccountID,
			AccountName:   l.identity.AccountName,
			AccountType:   l.identity.AccountType,
			AccountNumber: l.identity.AccountNumber,
			Balance: BalanceDocument{
				Current:   l.balance.Current.InexactFloat64(),
				Available: l.balance.Available.InexactFloat64(),
				Currency:  l.balance.Currency,
			},
			OwnerName:    l.identity.OwnerName,
			BankDetails:  l.identity.Bank,
			Transactions: transaction.Views(l.records),
		},
	}
}

// DecodeSnapshot parses a JSON snapshot. Type mismatches such as a
// non-numeric amount are reported as ErrSchema.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Snapshot{}, ErrSchema{Field: typeErr.Field, Reason: "must be " + typeErr.Type.String()}
		}
		return Snapshot{}, ErrSchema{Reason: err.Error()}
	}
	return snapshot, nil
}

// Restore rebuilds a ledger from a snapshot. The opening balance is derived
// so that replaying every transaction reproduces the stored balance.
func Restore(snapshot Snapshot, opts ...Option) (*Ledger, error) {
	doc := snapshot.Account
	if doc.Balance.Current != doc.Balance.Available {
		return nil, ErrSchema{Field: "balance.available", Reason: "must equal balance.current"}
	}

	records := make([]transaction.Record, 0, len(doc.Transactions))
	total := decimal.Zero
	for _, view := range doc.Transactions {
		record, err := RecordFromView(view)
		if err != nil {
			return nil, err
		}
		record, err = ValidateRecord(record)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		total = total.Add(record.Amount)
	}

	identity := account.Identity{
		AccountID:     doc.AccountID,
		OwnerName:     doc.OwnerName,
		AccountName:   doc.AccountName,
		AccountType:   doc.AccountType,
		AccountNumber: doc.AccountNumber,
		Bank:          doc.BankDetails,
	}
	final := decimal.NewFromFloat(doc.Balance.Current).Round(2)
	opening, err := account.NewBalance(final.Sub(total), doc.Balance.Currency)
	if err != nil {
		return nil, ErrSchema{Field: "balance.currency", Reason: err.Error()}
	}

	l := New(identity, opening, opts...)
	for _, record := range records {
		if err := l.Append(record); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// RecordFromView parses a document-form record back into a Record.
func RecordFromView(view transaction.View) (transaction.Record, error) {
	id := transaction.ID(view.TransactionID)
	if view.TransactionID == "" {
		return transaction.Record{}, ErrSchema{Field: "transaction_id", Reason: "required"}
	}
	if view.Amount == nil {
		return transaction.Record{}, ErrSchema{TransactionID: id, Field: "amount", Reason: "required"}
	}
	if view.Date == "" {
		return transaction.Record{}, ErrSchema{TransactionID: id, Field: "date", Reason: "required"}
	}
	date, err := civil.ParseDate(view.Date)
	if err != nil {
		return transaction.Record{}, ErrSchema{TransactionID: id, Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	var ts time.Time
	if view.Timestamp != "" {
		ts, err = time.ParseInLocation(transaction.TimestampLayout, view.Timestamp, time.Local)
		if err != nil {
			return transaction.Record{}, ErrSchema{TransactionID: id, Field: "timestamp", Reason: "must be YYYY-MM-DDTHH:MM:SS"}
		}
	}

	return transaction.Record{
		TransactionID: id,
		AccountID:     view.AccountID,
		Date:          date,
		Amount:        decimal.NewFromFloat(*view.Amount),
		Category:      view.Category,
		Merchant:      view.Merchant,
		Location:      view.Location,
		Type:          view.Type,
		Status:        transaction.Status(view.Status),
		Timestamp:     ts,
		PaymentMethod: view.PaymentMethod,
	}, nil
}
