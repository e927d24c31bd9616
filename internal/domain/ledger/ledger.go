// Package ledger implements the in-memory account aggregate: identity, running
// balance and the ordered list of generated transactions.
package ledger

import (
	"errors"
	"log/slog"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/transaction"
)

// ErrAlreadyStarted is returned when the opening balance is changed after the first append.
var ErrAlreadyStarted = errors.New("ledger already has transactions")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("txnid", func(fl validator.FieldLevel) bool {
		return transaction.ID(fl.Field().String()).Valid()
	})
	return v
}

// NegativeBalanceObserver is notified after an append leaves the available balance below zero.
type NegativeBalanceObserver func(record transaction.Record, balance account.Balance)

// Option configures a Ledger
type Option func(*Ledger)

// WithLogger sets the logger used for balance warnings
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithNegativeBalanceObserver registers a callback for overdrawn balances
func WithNegativeBalanceObserver(fn NegativeBalanceObserver) Option {
	return func(l *Ledger) { l.onNegative = fn }
}

// Ledger is safe for concurrent readers; appends are expected from a single generator.
type Ledger struct {
	mu         sync.RWMutex
	identity   account.Identity
	opening    account.Balance
	balance    account.Balance
	records    []transaction.Record
	logger     *slog.Logger
	onNegative NegativeBalanceObserver
}

// New creates an empty ledger with the given opening balance.
func New(identity account.Identity, opening account.Balance, opts ...Option) *Ledger {
	l := &Ledger{
		identity: identity,
		opening:  opening,
		balance:  opening,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ValidateRecord checks the required fields of a record and returns it with
// the amount rounded to cents.
func ValidateRecord(record transaction.Record) (transaction.Record, error) {
	if err := validate.Struct(record); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return transaction.Record{}, ErrSchema{
				TransactionID: record.TransactionID,
				Field:         fieldName(fe.Field()),
				Reason:        reasonFor(fe.Tag()),
			}
		}
		return transaction.Record{}, ErrSchema{TransactionID: record.TransactionID, Reason: err.Error()}
	}
	if !record.Date.IsValid() {
		return transaction.Record{}, ErrSchema{TransactionID: record.TransactionID, Field: "date", Reason: "required"}
	}

	record.Amount = record.Amount.Round(2)
	return record, nil
}

// Validate is ValidateRecord bound to the ledger.
func (l *Ledger) Validate(record transaction.Record) (transaction.Record, error) {
	return ValidateRecord(record)
}

// Append validates the record, appends it and moves both balance fields by its
// amount. A negative available balance is reported, never rejected.
func (l *Ledger) Append(record transaction.Record) error {
	valid, err := l.Validate(record)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if valid.AccountID == "" {
		valid.AccountID = l.identity.AccountID
	} else if valid.AccountID != l.identity.AccountID {
		l.mu.Unlock()
		return ErrSchema{TransactionID: valid.TransactionID, Field: "account_id", Reason: "belongs to account " + valid.AccountID}
	}
	l.records = append(l.records, valid)
	l.balance = l.balance.Apply(valid.Amount)
	balance := l.balance
	l.mu.Unlock()

	if balance.Overdrawn() {
		l.logger.Warn("Available balance is negative",
			"account_id", l.identity.AccountID,
			"transaction_id", valid.TransactionID.String(),
			"available", balance.Available.StringFixed(2),
		)
		if l.onNegative != nil {
			l.onNegative(valid, balance)
		}
	}
	return nil
}

// SetInitialBalance replaces the opening balance. Only allowed before the first append.
func (l *Ledger) SetInitialBalance(amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) > 0 {
		return ErrAlreadyStarted
	}
	l.opening = account.Balance{
		Current:   amount.Round(2),
		Available: amount.Round(2),
		Currency:  l.opening.Currency,
	}
	l.balance = l.opening
	return nil
}

func (l *Ledger) Identity() account.Identity {
	return l.identity
}

func (l *Ledger) Balance() account.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

func (l *Ledger) OpeningBalance() account.Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opening
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Transactions returns a copy of all records in append order.
func (l *Ledger) Transactions() []transaction.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]transaction.Record, len(l.records))
	copy(out, l.records)
	return out
}

// TransactionByID looks a record up by its ID.
func (l *Ledger) TransactionByID(id transaction.ID) (transaction.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.TransactionID == id {
			return r, true
		}
	}
	return transaction.Record{}, false
}

// TransactionsBetween returns records dated within [from, to], both inclusive.
func (l *Ledger) TransactionsBetween(from, to civil.Date) []transaction.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []transaction.Record
	for _, r := range l.records {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func fieldName(structField string) string {
	switch structField {
	case "TransactionID":
		return "transaction_id"
	case "AccountID":
		return "account_id"
	default:
		return structField
	}
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "txnid":
		return "must look like TXN00001"
	default:
		return "failed " + tag
	}
}
