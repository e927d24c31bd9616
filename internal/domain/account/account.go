package account

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyAccountID        = errors.New("account id cannot be empty")
	ErrShortAccountID        = errors.New("account id must have at least 4 characters")
	ErrEmptyOwnerName        = errors.New("owner name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Defaults for provisioned demo accounts.
const (
	DefaultAccountName   = "Chase Total Checking"
	DefaultAccountType   = "Checking"
	DefaultCurrency      = "USD"
	DefaultBankName      = "Chase Bank"
	DefaultRoutingNumber = "021000021"
	DefaultBranch        = "Manhattan Main Branch, New York, NY"
)

// BankDetails describes the institution holding the account
type BankDetails struct {
	BankName      string `json:"bank_name" bson:"bank_name"`
	RoutingNumber string `json:"routing_number" bson:"routing_number"`
	Branch        string `json:"branch" bson:"branch"`
}

// Identity is the immutable part of an account, fixed at provisioning.
type Identity struct {
	AccountID     string
	OwnerName     string
	AccountName   string
	AccountType   string
	AccountNumber string // masked, derived from AccountID
	Bank          BankDetails
}

// Balance holds the running balance. Current and Available always move together.
type Balance struct {
	Current   decimal.Decimal
	Available decimal.Decimal
	Currency  string
}

// Account is the stored account row
type Account struct {
	Identity Identity
	Balance  Balance
}

// IdentityOption customises a new identity
type IdentityOption func(*Identity)

// WithAccountName overrides the default product name
func WithAccountName(name string) IdentityOption {
	return func(i *Identity) { i.AccountName = name }
}

// WithAccountType overrides the default account type
func WithAccountType(accountType string) IdentityOption {
	return func(i *Identity) { i.AccountType = accountType }
}

// WithBankDetails overrides the default bank metadata
func WithBankDetails(bank BankDetails) IdentityOption {
	return func(i *Identity) { i.Bank = bank }
}

// NewIdentity builds an identity with the default product and bank metadata.
func NewIdentity(accountID, ownerName string, opts ...IdentityOption) (Identity, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Identity{}, ErrEmptyAccountID
	}
	if len(accountID) < 4 {
		return Identity{}, ErrShortAccountID
	}
	if strings.TrimSpace(ownerName) == "" {
		return Identity{}, ErrEmptyOwnerName
	}

	identity := Identity{
		AccountID:     accountID,
		OwnerName:     ownerName,
		AccountName:   DefaultAccountName,
		AccountType:   DefaultAccountType,
		AccountNumber: MaskAccountNumber(accountID),
		Bank: BankDetails{
			BankName:      DefaultBankName,
			RoutingNumber: DefaultRoutingNumber,
			Branch:        DefaultBranch,
		},
	}
	for _, opt := range opts {
		opt(&identity)
	}
	return identity, nil
}

// MaskAccountNumber keeps only the last four characters of the account id.
func MaskAccountNumber(accountID string) string {
	if len(accountID) <= 4 {
		return "****" + accountID
	}
	return "****" + accountID[len(accountID)-4:]
}

// NewBalance creates an opening balance with current == available.
func NewBalance(initial decimal.Decimal, currency string) (Balance, error) {
	if len(currency) != 3 {
		return Balance{}, ErrInvalidCurrencyFormat
	}
	amount := initial.Round(2)
	return Balance{
		Current:   amount,
		Available: amount,
		Currency:  strings.ToUpper(currency),
	}, nil
}

// Apply returns the balance moved by delta on both fields, rounded to cents.
func (b Balance) Apply(delta decimal.Decimal) Balance {
	return Balance{
		Current:   b.Current.Add(delta).Round(2),
		Available: b.Available.Add(delta).Round(2),
		Currency:  b.Currency,
	}
}

// Overdrawn reports whether the available balance is below zero.
func (b Balance) Overdrawn() bool {
	return b.Available.IsNegative()
}
