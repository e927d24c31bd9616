// Package catalog is the closed set of transaction variants. Each variant is
// template data; Make is the single constructor that turns a template plus
// caller input into a canonical record.
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/domain/transaction"
)

// Kind names a transaction variant
type Kind string

const (
	KindRent           Kind = "rent"
	KindBillPayment    Kind = "bill_payment"
	KindNetflix        Kind = "netflix"
	KindSalary         Kind = "salary"
	KindFreelance      Kind = "freelance"
	KindMcDonalds      Kind = "mcdonalds"
	KindSubscription   Kind = "subscription"
	KindUtility        Kind = "utility"
	KindCoffee         Kind = "coffee"
	KindChipotle       Kind = "chipotle"
	KindGroceries      Kind = "groceries"
	KindTransportation Kind = "transportation"
	KindUber           Kind = "uber"
	KindAmazon         Kind = "amazon"
)

// Direction fixes the sign of a variant's amount
type Direction int

const (
	Debit Direction = iota
	Credit
)

func (d Direction) String() string {
	if d == Credit {
		return "credit"
	}
	return "debit"
}

// Template is the default metadata of a variant.
type Template struct {
	Direction     Direction
	DefaultAmount decimal.NullDecimal
	Category      string
	Merchant      string
	Location      string
	Type          string
	PaymentMethod string
	Status        transaction.Status
}

// HasDefaultAmount reports whether the variant can be built without an amount.
func (t Template) HasDefaultAmount() bool {
	return t.DefaultAmount.Valid
}

// Uber service types
const (
	ServiceRide = "Ride"
	ServiceFood = "Food"
)

const (
	manhattan     = "Manhattan, New York, NY"
	newYork       = "New York, NY"
	online        = "Online"
	debitCard     = "Debit Card"
	creditCard    = "Credit Card"
	ach           = "ACH"
	recurringType = "Recurring Debit"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var templates = map[Kind]Template{
	KindRent: {
		Direction: Debit, Category: "Rent", Merchant: "Park Avenue Apartments",
		Location: manhattan, Type: "ACH Transfer", PaymentMethod: ach,
	},
	KindBillPayment: {
		Direction: Debit, Category: "Bill Payment", Merchant: "Bill Payment",
		Location: newYork, Type: "Bill Payment", PaymentMethod: ach,
	},
	KindNetflix: {
		Direction: Debit, DefaultAmount: amount("12.99"), Category: "Entertainment", Merchant: "Netflix",
		Location: online, Type: recurringType, PaymentMethod: "Subscription",
	},
	KindSalary: {
		Direction: Credit, Category: "Income", Merchant: "Tech Corp Inc",
		Location: newYork, Type: "Direct Deposit", PaymentMethod: ach,
	},
	KindFreelance: {
		Direction: Credit, Category: "Income", Merchant: "Freelance Work",
		Location: manhattan, Type: "Credit", PaymentMethod: "Bank Transfer", Status: transaction.StatusPending,
	},
	KindMcDonalds: {
		Direction: Debit, DefaultAmount: amount("12.99"), Category: "Fast Food", Merchant: "McDonald's",
		Location: "Queens, New York, NY", Type: "Debit", PaymentMethod: debitCard,
	},
	KindSubscription: {
		Direction: Debit, Category: "Subscription", Merchant: "Subscription Service",
		Location: online, Type: recurringType, PaymentMethod: "Subscription",
	},
	KindUtility: {
		Direction: Debit, Category: "Utilities", Merchant: "ConEdison",
		Location: newYork, Type: "Bill Payment", PaymentMethod: ach,
	},
	KindCoffee: {
		Direction: Debit, DefaultAmount: amount("5.75"), Category: "Dining", Merchant: "Starbucks",
		Location: manhattan, Type: "Debit", PaymentMethod: debitCard,
	},
	KindChipotle: {
		Direction: Debit, DefaultAmount: amount("12.99"), Category: "Dining", Merchant: "Chipotle Mexican Grill",
		Location: manhattan, Type: "Debit", PaymentMethod: debitCard,
	},
	KindGroceries: {
		Direction: Debit, Category: "Groceries", Merchant: "Trader Joe's",
		Location: manhattan, Type: "Debit", PaymentMethod: debitCard,
	},
	KindTransportation: {
		Direction: Debit, DefaultAmount: amount("127.00"), Category: "Transportation", Merchant: "MTA",
		Location: newYork, Type: recurringType, PaymentMethod: creditCard,
	},
	KindUber: {
		Direction: Debit, Category: "Transportation", Merchant: "Uber",
		Location: newYork, Type: "Debit", PaymentMethod: debitCard,
	},
	KindAmazon: {
		Direction: Debit, Category: "Shopping", Merchant: "Amazon.com",
		Location: online, Type: "Debit", PaymentMethod: creditCard,
	},
}

// Lookup returns the template for kind
func Lookup(kind Kind) (Template, bool) {
	t, ok := templates[kind]
	if ok && t.Status == "" {
		t.Status = transaction.StatusCompleted
	}
	return t, ok
}

// ParseKind validates a variant name
func ParseKind(name string) (Kind, error) {
	kind := Kind(name)
	if _, ok := templates[kind]; !ok {
		return "", ErrUnknownVariant{Kind: name}
	}
	return kind, nil
}

// Kinds lists every variant in name order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
