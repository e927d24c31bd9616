package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/domain/transaction"
)

// Override field names accepted by Overrides.Set
const (
	FieldCategory      = "category"
	FieldMerchant      = "merchant"
	FieldLocation      = "location"
	FieldType          = "type"
	FieldPaymentMethod = "payment_method"
	FieldStatus        = "status"
	FieldService       = "service"
)

// Overrides replaces template defaults. Empty fields keep the default.
// Service selects the Uber service type before the other overrides apply.
type Overrides struct {
	Category      string
	Merchant      string
	Location      string
	Type          string
	PaymentMethod string
	Status        transaction.Status
	Service       string
}

// Set assigns one override by field name
func (o *Overrides) Set(field, value string) error {
	switch field {
	case FieldCategory:
		o.Category = value
	case FieldMerchant:
		o.Merchant = value
	case FieldLocation:
		o.Location = value
	case FieldType:
		o.Type = value
	case FieldPaymentMethod:
		o.PaymentMethod = value
	case FieldStatus:
		o.Status = transaction.Status(value)
	case FieldService:
		o.Service = value
	default:
		return fmt.Errorf("unknown override field %q", field)
	}
	return nil
}

// Params is the caller input to Make.
type Params struct {
	TransactionID transaction.ID
	AccountID     string
	Date          civil.Date

	// Amount is a magnitude or signed hint: decimal.Decimal, a float or
	// integer type, a numeric string or json.Number. nil selects the
	// variant's default amount.
	Amount any

	Overrides Overrides

	// Timestamp is the generation instant; zero means now.
	Timestamp time.Time
}

// Make builds the canonical record for kind. The sign of the amount is fixed
// by the variant regardless of the sign passed in. Amounts are not rounded here.
func Make(kind Kind, p Params) (transaction.Record, error) {
	tmpl, ok := Lookup(kind)
	if !ok {
		return transaction.Record{}, ErrUnknownVariant{Kind: string(kind)}
	}

	switch {
	case p.TransactionID == "":
		return transaction.Record{}, ErrMissingIdentity{Field: "transaction_id"}
	case strings.TrimSpace(p.AccountID) == "":
		return transaction.Record{}, ErrMissingIdentity{Field: "account_id"}
	case !p.Date.IsValid():
		return transaction.Record{}, ErrMissingIdentity{Field: "date"}
	}

	var magnitude decimal.Decimal
	if p.Amount == nil {
		if !tmpl.HasDefaultAmount() {
			return transaction.Record{}, ErrInvalidAmount{Kind: kind}
		}
		magnitude = tmpl.DefaultAmount.Decimal
	} else {
		d, err := toDecimal(p.Amount)
		if err != nil {
			return transaction.Record{}, ErrInvalidAmount{Kind: kind, Value: fmt.Sprint(p.Amount)}
		}
		magnitude = d
	}

	amt := magnitude.Abs()
	if tmpl.Direction == Debit {
		amt = amt.Neg()
	}

	if kind == KindUber {
		applyUberService(&tmpl, p.Overrides.Service)
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	o := p.Overrides
	return transaction.Record{
		TransactionID: p.TransactionID,
		AccountID:     p.AccountID,
		Date:          p.Date,
		Amount:        amt,
		Category:      pick(o.Category, tmpl.Category),
		Merchant:      pick(o.Merchant, tmpl.Merchant),
		Location:      pick(o.Location, tmpl.Location),
		Type:          pick(o.Type, tmpl.Type),
		Status:        transaction.Status(pick(string(o.Status), string(tmpl.Status))),
		Timestamp:     ts.Truncate(time.Second),
		PaymentMethod: pick(o.PaymentMethod, tmpl.PaymentMethod),
	}, nil
}

// applyUberService switches category and merchant between rides and food delivery.
func applyUberService(tmpl *Template, service string) {
	if service == "" || service == ServiceRide {
		return
	}
	tmpl.Category = "Food Delivery"
	if service == ServiceFood {
		tmpl.Merchant = "Uber Eats"
	}
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case decimal.Decimal:
		return a, nil
	case *decimal.Decimal:
		if a == nil {
			return decimal.Decimal{}, fmt.Errorf("nil decimal")
		}
		return *a, nil
	case float64:
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return decimal.Decimal{}, fmt.Errorf("not finite: %v", a)
		}
		return decimal.NewFromFloat(a), nil
	case float32:
		if math.IsNaN(float64(a)) || math.IsInf(float64(a), 0) {
			return decimal.Decimal{}, fmt.Errorf("not finite: %v", a)
		}
		return decimal.NewFromFloat32(a), nil
	case int:
		return decimal.NewFromInt(int64(a)), nil
	case int32:
		return decimal.NewFromInt32(a), nil
	case int64:
		return decimal.NewFromInt(a), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(a))
	case json.Number:
		return decimal.NewFromString(a.String())
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported amount type %T", v)
	}
}
