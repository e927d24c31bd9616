package ledger

import (
	"strings"

	"github.com/ledger-synth/internal/domain/transaction"
)

// ErrSchema indicates a record with a missing required field or a non-numeric amount
type ErrSchema struct {
	TransactionID transaction.ID
	Field         string
	Reason        string
}

func (e ErrSchema) Error() string {
	var b strings.Builder
	b.WriteString("schema violation")
	if e.TransactionID != "" {
		b.WriteString(" in transaction ")
		b.WriteString(e.TransactionID.String())
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(" ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is implements the errors.Is interface for ErrSchema.
// A target without a field matches any schema error.
func (e ErrSchema) Is(target error) bool {
	t, ok := target.(ErrSchema)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}
