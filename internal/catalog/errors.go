package catalog

import "fmt"

// ErrUnknownVariant indicates a kind outside the catalog
type ErrUnknownVariant struct {
	Kind string
}

func (e ErrUnknownVariant) Error() string {
	return fmt.Sprintf("unknown transaction variant %q", e.Kind)
}

// Is implements the errors.Is interface for ErrUnknownVariant
func (e ErrUnknownVariant) Is(target error) bool {
	t, ok := target.(ErrUnknownVariant)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// ErrMissingIdentity indicates an absent transaction id, account id or date
type ErrMissingIdentity struct {
	Field string
}

func (e ErrMissingIdentity) Error() string {
	return "missing " + e.Field
}

// Is implements the errors.Is interface for ErrMissingIdentity
func (e ErrMissingIdentity) Is(target error) bool {
	t, ok := target.(ErrMissingIdentity)
	if !ok {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// ErrInvalidAmount indicates a non-numeric amount
type ErrInvalidAmount struct {
	Kind  Kind
	Value string // empty when no amount was given
}

func (e ErrInvalidAmount) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: amount is required", e.Kind)
	}
	return fmt.Sprintf("%s: invalid amount %q", e.Kind, e.Value)
}

// Is implements the errors.Is interface for ErrInvalidAmount.
// Any ErrInvalidAmount target matches.
func (e ErrInvalidAmount) Is(target error) bool {
	_, ok := target.(ErrInvalidAmount)
	return ok
}
