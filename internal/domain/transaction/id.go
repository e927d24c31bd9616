package transaction

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	idPrefix = "TXN"
	idWidth  = 5
)

// ID is a system-wide transaction key: "TXN" followed by a zero-padded
// sequence number. Ordering by sequence matches generation order.
type ID string

// FormatID renders the ID for sequence number seq.
func FormatID(seq int64) ID {
	return ID(fmt.Sprintf("%s%0*d", idPrefix, idWidth, seq))
}

// ParseID validates s and returns it as an ID.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if _, err := id.Sequence(); err != nil {
		return "", err
	}
	return id, nil
}

// Sequence extracts the numeric part of the ID.
func (id ID) Sequence() (int64, error) {
	s := string(id)
	if !strings.HasPrefix(s, idPrefix) {
		return 0, ErrMalformedID{Value: s}
	}
	digits := s[len(idPrefix):]
	if len(digits) < idWidth || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, ErrMalformedID{Value: s}
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq < 1 {
		return 0, ErrMalformedID{Value: s}
	}
	return seq, nil
}

// Valid reports whether the ID is well formed.
func (id ID) Valid() bool {
	_, err := id.Sequence()
	return err == nil
}

func (id ID) String() string {
	return string(id)
}

// ErrMalformedID indicates a string that is not a transaction ID
type ErrMalformedID struct {
	Value string
}

func (e ErrMalformedID) Error() string {
	return "malformed transaction id: " + strconv.Quote(e.Value)
}

// Is implements the errors.Is interface for ErrMalformedID
func (e ErrMalformedID) Is(target error) bool {
	t, ok := target.(ErrMalformedID)
	if !ok {
		return false
	}
	return t.Value == "" || t.Value == e.Value
}
