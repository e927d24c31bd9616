package generator

import (
	"sync"

	"github.com/ledger-synth/internal/domain/transaction"
)

// Sequence allocates transaction IDs. It is shared by every engine of a
// process so IDs stay unique across concurrently generated accounts.
type Sequence struct {
	mu   sync.Mutex
	next int64
}

// NewSequence starts allocating at highWater+1.
func NewSequence(highWater int64) *Sequence {
	if highWater < 0 {
		highWater = 0
	}
	return &Sequence{next: highWater + 1}
}

// SequenceFrom seeds the sequence from the last persisted ID; an empty ID
// starts at TXN00001.
func SequenceFrom(last transaction.ID) (*Sequence, error) {
	if last == "" {
		return NewSequence(0), nil
	}
	seq, err := last.Sequence()
	if err != nil {
		return nil, err
	}
	return NewSequence(seq), nil
}

// Next returns the next ID and advances the sequence
func (s *Sequence) Next() transaction.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := transaction.FormatID(s.next)
	s.next++
	return id
}

// Peek returns the ID Next would return
func (s *Sequence) Peek() transaction.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return transaction.FormatID(s.next)
}

// AdvanceTo moves the sequence past highWater. It never moves backwards.
func (s *Sequence) AdvanceTo(highWater int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if highWater+1 > s.next {
		s.next = highWater + 1
	}
}
