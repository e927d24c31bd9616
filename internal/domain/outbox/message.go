package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
)

// Message records a committed batch so the poller can project it into the
// document read model. It is written in the same database transaction as the
// batch rows.
type Message struct {
	ID            int64               `json:"id"`
	RunID         uuid.UUID           `json:"run_id"`
	AccountID     string              `json:"account_id"`
	BatchKey      string              `json:"batch_key"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// BatchPayload is the body of a batch message
type BatchPayload struct {
	RunID        uuid.UUID           `json:"run_id"`
	AccountID    string              `json:"account_id"`
	Currency     string              `json:"currency"`
	Week         transaction.WeekKey `json:"week"`
	FirstID      transaction.ID      `json:"first_id"`
	LastID       transaction.ID      `json:"last_id"`
	Transactions []transaction.View  `json:"transactions"`
}

func NewBatchMessage(runID uuid.UUID, batch transaction.Batch) (*Message, error) {
	first, last := batch.IDRange()
	payload, err := json.Marshal(BatchPayload{
		RunID:        runID,
		AccountID:    batch.AccountID,
		Currency:     batch.Currency,
		Week:         batch.Week,
		FirstID:      first,
		LastID:       last,
		Transactions: transaction.Views(batch.Records),
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		RunID:     runID,
		AccountID: batch.AccountID,
		BatchKey:  batch.Week.String(),
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Batch decodes the payload
func (m *Message) Batch() (*BatchPayload, error) {
	var payload BatchPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
