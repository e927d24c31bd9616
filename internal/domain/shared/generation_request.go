package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest = errors.New("invalid generation request")
	ErrInvalidRange   = errors.New("start_date must be before end_date")
)

var validate = validator.New()

// GenerationRequest defines a Kafka message asking for one account's history.
// Optional fields left empty fall back to the synthesizer's configuration.
type GenerationRequest struct {
	RunID          uuid.UUID       `json:"run_id" validate:"required"`
	AccountID      string          `json:"account_id" validate:"required,number,min=4,max=32"`
	OwnerName      string          `json:"owner_name" validate:"required,max=120"`
	Profile        string          `json:"profile" validate:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance" validate:"-"`
	Currency       string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	StartDate      *civil.Date     `json:"start_date,omitempty" validate:"-"`
	EndDate        *civil.Date     `json:"end_date,omitempty" validate:"-"`
	Seed           *int64          `json:"seed,omitempty"`
	FailurePolicy  FailurePolicy   `json:"failure_policy,omitempty" validate:"omitempty,oneof=continue abort"`
	CorrelationID  string          `json:"correlation_id"`
	RequestedAt    time.Time       `json:"requested_at"`
}

// Validate checks field formats and that an explicit range is not empty.
func (r *GenerationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.StartDate != nil && !r.StartDate.IsValid() {
		return fmt.Errorf("%w: start_date is not a valid date", ErrInvalidRequest)
	}
	if r.EndDate != nil && !r.EndDate.IsValid() {
		return fmt.Errorf("%w: end_date is not a valid date", ErrInvalidRequest)
	}
	if r.StartDate != nil && r.EndDate != nil && !r.StartDate.Before(*r.EndDate) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrInvalidRange)
	}
	return nil
}
