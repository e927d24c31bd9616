// Package generator walks a calendar range and turns a spending profile into
// a chronological stream of transaction records.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"cloud.google.com/go/civil"

	"github.com/ledger-synth/internal/catalog"
	"github.com/ledger-synth/internal/domain/transaction"
)

// Range is a half-open calendar range [Start, End).
type Range struct {
	Start civil.Date
	End   civil.Date
}

// Validate checks both bounds are real dates
func (r Range) Validate() error {
	if !r.Start.IsValid() {
		return fmt.Errorf("%w: start %s", ErrInvalidRange, r.Start)
	}
	if !r.End.IsValid() {
		return fmt.Errorf("%w: end %s", ErrInvalidRange, r.End)
	}
	return nil
}

// Days is the number of days the range covers; zero when Start >= End.
func (r Range) Days() int {
	if !r.Start.Before(r.End) {
		return 0
	}
	return r.End.DaysSince(r.Start)
}

// Sink receives the stream. BeginDay is called once per day before any of
// that day's records.
type Sink interface {
	BeginDay(ctx context.Context, day civil.Date) error
	Accept(ctx context.Context, record transaction.Record) error
}

// Stats summarises a run
type Stats struct {
	Days      int
	Generated int
	ByKind    map[catalog.Kind]int
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock sets the source of record timestamps
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithEngineLogger sets the engine logger
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// Engine is not safe for concurrent use; create one per account run.
type Engine struct {
	profile *Profile
	seq     *Sequence
	rng     *rand.Rand
	clock   func() time.Time
	logger  *slog.Logger
}

func NewEngine(profile *Profile, seq *Sequence, rng *rand.Rand, opts ...EngineOption) *Engine {
	e := &Engine{
		profile: profile,
		seq:     seq,
		rng:     rng,
		clock:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run visits every day of r in order and emits each firing rule's record to
// the sink. It stops at the first sink error or when ctx is done.
func (e *Engine) Run(ctx context.Context, accountID string, r Range, sink Sink) (Stats, error) {
	stats := Stats{ByKind: make(map[catalog.Kind]int)}
	if err := r.Validate(); err != nil {
		return stats, err
	}
	if accountID == "" {
		return stats, catalog.ErrMissingIdentity{Field: "account_id"}
	}

	e.logger.Debug("Generation started",
		"profile", e.profile.Name,
		"account_id", accountID,
		"start", r.Start.String(),
		"end", r.End.String(),
		"next_id", e.seq.Peek().String(),
	)

	for day := r.Start; day.Before(r.End); day = day.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := sink.BeginDay(ctx, day); err != nil {
			return stats, err
		}

		for _, rule := range e.profile.Rules {
			fires := rule.Trigger.Fires(day, e.rng)
			for i := 0; i < fires; i++ {
				overrides, amount := rule.params(e.rng)
				record, err := catalog.Make(rule.Kind, catalog.Params{
					TransactionID: e.seq.Next(),
					AccountID:     accountID,
					Date:          day,
					Amount:        amount,
					Overrides:     overrides,
					Timestamp:     e.clock(),
				})
				if err != nil {
					return stats, fmt.Errorf("failed to build %s on %s: %w", rule.Kind, day, err)
				}
				if err := sink.Accept(ctx, record); err != nil {
					return stats, err
				}
				stats.Generated++
				stats.ByKind[rule.Kind]++
			}
		}
		stats.Days++
	}

	e.logger.Debug("Generation finished",
		"profile", e.profile.Name,
		"account_id", accountID,
		"days", stats.Days,
		"generated", stats.Generated,
	)
	return stats, nil
}
