// Package service orchestrates generation runs: one account per run, one ISO
// week per persisted batch.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/ledger-synth/internal/config"
	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/generator"
)

// RunResult summarises a finished run
type RunResult struct {
	RunID         uuid.UUID        `json:"run_id"`
	AccountID     string           `json:"account_id"`
	Profile       string           `json:"profile"`
	Status        shared.RunStatus `json:"status"`
	Days          int              `json:"days"`
	Generated     int              `json:"generated"`
	Persisted     int              `json:"persisted"`
	Batches       int              `json:"batches"`
	FailedBatches int              `json:"failed_batches"`
	Overdrafts    int              `json:"overdrafts"`
	Balance       account.Balance  `json:"-"`
}

// GenerationServiceImpl implements GenerationService
type GenerationServiceImpl struct {
	profiles    ProfileSource
	provisioner AccountProvisioner
	flusher     BatchFlusher
	history     TransactionHistory
	snapshots   ledger.SnapshotRepository
	failures    FailureRecorder
	seq         *generator.Sequence
	cfg         config.GeneratorConfig
	clock       func() time.Time
	logger      *slog.Logger

	mu     sync.Mutex
	failed map[uuid.UUID][]pendingBatch
}

// pendingBatch is a rolled-back batch waiting for a retry flush
type pendingBatch struct {
	batch    transaction.Batch
	attempts int
}

func NewGenerationService(
	profiles ProfileSource,
	provisioner AccountProvisioner,
	flusher BatchFlusher,
	history TransactionHistory,
	snapshots ledger.SnapshotRepository,
	failures FailureRecorder,
	seq *generator.Sequence,
	cfg config.GeneratorConfig,
	logger *slog.Logger,
) *GenerationServiceImpl {
	return &GenerationServiceImpl{
		profiles:    profiles,
		provisioner: provisioner,
		flusher:     flusher,
		history:     history,
		snapshots:   snapshots,
		failures:    failures,
		seq:         seq,
		cfg:         cfg,
		clock:       time.Now,
		logger:      logger,
		failed:      make(map[uuid.UUID][]pendingBatch),
	}
}

// run is the mutable state of one Generate call
type run struct {
	id       uuid.UUID
	policy   shared.FailurePolicy
	ledger   *ledger.Ledger
	batcher  *transaction.WeekBatcher
	result   *RunResult
	logger   *slog.Logger
	service  *GenerationServiceImpl
	abortErr error
}

// Generate provisions the account, streams the profile's records through the
// ledger, flushes one batch per ISO week and saves the final snapshot.
//
// Request errors wrap shared.ErrInvalidRequest or generator.ErrUnknownProfile
// and are not retryable. An aborted run returns its partial result together
// with the ErrBatchPersist that stopped it.
func (s *GenerationServiceImpl) Generate(ctx context.Context, request *shared.GenerationRequest) (*RunResult, error) {
	logger := s.logger.With("run_id", request.RunID.String(), "account_id", request.AccountID)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	profile, err := s.profiles.Get(request.Profile)
	if err != nil {
		logger.Error("Unknown profile", "profile", request.Profile)
		return nil, err
	}

	currency := request.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	identity, err := account.NewIdentity(request.AccountID, request.OwnerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidRequest, err)
	}
	opening, err := account.NewBalance(request.InitialBalance, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidRequest, err)
	}

	days := s.rangeFor(request)
	if err := days.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidRequest, err)
	}

	result := &RunResult{
		RunID:     request.RunID,
		AccountID: identity.AccountID,
		Profile:   profile.Name,
		Balance:   opening,
	}

	created, err := s.provisioner.Ensure(ctx, identity, opening)
	if err != nil {
		return nil, fmt.Errorf("failed to provision account %s: %w", identity.AccountID, err)
	}

	if !created && s.cfg.RerunPolicy != config.RerunPolicyAppend {
		exists, err := s.history.HasTransactions(ctx, identity.AccountID, days.Start, days.End)
		if err != nil {
			return nil, err
		}
		if exists {
			logger.Info("Account already has transactions in range, skipping run",
				"start", days.Start.String(),
				"end", days.End.String(),
			)
			result.Status = shared.RunStatusSkipped
			return result, nil
		}
	}

	if err := s.advanceSequence(ctx); err != nil {
		return nil, err
	}

	r := &run{
		id:      request.RunID,
		policy:  s.policyFor(request),
		batcher: transaction.NewWeekBatcher(identity.AccountID, opening.Currency),
		result:  result,
		logger:  logger,
		service: s,
	}
	r.ledger = ledger.New(identity, opening,
		ledger.WithLogger(logger),
		ledger.WithNegativeBalanceObserver(func(transaction.Record, account.Balance) {
			result.Overdrafts++
		}),
	)

	engine := generator.NewEngine(profile, s.seq, rand.New(rand.NewSource(s.seedFor(request))),
		generator.WithClock(s.clock),
		generator.WithEngineLogger(logger),
	)

	logger.Info("Generation run started",
		"profile", profile.Name,
		"start", days.Start.String(),
		"end", days.End.String(),
		"opening_balance", opening.Current.StringFixed(2),
		"next_id", s.seq.Peek().String(),
	)

	stats, err := engine.Run(ctx, identity.AccountID, days, r)
	result.Days = stats.Days
	result.Generated = stats.Generated
	if err != nil {
		if r.abortErr != nil {
			result.Status = shared.RunStatusAborted
			result.Balance = r.ledger.Balance()
			logger.Error("Generation run aborted", "error", err, "persisted", result.Persisted)
			return result, err
		}
		return nil, fmt.Errorf("generation run %s failed: %w", request.RunID, err)
	}

	if batch, ok := r.batcher.Drain(); ok {
		if err := r.flush(ctx, batch); err != nil {
			result.Status = shared.RunStatusAborted
			result.Balance = r.ledger.Balance()
			return result, err
		}
	}

	result.Balance = r.ledger.Balance()
	result.Status = shared.RunStatusCompleted
	if result.FailedBatches > 0 {
		result.Status = shared.RunStatusPartial
	}

	if err := s.snapshots.Save(ctx, r.ledger.Snapshot()); err != nil {
		logger.Error("Failed to save ledger snapshot", "error", err)
	}

	logger.Info("Generation run finished",
		"status", string(result.Status),
		"generated", result.Generated,
		"persisted", result.Persisted,
		"batches", result.Batches,
		"failed_batches", result.FailedBatches,
		"balance", result.Balance.Current.StringFixed(2),
	)
	return result, nil
}

// RetryFailed re-flushes the rolled-back batches of runID. A batch that fails
// again stays queued until it has failed RetryMaxAttempts retries; it is then
// dropped, its copy on the dead-letter topic being the only one left.
func (s *GenerationServiceImpl) RetryFailed(ctx context.Context, runID uuid.UUID) (int, error) {
	s.mu.Lock()
	pending := s.failed[runID]
	delete(s.failed, runID)
	s.mu.Unlock()

	var (
		persisted int
		remaining []pendingBatch
		errs      []error
	)
	for _, p := range pending {
		n, err := s.flusher.Flush(ctx, runID, p.batch)
		if err == nil {
			persisted += n
			continue
		}
		errs = append(errs, err)
		p.attempts++
		if s.cfg.RetryMaxAttempts > 0 && p.attempts >= s.cfg.RetryMaxAttempts {
			s.logger.Error("Giving up on batch after retries",
				"run_id", runID.String(),
				"account_id", p.batch.AccountID,
				"week", p.batch.Week.String(),
				"attempts", p.attempts,
				"error", err,
			)
			continue
		}
		remaining = append(remaining, p)
	}

	if len(remaining) > 0 {
		s.mu.Lock()
		s.failed[runID] = append(s.failed[runID], remaining...)
		s.mu.Unlock()
	}
	return persisted, errors.Join(errs...)
}

// FailedBatches returns the batches of runID awaiting a retry
func (s *GenerationServiceImpl) FailedBatches(runID uuid.UUID) []transaction.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := make([]transaction.Batch, 0, len(s.failed[runID]))
	for _, p := range s.failed[runID] {
		batches = append(batches, p.batch)
	}
	return batches
}

// PendingRuns lists the runs that have batches awaiting a retry
func (s *GenerationServiceImpl) PendingRuns() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := make([]uuid.UUID, 0, len(s.failed))
	for runID := range s.failed {
		runs = append(runs, runID)
	}
	return runs
}

func (s *GenerationServiceImpl) advanceSequence(ctx context.Context) error {
	last, ok, err := s.history.LastTransactionID(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	highWater, err := last.Sequence()
	if err != nil {
		return fmt.Errorf("failed to read high-water mark %q: %w", last, err)
	}
	s.seq.AdvanceTo(highWater)
	return nil
}

func (s *GenerationServiceImpl) rangeFor(request *shared.GenerationRequest) generator.Range {
	days := generator.Range{Start: s.cfg.StartDate, End: s.cfg.EndDate}
	if request.StartDate != nil {
		days.Start = *request.StartDate
	}
	if request.EndDate != nil {
		days.End = *request.EndDate
	}
	return days
}

func (s *GenerationServiceImpl) policyFor(request *shared.GenerationRequest) shared.FailurePolicy {
	if request.FailurePolicy != "" {
		return request.FailurePolicy
	}
	return shared.FailurePolicy(s.cfg.FailurePolicy)
}

// seedFor makes runs reproducible: an explicit request seed wins, a configured
// seed is mixed with the account id, zero means time based.
func (s *GenerationServiceImpl) seedFor(request *shared.GenerationRequest) int64 {
	if request.Seed != nil {
		return *request.Seed
	}
	if s.cfg.Seed == 0 {
		return s.clock().UnixNano()
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(request.AccountID))
	return s.cfg.Seed ^ int64(h.Sum64())
}

// BeginDay flushes the previous week's batch when day opens a new ISO week.
func (r *run) BeginDay(ctx context.Context, day civil.Date) error {
	if batch, ok := r.batcher.Observe(day); ok {
		return r.flush(ctx, batch)
	}
	return nil
}

// Accept applies the record to the ledger and buffers the rounded copy.
func (r *run) Accept(_ context.Context, record transaction.Record) error {
	valid, err := ledger.ValidateRecord(record)
	if err != nil {
		return err
	}
	if err := r.ledger.Append(valid); err != nil {
		return err
	}
	r.batcher.Add(valid)
	return nil
}

func (r *run) flush(ctx context.Context, batch transaction.Batch) error {
	n, err := r.service.flusher.Flush(ctx, r.id, batch)
	if err == nil {
		r.result.Persisted += n
		r.result.Batches++
		return nil
	}

	r.result.FailedBatches++
	r.logger.Error("Batch rolled back",
		"week", batch.Week.String(),
		"records", batch.Len(),
		"policy", string(r.policy),
		"error", err,
	)

	r.service.mu.Lock()
	r.service.failed[r.id] = append(r.service.failed[r.id], pendingBatch{batch: batch})
	r.service.mu.Unlock()

	if recErr := r.service.failures.RecordBatchFailure(ctx, r.id, batch, err); recErr != nil {
		r.logger.Error("Failed to record batch failure", "week", batch.Week.String(), "error", recErr)
	}

	if r.policy == shared.FailurePolicyAbort {
		r.abortErr = err
		return err
	}
	return nil
}
