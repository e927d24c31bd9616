package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/ledger-synth/internal/domain/shared"
)

// WorkerPoolGenerationService runs independent accounts in parallel on an ants
// pool. Runs of the same account must not overlap; the consumer guarantees this
// by keying requests on the account id.
type WorkerPoolGenerationService struct {
	baseService GenerationService
	pool        *ants.Pool
	logger      *slog.Logger
}

// ErrRunPanicked is returned for a run that panicked inside the pool
var ErrRunPanicked = errors.New("generation run panicked")

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolGenerationService(
	baseService GenerationService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolGenerationService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolGenerationService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Generate submits one run to the pool and waits for its result.
func (s *WorkerPoolGenerationService) Generate(ctx context.Context, request *shared.GenerationRequest) (*RunResult, error) {
	type outcome struct {
		result *RunResult
		err    error
	}
	done := make(chan outcome, 1)

	requestCopy := *request
	err := s.pool.Submit(func() {
		// ants swallows panics; without this the caller would wait forever
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Generation run panicked",
					"run_id", requestCopy.RunID.String(),
					"account_id", requestCopy.AccountID,
					"panic", fmt.Sprint(r),
				)
				done <- outcome{err: fmt.Errorf("%w: %v", ErrRunPanicked, r)}
			}
		}()
		result, err := s.baseService.Generate(ctx, &requestCopy)
		done <- outcome{result: result, err: err}
	})
	if err != nil {
		s.logger.Error("Failed to submit generation run to worker pool",
			"run_id", request.RunID.String(),
			"account_id", request.AccountID,
			"error", err,
		)
		return nil, err
	}

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GenerateAll runs every request concurrently and returns results in request
// order. errs[i] is the error of requests[i].
func (s *WorkerPoolGenerationService) GenerateAll(ctx context.Context, requests []*shared.GenerationRequest) ([]*RunResult, []error) {
	results := make([]*RunResult, len(requests))
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i, request := range requests {
		wg.Add(1)
		go func(i int, request *shared.GenerationRequest) {
			defer wg.Done()
			results[i], errs[i] = s.Generate(ctx, request)
		}(i, request)
	}
	wg.Wait()
	return results, errs
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolGenerationService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolGenerationService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolGenerationService) Capacity() int {
	return s.pool.Cap()
}
