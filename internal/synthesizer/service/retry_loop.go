package service

import (
	"context"
	"time"
)

// StartRetryLoop re-flushes rolled-back batches every RetryInterval until ctx
// is canceled. Nothing runs when the interval is not positive.
func (s *GenerationServiceImpl) StartRetryLoop(ctx context.Context) {
	if s.cfg.RetryInterval <= 0 {
		s.logger.Warn("Failed batch retries disabled", "retry_interval", s.cfg.RetryInterval.String())
		return
	}
	s.logger.Info("Starting failed batch retry loop",
		"retry_interval", s.cfg.RetryInterval.String(),
		"max_attempts", s.cfg.RetryMaxAttempts,
	)
	ticker := time.NewTicker(s.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Failed batch retry loop stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.retryPending(ctx)
		}
	}
}

func (s *GenerationServiceImpl) retryPending(ctx context.Context) {
	for _, runID := range s.PendingRuns() {
		if ctx.Err() != nil {
			return
		}
		logger := s.logger.With("run_id", runID.String())
		persisted, err := s.RetryFailed(ctx, runID)
		if err != nil {
			logger.Warn("Batch retry failed", "persisted", persisted, "error", err)
			continue
		}
		logger.Info("Failed batches persisted on retry", "persisted", persisted)
	}
}
