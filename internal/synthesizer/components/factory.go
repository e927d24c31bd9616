package components

import (
	"log/slog"

	"github.com/ledger-synth/internal/config"
	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
	"github.com/ledger-synth/internal/domain/outbox"
	"github.com/ledger-synth/internal/domain/transaction"
	"github.com/ledger-synth/internal/generator"
	"github.com/ledger-synth/internal/platform/messaging/producers"
	"github.com/ledger-synth/internal/platform/persistence"
	"github.com/ledger-synth/internal/synthesizer/service"
)

// Repositories groups the stores a generation service writes to
type Repositories struct {
	Accounts     account.Repository
	Transactions transaction.Repository
	Outbox       outbox.Repository
	Snapshots    ledger.SnapshotRepository
}

// Services is what the synthesizer process runs
type Services struct {
	// Generation is worker-pool backed unless the pool could not be created
	Generation service.GenerationService
	// Runs owns the failed batches and their retry loop
	Runs     *service.GenerationServiceImpl
	Failures service.FailureRecorder
}

// CreateGenerationService creates a GenerationService with all its dependencies,
// along with the failure recorder the consumer parks bad requests with.
func CreateGenerationService(
	db persistence.TxBeginner,
	repos Repositories,
	profiles service.ProfileSource,
	seq *generator.Sequence,
	dlq producers.DeadLetterPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) Services {
	accountManager := NewAccountManager(repos.Accounts, logger)
	outboxManager := NewOutboxManager(repos.Outbox, logger)
	flusher := NewBatchFlusher(db, repos.Transactions, outboxManager, logger)
	failureRecorder := NewFailureRecorder(dlq, logger)

	baseService := service.NewGenerationService(
		profiles,
		accountManager,
		flusher,
		repos.Transactions,
		repos.Snapshots,
		failureRecorder,
		seq,
		cfg.Generator,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolGenerationService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return Services{Generation: baseService, Runs: baseService, Failures: failureRecorder}
	}

	logger.Info("Created worker pool generation service", "pool_size", cfg.WorkerPool.Size)
	return Services{Generation: workerPoolService, Runs: baseService, Failures: failureRecorder}
}
