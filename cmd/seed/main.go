// Command seed queues generation runs for the demo accounts, or with -local
// generates them in-process on the synthesizer's worker pool.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledger-synth/internal/config"
	"github.com/ledger-synth/internal/data/mongo"
	"github.com/ledger-synth/internal/data/postgres"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/generator"
	"github.com/ledger-synth/internal/logger"
	"github.com/ledger-synth/internal/platform/messaging/producers"
	"github.com/ledger-synth/internal/platform/persistence"
	"github.com/ledger-synth/internal/synthesizer/components"
	"github.com/ledger-synth/internal/synthesizer/outbox_poller"
	"github.com/ledger-synth/internal/synthesizer/service"
)

type demoAccount struct {
	AccountID      string
	OwnerName      string
	Profile        string
	InitialBalance string
}

var demoAccounts = []demoAccount{
	{AccountID: "1234567890", OwnerName: "John Doe", Profile: "regular", InitialBalance: "2000"},
	{AccountID: "1234567894", OwnerName: "Bob Doe", Profile: "poor-spending", InitialBalance: "10000"},
	{AccountID: "1234567895", OwnerName: "Becky Doe", Profile: "high-payment", InitialBalance: "15000"},
	{AccountID: "1234567900", OwnerName: "Abdul Mohammed", Profile: "student", InitialBalance: "500"},
}

// demoRequests builds one request per demo account; a non-zero seed makes the
// histories reproducible.
func demoRequests(now time.Time, correlationID string, seed int64) []*shared.GenerationRequest {
	requests := make([]*shared.GenerationRequest, 0, len(demoAccounts))
	for i, acc := range demoAccounts {
		req := &shared.GenerationRequest{
			RunID:          uuid.New(),
			AccountID:      acc.AccountID,
			OwnerName:      acc.OwnerName,
			Profile:        acc.Profile,
			InitialBalance: decimal.RequireFromString(acc.InitialBalance),
			CorrelationID:  correlationID,
			RequestedAt:    now,
		}
		if seed != 0 {
			s := seed + int64(i)
			req.Seed = &s
		}
		requests = append(requests, req)
	}
	return requests
}

func main() {
	configName := flag.String("config", "", "config name under configs/ (without .env); defaults to api_gateway, or synthesizer with -local")
	seed := flag.Int64("seed", 0, "base seed for reproducible histories, 0 for random")
	dryRun := flag.Bool("dry-run", false, "print the requests instead of publishing them")
	local := flag.Bool("local", false, "generate in this process instead of queueing on Kafka")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline")
	flag.Parse()

	requests := demoRequests(time.Now().UTC(), "seed-"+uuid.NewString(), *seed)

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(requests); err != nil {
			fmt.Printf("Failed to encode requests: %v\n", err)
			os.Exit(1)
		}
		return
	}

	name := *configName
	if name == "" {
		name = "api_gateway"
		if *local {
			name = "synthesizer"
		}
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var failed int
	if *local {
		failed, err = generateLocally(ctx, cfg, log, requests)
	} else {
		failed, err = publish(ctx, cfg, log, requests)
	}
	if err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	if failed > 0 {
		log.Error("Seeding finished with failures", "failed", failed, "total", len(requests))
		os.Exit(1)
	}
	log.Info("Seeding finished", "total", len(requests))
}

// publish queues every request for the synthesizer and returns how many could not be queued.
func publish(ctx context.Context, cfg *config.Config, log *slog.Logger, requests []*shared.GenerationRequest) (int, error) {
	producer, err := producers.NewGenerationRequestProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize Kafka producer: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
		}
	}()

	failed := 0
	for _, req := range requests {
		if err := req.Validate(); err != nil {
			log.Error("Demo request is invalid", "account_id", req.AccountID, "error", err)
			failed++
			continue
		}
		if err := producer.PublishRequest(ctx, req); err != nil {
			log.Error("Failed to queue demo account", "account_id", req.AccountID, "error", err)
			failed++
			continue
		}
		log.Info("Demo account queued",
			"account_id", req.AccountID,
			"owner_name", req.OwnerName,
			"profile", req.Profile,
			"run_id", req.RunID.String(),
		)
	}
	return failed, nil
}

// generateLocally runs all requests concurrently on the worker pool, then
// projects the committed batches into the read model before returning.
func generateLocally(ctx context.Context, cfg *config.Config, log *slog.Logger, requests []*shared.GenerationRequest) (int, error) {
	profiles, err := generator.Load(cfg.Generator.ProfilesPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load spending profiles: %w", err)
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer postgresDB.Close()

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	defer func() {
		if err := mongoDB.Close(context.Background()); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}()
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return 0, fmt.Errorf("failed to create MongoDB indexes: %w", err)
	}

	repos := components.Repositories{
		Accounts:     postgres.NewAccountRepository(log, postgresDB),
		Transactions: postgres.NewTransactionRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
		Snapshots:    mongo.NewSnapshotRepository(log, mongoDB.Database()),
	}
	lastID, _, err := repos.Transactions.LastTransactionID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last transaction id: %w", err)
	}
	seq, err := generator.SequenceFrom(lastID)
	if err != nil {
		return 0, err
	}

	// No dead-letter topic here: failures are reported on the command line
	services := components.CreateGenerationService(postgresDB.Pool(), repos, profiles, seq, nil, log, cfg)
	pool, ok := services.Generation.(*service.WorkerPoolGenerationService)
	if !ok {
		return 0, errors.New("worker pool is unavailable")
	}
	defer pool.Shutdown()

	log.Info("Generating demo accounts", "accounts", len(requests), "pool_size", pool.Capacity())
	results, errs := pool.GenerateAll(ctx, requests)
	failed := reportResults(log, requests, results, errs)

	pollerCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	projector := outbox_poller.NewReadModelProjector(repos.Outbox, mongo.NewTransactionViewRepository(log, mongoDB.Database()), log)
	go outbox_poller.NewPoller(&cfg.Outbox, repos.Outbox, projector, log).Start(pollerCtx)

	if err := waitForProjection(ctx, repos.Outbox.CountPending, requests, cfg.Outbox.PollingInterval); err != nil {
		return failed, err
	}
	return failed, nil
}

// reportResults logs one line per run and returns how many did not complete.
func reportResults(log *slog.Logger, requests []*shared.GenerationRequest, results []*service.RunResult, errs []error) int {
	failed := 0
	for i, req := range requests {
		if errs[i] != nil {
			log.Error("Demo account failed", "account_id", req.AccountID, "error", errs[i])
			failed++
			continue
		}
		result := results[i]
		log.Info("Demo account generated",
			"account_id", result.AccountID,
			"profile", result.Profile,
			"status", string(result.Status),
			"generated", result.Generated,
			"persisted", result.Persisted,
			"balance", result.Balance.Current.StringFixed(2),
		)
		if result.Status == shared.RunStatusPartial || result.Status == shared.RunStatusAborted {
			failed++
		}
	}
	return failed
}

// waitForProjection polls until no seeded account has pending outbox batches.
func waitForProjection(ctx context.Context, countPending func(context.Context, string) (int, error), requests []*shared.GenerationRequest, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pending := 0
		for _, req := range requests {
			n, err := countPending(ctx, req.AccountID)
			if err != nil {
				return fmt.Errorf("failed to count pending batches of %s: %w", req.AccountID, err)
			}
			pending += n
		}
		if pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("read model projection incomplete, %d batches pending: %w", pending, ctx.Err())
		case <-ticker.C:
		}
	}
}
