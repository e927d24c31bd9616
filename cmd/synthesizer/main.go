package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ledger-synth/internal/config"
	"github.com/ledger-synth/internal/data/mongo"
	"github.com/ledger-synth/internal/data/postgres"
	"github.com/ledger-synth/internal/generator"
	"github.com/ledger-synth/internal/logger"
	"github.com/ledger-synth/internal/platform/messaging/consumers"
	"github.com/ledger-synth/internal/platform/messaging/producers"
	"github.com/ledger-synth/internal/platform/persistence"
	"github.com/ledger-synth/internal/synthesizer/components"
	"github.com/ledger-synth/internal/synthesizer/consumer"
	"github.com/ledger-synth/internal/synthesizer/outbox_poller"
	"github.com/ledger-synth/internal/synthesizer/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("synthesizer")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Synthesizer",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Profiles are validated before anything touches a database
	profiles, err := generator.Load(cfg.Generator.ProfilesPath)
	if err != nil {
		log.Error("Failed to load spending profiles", "path", cfg.Generator.ProfilesPath, "error", err)
		os.Exit(1)
	}
	log.Info("Spending profiles loaded", "profiles", profiles.Names())

	// Initialize databases with app context; migrations run before the pool opens
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}
	if err := mongoDB.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create MongoDB indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := components.Repositories{
		Accounts:     postgres.NewAccountRepository(log, postgresDB),
		Transactions: postgres.NewTransactionRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
		Snapshots:    mongo.NewSnapshotRepository(log, mongoDB.Database()),
	}
	viewRepo := mongo.NewTransactionViewRepository(log, mongoDB.Database())

	// Transaction IDs continue from the highest persisted one
	lastID, _, err := repos.Transactions.LastTransactionID(appCtx)
	if err != nil {
		log.Error("Failed to read last transaction id", "error", err)
		os.Exit(1)
	}
	seq, err := generator.SequenceFrom(lastID)
	if err != nil {
		log.Error("Persisted transaction id is malformed", "last_id", lastID.String(), "error", err)
		os.Exit(1)
	}
	log.Info("Transaction id sequence seeded", "next_id", seq.Peek().String())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil when DLQTopic is not configured; the failure recorder then only logs
	var dlq producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlq = dlqProducer
	}

	services := components.CreateGenerationService(
		postgresDB.Pool(),
		repos,
		profiles,
		seq,
		dlq,
		log,
		cfg,
	)

	requestHandler := consumer.NewGenerationRequestHandler(
		log,
		services.Generation,
		services.Failures,
	)

	// Initialize outbox poller
	projector := outbox_poller.NewReadModelProjector(
		repos.Outbox,
		viewRepo,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		repos.Outbox,
		projector,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.GenerationTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, requestHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to generation topic", "error", err)
		os.Exit(1)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-kafkaConsumer.Done()
		if appCtx.Err() == nil {
			errChan <- fmt.Errorf("kafka consumer stopped unexpectedly")
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Rolled-back batches are flushed again until they run out of attempts
	wg.Add(1)
	go func() {
		defer wg.Done()
		services.Runs.StartRetryLoop(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// In-flight runs have seen the cancelled context by now
	if wpService, ok := services.Generation.(*service.WorkerPoolGenerationService); ok {
		wpService.Shutdown()
	}

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Synthesizer shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Synthesizer shutdown completed successfully")
}
