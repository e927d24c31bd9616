package service

import (
	"context"
	"log/slog"

	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/generator"
	"github.com/ledger-synth/internal/platform/messaging/producers"
)

// GenerationServiceImpl implements the GenerationService interface
type GenerationServiceImpl struct {
	profiles *generator.Registry
	producer producers.RequestPublisher
	logger   *slog.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(logger *slog.Logger, profiles *generator.Registry, producer producers.RequestPublisher) GenerationService {
	return &GenerationServiceImpl{
		profiles: profiles,
		producer: producer,
		logger:   logger,
	}
}

// SubmitGeneration rejects requests the synthesizer would park, then publishes.
func (s *GenerationServiceImpl) SubmitGeneration(ctx context.Context, request *shared.GenerationRequest) error {
	if err := request.Validate(); err != nil {
		return err
	}
	if _, err := s.profiles.Get(request.Profile); err != nil {
		return err
	}

	if err := s.producer.PublishRequest(ctx, request); err != nil {
		s.logger.Error("Failed to publish generation request",
			"run_id", request.RunID.String(),
			"account_id", request.AccountID,
			"error", err,
		)
		return err
	}

	s.logger.Info("Generation request published",
		"run_id", request.RunID.String(),
		"account_id", request.AccountID,
		"profile", request.Profile,
	)
	return nil
}

func (s *GenerationServiceImpl) ListProfiles() []*generator.Profile {
	return s.profiles.Profiles()
}
