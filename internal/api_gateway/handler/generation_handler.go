package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledger-synth/internal/api_gateway/middleware"
	"github.com/ledger-synth/internal/api_gateway/service"
	"github.com/ledger-synth/internal/domain/shared"
	"github.com/ledger-synth/internal/generator"
)

// GenerationHandler handles HTTP requests for generation runs
type GenerationHandler struct {
	generationService service.GenerationService
	logger            *slog.Logger
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(logger *slog.Logger, generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// Create queues a generation run and answers 202 with its run id
func (h *GenerationHandler) Create(c *gin.Context) {
	var req CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request := &shared.GenerationRequest{
		RunID:          uuid.New(),
		AccountID:      req.AccountID,
		OwnerName:      req.OwnerName,
		Profile:        req.Profile,
		InitialBalance: req.InitialBalance,
		Currency:       req.Currency,
		Seed:           req.Seed,
		FailurePolicy:  shared.FailurePolicy(req.FailurePolicy),
		CorrelationID:  middleware.GetCorrelationID(c),
	}
	var err error
	if request.StartDate, err = parseDate(req.StartDate); err != nil {
		RespondBadRequest(c, "Invalid start_date")
		return
	}
	if request.EndDate, err = parseDate(req.EndDate); err != nil {
		RespondBadRequest(c, "Invalid end_date")
		return
	}

	if err := h.generationService.SubmitGeneration(c.Request.Context(), request); err != nil {
		switch {
		case errors.Is(err, generator.ErrUnknownProfile{}):
			RespondWithError(c, http.StatusBadRequest, CodeUnknownProfile, err.Error())
		case errors.Is(err, shared.ErrInvalidRequest):
			RespondWithError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		default:
			h.logger.Error("Failed to submit generation request", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondAccepted(c, GenerationAcceptedResponse{
		RunID:     request.RunID.String(),
		AccountID: request.AccountID,
		Status:    string(shared.RunStatusQueued),
	})
}

// ListProfiles returns the available spending profiles
func (h *GenerationHandler) ListProfiles(c *gin.Context) {
	profiles := h.generationService.ListProfiles()
	response := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		response = append(response, ProfileResponse{
			Name:        p.Name,
			Description: p.Description,
			Rules:       len(p.Rules),
		})
	}
	RespondOK(c, response)
}

func parseDate(s string) (*civil.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
