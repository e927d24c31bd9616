package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledger-synth/internal/api_gateway/handler"
	"github.com/ledger-synth/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	generationHandler *handler.GenerationHandler,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		v1.POST("/generations", generationHandler.Create)
		v1.GET("/profiles", generationHandler.ListProfiles)

		// Account reads
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/snapshot", accountHandler.GetSnapshot)
			accounts.GET("/:id/transactions", transactionHandler.GetByAccountID)
		}

		v1.GET("/transactions/:id", transactionHandler.GetByID)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
