package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ledger-synth/internal/api_gateway/service"
	"github.com/ledger-synth/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for transaction reads
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id := transaction.ID(c.Param("id"))
	if !id.Valid() {
		h.logger.Error("Invalid transaction ID", "id", id.String())
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	view, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	if view == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, view)
}

// GetByAccountID retrieves paginated transaction history for an account,
// optionally limited to an inclusive date range
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	accountID, ok := accountIDParam(c)
	if !ok {
		return
	}

	var query TransactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters")
		return
	}

	filter := transaction.ViewFilter{AccountID: accountID, From: query.From, To: query.To}
	views, total, err := h.transactionService.GetTransactionsByAccountID(c.Request.Context(), filter, query.Page, query.PerPage)
	if err != nil {
		h.logger.Error("Failed to get transactions", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, views, query.Page, query.PerPage, total)
}
