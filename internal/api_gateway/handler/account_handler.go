package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ledger-synth/internal/api_gateway/service"
	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/domain/ledger"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	summary, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(summary))
}

// GetSnapshot returns the ledger snapshot of the account's last completed run
func (h *AccountHandler) GetSnapshot(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.accountService.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrSnapshotNotFound{}) {
			RespondNotFound(c, "Snapshot not found")
			return
		}
		h.logger.Error("Failed to get snapshot", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, snapshot)
}

// accountIDParam reads :id and answers 400 when it is not an account number
func accountIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if len(id) < 4 || len(id) > 32 {
		RespondBadRequest(c, "Invalid account ID")
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			RespondBadRequest(c, "Invalid account ID")
			return "", false
		}
	}
	return id, true
}

// mapAccountToResponse maps an account summary to an account response DTO
func mapAccountToResponse(summary *service.AccountSummary) AccountResponse {
	acc := summary.Account
	return AccountResponse{
		AccountID:      acc.Identity.AccountID,
		AccountName:    acc.Identity.AccountName,
		AccountType:    acc.Identity.AccountType,
		AccountNumber:  acc.Identity.AccountNumber,
		OwnerName:      acc.Identity.OwnerName,
		OpeningBalance: acc.Balance.Current.StringFixed(2),
		Currency:       acc.Balance.Currency,
		BankName:       acc.Identity.Bank.BankName,
		RoutingNumber:  acc.Identity.Bank.RoutingNumber,
		Branch:         acc.Identity.Bank.Branch,
		PendingBatches: summary.PendingBatches,
	}
}
