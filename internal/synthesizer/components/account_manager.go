package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledger-synth/internal/domain/account"
	"github.com/ledger-synth/internal/synthesizer/service"
)

type AccountManagerImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

func NewAccountManager(accountRepo account.Repository, logger *slog.Logger) service.AccountProvisioner {
	return &AccountManagerImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Ensure inserts the account row on first sight. A concurrent insert of the
// same account is reported as already existing.
func (m *AccountManagerImpl) Ensure(ctx context.Context, identity account.Identity, balance account.Balance) (bool, error) {
	logger := m.logger.With("account_id", identity.AccountID)

	exists, err := m.accountRepo.Exists(ctx, identity.AccountID)
	if err != nil {
		logger.Error("Failed to check account existence", "error", err)
		return false, fmt.Errorf("failed to check account %s: %w", identity.AccountID, err)
	}
	if exists {
		logger.Debug("Account already provisioned")
		return false, nil
	}

	if err := m.accountRepo.Create(ctx, identity, balance); err != nil {
		if errors.Is(err, account.ErrAccountExists{}) {
			logger.Info("Account created concurrently, reusing it")
			return false, nil
		}
		logger.Error("Failed to create account", "error", err)
		return false, fmt.Errorf("failed to create account %s: %w", identity.AccountID, err)
	}

	logger.Info("Account provisioned",
		"owner", identity.OwnerName,
		"opening_balance", balance.Current.StringFixed(2),
		"currency", balance.Currency,
	)
	return true, nil
}
