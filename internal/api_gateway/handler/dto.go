package handler

import (
	"github.com/shopspring/decimal"
)

// CreateGenerationRequest asks for one account's history. Omitted optional
// fields fall back to the synthesizer's configuration.
type CreateGenerationRequest struct {
	AccountID      string          `json:"account_id" binding:"required,number,min=4,max=32"`
	OwnerName      string          `json:"owner_name" binding:"required,max=120"`
	Profile        string          `json:"profile" binding:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency" binding:"omitempty,len=3,alpha"`
	StartDate      string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate        string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Seed           *int64          `json:"seed"`
	FailurePolicy  string          `json:"failure_policy" binding:"omitempty,oneof=continue abort"`
}

// GenerationAcceptedResponse is returned once a request is queued
type GenerationAcceptedResponse struct {
	RunID     string `json:"run_id"`
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// ProfileResponse describes a spending profile
type ProfileResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rules       int    `json:"rules"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	AccountID      string `json:"account_id"`
	AccountName    string `json:"account_name"`
	AccountType    string `json:"account_type"`
	AccountNumber  string `json:"account_number"`
	OwnerName      string `json:"owner_name"`
	OpeningBalance string `json:"opening_balance"`
	Currency       string `json:"currency"`
	BankName       string `json:"bank_name"`
	RoutingNumber  string `json:"routing_number"`
	Branch         string `json:"branch"`
	PendingBatches int    `json:"pending_batches"`
}

// TransactionQuery is the filter and page of a transaction listing
type TransactionQuery struct {
	Page    int    `form:"page,default=1" binding:"min=1"`
	PerPage int    `form:"per_page,default=10" binding:"min=1,max=100"`
	From    string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
