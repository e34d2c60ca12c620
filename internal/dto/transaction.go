package dto

import (
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListTransactionsParams defines query parameters for the history endpoint.
type ListTransactionsParams struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Size   int    `form:"size,default=20" binding:"min=1,max=100"`
	Kind   string `form:"type" binding:"omitempty,oneof=subscription cancellation"`
	Status string `form:"status" binding:"omitempty,oneof=pending completed failed"`
}

// Filter converts the optional query parameters into a domain filter.
func (p ListTransactionsParams) Filter() domain.TransactionFilter {
	var f domain.TransactionFilter
	if p.Kind != "" {
		kind := domain.TransactionKind(p.Kind)
		f.Kind = &kind
	}
	if p.Status != "" {
		status := domain.TransactionStatus(p.Status)
		f.Status = &status
	}
	return f
}

// RecentTransactionsParams defines query parameters for the admin feed.
type RecentTransactionsParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID string                   `json:"transactionID"`
	AccountID     string                   `json:"accountID"`
	FundID        int                      `json:"fundID"`
	Type          domain.TransactionKind   `json:"type"`
	Amount        decimal.Decimal          `json:"amount"`
	Status        domain.TransactionStatus `json:"status"`
	Description   string                   `json:"description"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	CompletedAt   *time.Time               `json:"completedAt,omitempty"`
}

// ListTransactionsResponse wraps one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Size         int                   `json:"size"`
	TotalPages   int                   `json:"totalPages"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		FundID:        t.FundID,
		Type:          t.Kind,
		Amount:        t.Amount,
		Status:        t.Status,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to response DTOs
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ToListTransactionsResponse converts a domain page to its DTO
func ToListTransactionsResponse(page *domain.TransactionPage) ListTransactionsResponse {
	return ListTransactionsResponse{
		Transactions: ToTransactionResponses(page.Items),
		Total:        page.Total,
		Page:         page.Page,
		Size:         page.PageSize,
		TotalPages:   page.TotalPages,
	}
}
