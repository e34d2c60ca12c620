package dto

import (
	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FundResponse defines the data returned for a catalog entry.
type FundResponse struct {
	FundID        int                 `json:"fundID"`
	Name          string              `json:"name"`
	MinimumAmount decimal.Decimal     `json:"minimumAmount"`
	Category      domain.FundCategory `json:"category"`
	Description   string              `json:"description"`
	IsActive      bool                `json:"isActive"`
}

// ToFundResponse converts a domain.Fund to FundResponse DTO
func ToFundResponse(f *domain.Fund) FundResponse {
	return FundResponse{
		FundID:        f.FundID,
		Name:          f.Name,
		MinimumAmount: f.MinimumAmount,
		Category:      f.Category,
		Description:   f.Description,
		IsActive:      f.IsActive,
	}
}

// ToListFundResponse converts a slice of domain.Fund to FundResponse DTOs
func ToListFundResponse(funds []domain.Fund) []FundResponse {
	res := make([]FundResponse, len(funds))
	for i := range funds {
		res[i] = ToFundResponse(&funds[i])
	}
	return res
}
