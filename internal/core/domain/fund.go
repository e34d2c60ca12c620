package domain

import "github.com/shopspring/decimal"

// FundCategory classifies a fund.
type FundCategory string

const (
	CategoryFPV FundCategory = "FPV" // voluntary pension fund
	CategoryFIC FundCategory = "FIC" // collective investment fund
)

// Fund is a catalog entry clients can subscribe to.
type Fund struct {
	FundID        int             `json:"fundID"`
	Name          string          `json:"name"`
	MinimumAmount decimal.Decimal `json:"minimumAmount"`
	Category      FundCategory    `json:"category"`
	Description   string          `json:"description"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// DefaultFunds returns the catalog seeded on first start.
func DefaultFunds() []Fund {
	return []Fund{
		{FundID: 1, Name: "FPV_BTG_PACTUAL_RECAUDADORA", MinimumAmount: decimal.NewFromInt(75000), Category: CategoryFPV, Description: "Voluntary pension fund, collection portfolio", IsActive: true},
		{FundID: 2, Name: "FPV_BTG_PACTUAL_ECOPETROL", MinimumAmount: decimal.NewFromInt(125000), Category: CategoryFPV, Description: "Voluntary pension fund, Ecopetrol portfolio", IsActive: true},
		{FundID: 3, Name: "DEUDAPRIVADA", MinimumAmount: decimal.NewFromInt(50000), Category: CategoryFIC, Description: "Collective investment fund in private debt", IsActive: true},
		{FundID: 4, Name: "FDO-ACCIONES", MinimumAmount: decimal.NewFromInt(250000), Category: CategoryFIC, Description: "Collective investment fund in equities", IsActive: true},
		{FundID: 5, Name: "FPV_BTG_PACTUAL_DINAMICA", MinimumAmount: decimal.NewFromInt(100000), Category: CategoryFPV, Description: "Voluntary pension fund, dynamic portfolio", IsActive: true},
	}
}
