package models

import "github.com/shopspring/decimal"

// Fund is a catalog row.
type Fund struct {
	FundID        int             `db:"fund_id"`
	Name          string          `db:"name"`
	MinimumAmount decimal.Decimal `db:"minimum_amount"`
	Category      string          `db:"category"`
	Description   string          `db:"description"`
	IsActive      bool            `db:"is_active"`
	AuditFields
}
