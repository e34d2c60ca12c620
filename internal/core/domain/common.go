package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// CurrencyCOP is the only currency balances and amounts are expressed in.
const CurrencyCOP = "COP"

// CurrencyScale is the number of decimal places in the smallest COP unit stored.
const CurrencyScale int32 = 2

// IsWholeUnits reports whether amount is an exact multiple of the smallest currency unit.
// Trailing zeros are fine: "100.500" has the same value as "100.50".
func IsWholeUnits(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(CurrencyScale))
}
