package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionIDGenerator produces ledger identifiers for the given instant.
type TransactionIDGenerator func(now time.Time) string

// NewTransactionID returns an identifier of the form TXN_YYYYMMDD_XXXXXXXX, where the
// suffix is eight upper-case hex digits taken from a random UUID.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "TXN_" + now.UTC().Format("20060102") + "_" + suffix
}
