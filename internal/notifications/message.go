package notifications

import (
	"errors"
	"fmt"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
)

// errNoRecipient is returned when the account has no address for the channel.
var errNoRecipient = errors.New("notifications: no recipient for channel")

// render builds the subject and plain-text body for n.
func render(n domain.Notification) (subject string, body string) {
	switch n.Kind {
	case domain.KindCancellation:
		subject = "Cancellation processed"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour subscription to fund %s has been cancelled.\nRefunded amount: %s %s\nAvailable balance: %s %s\nReference: %s\n",
			n.FullName, n.FundName,
			domain.CurrencyCOP, n.Amount.StringFixed(0),
			domain.CurrencyCOP, n.NewBalance.StringFixed(0),
			n.TransactionID,
		)
	default:
		subject = "Subscription confirmed"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour subscription to fund %s has been processed.\nInvested amount: %s %s\nAvailable balance: %s %s\nReference: %s\n",
			n.FullName, n.FundName,
			domain.CurrencyCOP, n.Amount.StringFixed(0),
			domain.CurrencyCOP, n.NewBalance.StringFixed(0),
			n.TransactionID,
		)
	}
	return subject, body
}
