package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
)

// PreferenceRouter picks channels from the account's notification preference.
// With "both", delivery succeeds if at least one channel does.
type PreferenceRouter struct {
	email portssvc.Notifier
	sms   portssvc.Notifier
}

var _ portssvc.Notifier = (*PreferenceRouter)(nil)

func NewPreferenceRouter(email, sms portssvc.Notifier) *PreferenceRouter {
	return &PreferenceRouter{email: email, sms: sms}
}

func (r *PreferenceRouter) Notify(ctx context.Context, n domain.Notification) error {
	switch n.Preference {
	case domain.NotifyBySMS:
		return r.sms.Notify(ctx, n)
	case domain.NotifyByBoth:
		emailErr := r.email.Notify(ctx, n)
		smsErr := r.sms.Notify(ctx, n)
		if emailErr == nil || smsErr == nil {
			return nil
		}
		return errors.Join(emailErr, smsErr)
	case domain.NotifyByEmail, "":
		return r.email.Notify(ctx, n)
	default:
		return fmt.Errorf("notifications: unknown preference %q", n.Preference)
	}
}
