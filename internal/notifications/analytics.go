package notifications

import (
	"context"
	"log/slog"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
)

// TrackingNotifier records every outcome as an analytics event before delegating.
type TrackingNotifier struct {
	next    portssvc.Notifier
	posthog *utils.PosthogClientWrapper
	logger  *slog.Logger
}

var _ portssvc.Notifier = (*TrackingNotifier)(nil)

func NewTrackingNotifier(next portssvc.Notifier, posthog *utils.PosthogClientWrapper, logger *slog.Logger) *TrackingNotifier {
	return &TrackingNotifier{next: next, posthog: posthog, logger: logger}
}

func (t *TrackingNotifier) Notify(ctx context.Context, n domain.Notification) error {
	event := "fund_subscribed"
	if n.Kind == domain.KindCancellation {
		event = "fund_cancelled"
	}
	err := t.posthog.Enqueue(n.AccountID, event, map[string]any{
		"transaction_id": n.TransactionID,
		"fund_id":        n.FundID,
		"fund_name":      n.FundName,
		"amount":         n.Amount.String(),
		"channel":        string(n.Preference),
	})
	if err != nil {
		t.logger.Warn("Failed to enqueue analytics event", slog.String("event", event), slog.String("error", err.Error()))
	}
	return t.next.Notify(ctx, n)
}
