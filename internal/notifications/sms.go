package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type createMessageFunc func(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)

// SMSNotifier sends notifications through Twilio. Without credentials it only logs the message.
type SMSNotifier struct {
	from          string
	createMessage createMessageFunc
	logger        *slog.Logger
}

var _ portssvc.Notifier = (*SMSNotifier)(nil)

// NewSMSNotifier creates a Twilio notifier. Empty credentials yield a simulated sender.
func NewSMSNotifier(accountSID, authToken, from string, logger *slog.Logger) *SMSNotifier {
	n := &SMSNotifier{from: from, logger: logger}
	if accountSID != "" && authToken != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		n.createMessage = client.Api.CreateMessage
	}
	return n
}

func (s *SMSNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if n.Phone == "" {
		return fmt.Errorf("sms: %w", errNoRecipient)
	}
	_, body := render(n)

	if s.createMessage == nil {
		s.logger.Info("Simulated SMS notification",
			slog.String("to", n.Phone),
			slog.String("transaction_id", n.TransactionID))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.Phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	type result struct {
		msg *twilioApi.ApiV2010Message
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		msg, err := s.createMessage(params)
		resCh <- result{msg, err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return fmt.Errorf("sms: send to %s: %w", n.Phone, res.err)
		}
		sid := ""
		if res.msg != nil && res.msg.Sid != nil {
			sid = *res.msg.Sid
		}
		s.logger.Info("SMS notification sent", slog.String("to", n.Phone), slog.String("sid", sid), slog.String("transaction_id", n.TransactionID))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sms: %w", ctx.Err())
	}
}
