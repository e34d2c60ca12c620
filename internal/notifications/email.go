package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends notifications over SMTP. Without a host it only logs the message.
type EmailNotifier struct {
	from   string
	send   func(*gomail.Message) error
	logger *slog.Logger
}

var _ portssvc.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates an SMTP notifier. An empty host yields a simulated sender.
func NewEmailNotifier(host string, port int, username, password, from string, logger *slog.Logger) *EmailNotifier {
	n := &EmailNotifier{from: from, logger: logger}
	if host != "" {
		dialer := gomail.NewDialer(host, port, username, password)
		n.send = func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		}
	}
	return n
}

func (e *EmailNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if n.Email == "" {
		return fmt.Errorf("email: %w", errNoRecipient)
	}
	subject, body := render(n)

	if e.send == nil {
		e.logger.Info("Simulated email notification",
			slog.String("to", n.Email),
			slog.String("subject", subject),
			slog.String("transaction_id", n.TransactionID))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetAddressHeader("To", n.Email, n.FullName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	// DialAndSend takes no context; stop waiting once ctx is done.
	errCh := make(chan error, 1)
	go func() { errCh <- e.send(m) }()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("email: send to %s: %w", n.Email, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("email: %w", ctx.Err())
	}

	e.logger.Info("Email notification sent", slog.String("to", n.Email), slog.String("transaction_id", n.TransactionID))
	return nil
}
