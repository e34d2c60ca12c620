package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	portssvc "github.com/drmelom/technical-test-BTG-Pactual/internal/core/ports/services"
)

// Dispatcher delivers notifications on a fixed pool of workers fed by a buffered channel.
// Dispatch never blocks: when the buffer is full the notification is dropped and logged.
type Dispatcher struct {
	notifier portssvc.Notifier
	timeout  time.Duration
	logger   *slog.Logger

	queue  chan domain.Notification
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ portssvc.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts workers goroutines delivering through notifier, each attempt bounded by timeout.
func NewDispatcher(notifier portssvc.Notifier, workers int, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
		queue:    make(chan domain.Notification, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) Dispatch(n domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notification dropped, dispatcher closed", slog.String("transaction_id", n.TransactionID))
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notification dropped, queue full", slog.String("transaction_id", n.TransactionID))
	}
}

// Close stops accepting notifications and waits for queued ones to be delivered or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifications: drain interrupted: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	logger := d.logger.With(
		slog.String("transaction_id", n.TransactionID),
		slog.String("account_id", n.AccountID),
		slog.String("channel", string(n.Preference)))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Notifier panicked", slog.Any("panic", r))
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.notifier.Notify(ctx, n); err != nil {
		// outcome is already committed; delivery failures are only reported
		logger.Warn("Notification delivery failed", slog.String("error", err.Error()))
		return
	}
	logger.Debug("Notification delivered")
}
