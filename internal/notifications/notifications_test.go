package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/drmelom/technical-test-BTG-Pactual/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingNotifier struct {
	mu    sync.Mutex
	calls []domain.Notification
	err   error
	block chan struct{}
}

func (r *recordingNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func sample(pref domain.NotificationPreference) domain.Notification {
	return domain.Notification{
		AccountID:     "acc-1",
		FullName:      "Ana Perez",
		Email:         "ana@example.com",
		Phone:         "+573001234567",
		Preference:    pref,
		Kind:          domain.KindSubscription,
		TransactionID: "TXN_20250101_0000ABCD",
		FundID:        1,
		FundName:      "FPV_BTG_PACTUAL_RECAUDADORA",
		Amount:        decimal.NewFromInt(100000),
		NewBalance:    decimal.NewFromInt(400000),
	}
}

func TestRender(t *testing.T) {
	subject, body := render(sample(domain.NotifyByEmail))
	assert.Equal(t, "Subscription confirmed", subject)
	assert.Contains(t, body, "FPV_BTG_PACTUAL_RECAUDADORA")
	assert.Contains(t, body, "COP 100000")
	assert.Contains(t, body, "COP 400000")

	n := sample(domain.NotifyByEmail)
	n.Kind = domain.KindCancellation
	subject, body = render(n)
	assert.Equal(t, "Cancellation processed", subject)
	assert.Contains(t, body, "Refunded amount")
}

func TestEmailNotifier(t *testing.T) {
	ctx := context.Background()

	simulated := NewEmailNotifier("", 0, "", "", "funds@example.com", discard)
	assert.NoError(t, simulated.Notify(ctx, sample(domain.NotifyByEmail)))

	noAddress := sample(domain.NotifyByEmail)
	noAddress.Email = ""
	assert.ErrorIs(t, simulated.Notify(ctx, noAddress), errNoRecipient)

	var sent *gomail.Message
	live := &EmailNotifier{from: "funds@example.com", logger: discard, send: func(m *gomail.Message) error {
		sent = m
		return nil
	}}
	require.NoError(t, live.Notify(ctx, sample(domain.NotifyByEmail)))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"Subscription confirmed"}, sent.GetHeader("Subject"))

	failing := &EmailNotifier{from: "funds@example.com", logger: discard, send: func(*gomail.Message) error {
		return errors.New("535 authentication failed")
	}}
	assert.ErrorContains(t, failing.Notify(ctx, sample(domain.NotifyByEmail)), "535")
}

func TestSMSNotifier(t *testing.T) {
	ctx := context.Background()

	simulated := NewSMSNotifier("", "", "+15550000000", discard)
	assert.NoError(t, simulated.Notify(ctx, sample(domain.NotifyBySMS)))

	noPhone := sample(domain.NotifyBySMS)
	noPhone.Phone = ""
	assert.ErrorIs(t, simulated.Notify(ctx, noPhone), errNoRecipient)

	var got *twilioApi.CreateMessageParams
	sid := "SM123"
	live := &SMSNotifier{from: "+15550000000", logger: discard, createMessage: func(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
		got = p
		return &twilioApi.ApiV2010Message{Sid: &sid}, nil
	}}
	require.NoError(t, live.Notify(ctx, sample(domain.NotifyBySMS)))
	require.NotNil(t, got)
	assert.Equal(t, "+573001234567", *got.To)
	assert.True(t, strings.HasPrefix(*got.Body, "Dear Ana Perez"))
}

func TestPreferenceRouter(t *testing.T) {
	ctx := context.Background()
	email := &recordingNotifier{}
	sms := &recordingNotifier{}
	router := NewPreferenceRouter(email, sms)

	require.NoError(t, router.Notify(ctx, sample(domain.NotifyByEmail)))
	require.NoError(t, router.Notify(ctx, sample(domain.NotifyBySMS)))
	require.NoError(t, router.Notify(ctx, sample(domain.NotifyByBoth)))
	assert.Equal(t, 2, email.count())
	assert.Equal(t, 2, sms.count())

	sms.err = errors.New("twilio down")
	assert.NoError(t, router.Notify(ctx, sample(domain.NotifyByBoth)), "one channel is enough")

	email.err = errors.New("smtp down")
	assert.Error(t, router.Notify(ctx, sample(domain.NotifyByBoth)))

	assert.Error(t, router.Notify(ctx, sample("pigeon")))
}

func TestTrackingNotifier_DelegatesWithoutAnalytics(t *testing.T) {
	next := &recordingNotifier{}
	tracking := NewTrackingNotifier(next, utils.InitializePosthogClient("", "", discard), discard)

	require.NoError(t, tracking.Notify(context.Background(), sample(domain.NotifyByEmail)))
	assert.Equal(t, 1, next.count())
}

func TestDispatcher_DeliversAndDrains(t *testing.T) {
	next := &recordingNotifier{}
	d := NewDispatcher(next, 2, 16, time.Second, discard)

	for i := 0; i < 10; i++ {
		d.Dispatch(sample(domain.NotifyByEmail))
	}
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 10, next.count())

	d.Dispatch(sample(domain.NotifyByEmail))
	assert.Equal(t, 10, next.count(), "closed dispatcher drops")
	assert.NoError(t, d.Close(context.Background()), "close is idempotent")
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	next := &recordingNotifier{block: make(chan struct{})}
	d := NewDispatcher(next, 1, 1, time.Second, discard)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			d.Dispatch(sample(domain.NotifyByEmail))
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(next.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Less(t, next.count(), 50)
	assert.GreaterOrEqual(t, next.count(), 1)
}

func TestDispatcher_FailuresDoNotStopWorkers(t *testing.T) {
	next := &recordingNotifier{err: errors.New("boom")}
	d := NewDispatcher(next, 1, 4, time.Second, discard)
	d.Dispatch(sample(domain.NotifyByEmail))
	d.Dispatch(sample(domain.NotifyByEmail))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2, next.count())
}
