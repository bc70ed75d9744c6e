package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/domain"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.LedgerEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.LedgerEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newService(t *testing.T) (*Service, *repo.Memory, *recordingPublisher) {
	t.Helper()
	store := repo.NewMemory()
	events := &recordingPublisher{}
	return NewService(store, store, events, zerolog.Nop()), store, events
}

func TestConsumeFailsClosed(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newService(t)

	err := svc.Consume(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredit)

	require.NoError(t, svc.Grant(ctx, 1, 1, 0))
	require.NoError(t, svc.Consume(ctx, 1))
	assert.ErrorIs(t, svc.Consume(ctx, 1), domain.ErrInsufficientCredit)

	balance, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Equal(t, []domain.LedgerEventType{domain.EventCreditGranted, domain.EventCreditConsumed}, events.types())
}

func TestRelayRefundRestoresBalance(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	require.NoError(t, svc.Grant(ctx, 9, 2, 0))

	require.NoError(t, svc.Consume(ctx, 9))
	balance, _ := svc.Balance(ctx, 9)
	assert.Equal(t, 1, balance)

	require.NoError(t, svc.Refund(ctx, 9))
	balance, _ = svc.Balance(ctx, 9)
	assert.Equal(t, 2, balance)
}

func TestResolveApproveThenReject(t *testing.T) {
	ctx := context.Background()
	svc, _, events := newService(t)

	id, err := svc.SubmitPayment(ctx, 5, domain.Receipt{Kind: domain.ReceiptPhoto, FileID: "photo"}, "chek")
	require.NoError(t, err)
	pending, ok, err := svc.PendingPayment(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, pending.ID)

	payment, err := svc.Resolve(ctx, id, true, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, payment.Status)
	assert.Equal(t, int64(100), payment.AdminID)

	payment, err = svc.Resolve(ctx, id, false, 200)
	assert.ErrorIs(t, err, domain.ErrPaymentResolved)
	assert.Equal(t, domain.PaymentApproved, payment.Status)

	balance, _ := svc.Balance(ctx, 5)
	assert.Equal(t, 1, balance)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStats{Approved: 1}, stats)
	assert.Equal(t, []domain.LedgerEventType{
		domain.EventPaymentCreated,
		domain.EventPaymentApproved,
		domain.EventCreditGranted,
	}, events.types())
}

func TestResolveRejectGrantsNothing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	id, err := svc.SubmitPayment(ctx, 5, domain.Receipt{Kind: domain.ReceiptDocument, FileID: "doc"}, "")
	require.NoError(t, err)

	payment, err := svc.Resolve(ctx, id, false, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, payment.Status)
	balance, _ := svc.Balance(ctx, 5)
	assert.Zero(t, balance)
}

func TestResolveUnknownPayment(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Resolve(context.Background(), 404, true, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentResolveAppliesOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	id, err := svc.SubmitPayment(ctx, 8, domain.Receipt{Kind: domain.ReceiptPhoto, FileID: "p"}, "")
	require.NoError(t, err)

	const admins = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		resolved int
	)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Resolve(ctx, id, i%2 == 0, int64(1000+i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, domain.ErrPaymentResolved):
				resolved++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, admins-1, resolved)

	payment, err := svc.Payment(ctx, id)
	require.NoError(t, err)
	balance, _ := svc.Balance(ctx, 8)
	if payment.Status == domain.PaymentApproved {
		assert.Equal(t, 1, balance)
	} else {
		assert.Zero(t, balance)
	}
}

func TestPublishFailureDoesNotFailLedger(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemory()
	events := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(store, store, events, zerolog.Nop())

	require.NoError(t, svc.Grant(ctx, 3, 1, 0))
	balance, _ := svc.Balance(ctx, 3)
	assert.Equal(t, 1, balance)
	require.Len(t, events.events, 1)
	assert.NotEmpty(t, events.events[0].ID)
	assert.False(t, events.events[0].OccurredAt.IsZero())
}

func TestNilPublisher(t *testing.T) {
	store := repo.NewMemory()
	svc := NewService(store, store, nil, zerolog.Nop())
	require.NoError(t, svc.Grant(context.Background(), 3, 1, 0))
}
