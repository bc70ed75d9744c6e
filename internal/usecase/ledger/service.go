// Package ledger ведёт кредиты пользователей и платежи по чекам.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// Service — журнал кредитов поверх хранилища.
// Каждая операция затрагивает одну строку; решение по платежу и начисление
// кредита выполняются последовательно, и начисление происходит только после
// успешного перевода платежа из pending.
type Service struct {
	credits  domain.CreditRepo
	payments domain.PaymentRepo
	events   domain.EventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

// NewService создаёт сервис журнала.
func NewService(credits domain.CreditRepo, payments domain.PaymentRepo, events domain.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{credits: credits, payments: payments, events: events, log: logger, now: time.Now}
}

// Balance возвращает текущий баланс.
func (s *Service) Balance(ctx context.Context, userID int64) (int, error) {
	return s.credits.Balance(ctx, userID)
}

// Grant начисляет кредиты.
func (s *Service) Grant(ctx context.Context, userID int64, n int, actorID int64) error {
	err := s.credits.AddCredits(ctx, userID, n)
	metrics.ObserveLedger("grant", err == nil, err)
	if err != nil {
		return fmt.Errorf("начисление кредитов: %w", err)
	}
	s.publish(ctx, domain.LedgerEvent{Type: domain.EventCreditGranted, UserID: userID, Amount: n, ActorID: actorID})
	return nil
}

// Consume списывает один кредит. При нехватке возвращает ErrInsufficientCredit.
func (s *Service) Consume(ctx context.Context, userID int64) error {
	ok, err := s.credits.ConsumeCredit(ctx, userID, 1)
	metrics.ObserveLedger("consume", ok, err)
	if err != nil {
		return fmt.Errorf("списание кредита: %w", err)
	}
	if !ok {
		return domain.ErrInsufficientCredit
	}
	s.publish(ctx, domain.LedgerEvent{Type: domain.EventCreditConsumed, UserID: userID, Amount: 1})
	return nil
}

// Refund возвращает списанный кредит после неудачной пересылки.
func (s *Service) Refund(ctx context.Context, userID int64) error {
	err := s.credits.AddCredits(ctx, userID, 1)
	metrics.ObserveLedger("refund", err == nil, err)
	if err != nil {
		return fmt.Errorf("возврат кредита: %w", err)
	}
	s.publish(ctx, domain.LedgerEvent{Type: domain.EventCreditRefunded, UserID: userID, Amount: 1})
	return nil
}

// SubmitPayment создаёт платёж в статусе pending.
func (s *Service) SubmitPayment(ctx context.Context, userID int64, receipt domain.Receipt, caption string) (int64, error) {
	id, err := s.payments.CreatePayment(ctx, userID, receipt, caption)
	metrics.ObserveLedger("create_payment", err == nil, err)
	if err != nil {
		return 0, fmt.Errorf("создание платежа: %w", err)
	}
	s.publish(ctx, domain.LedgerEvent{Type: domain.EventPaymentCreated, UserID: userID, PaymentID: id})
	return id, nil
}

// PendingPayment возвращает последний неразобранный платёж пользователя.
func (s *Service) PendingPayment(ctx context.Context, userID int64) (domain.Payment, bool, error) {
	return s.payments.PendingPayment(ctx, userID)
}

// Payment возвращает платёж по ID.
func (s *Service) Payment(ctx context.Context, id int64) (domain.Payment, error) {
	return s.payments.GetPayment(ctx, id)
}

// Resolve применяет решение администратора ровно один раз.
// Поздний или повторный вызов получает ErrPaymentResolved.
func (s *Service) Resolve(ctx context.Context, paymentID int64, approve bool, adminID int64) (domain.Payment, error) {
	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("получение платежа: %w", err)
	}
	if payment.Status != domain.PaymentPending {
		return payment, domain.ErrPaymentResolved
	}
	status := domain.PaymentRejected
	if approve {
		status = domain.PaymentApproved
	}
	applied, err := s.payments.ResolvePayment(ctx, paymentID, status, adminID)
	metrics.ObserveLedger("resolve_payment", applied, err)
	if err != nil {
		return payment, fmt.Errorf("решение по платежу: %w", err)
	}
	if !applied {
		return payment, domain.ErrPaymentResolved
	}
	payment.Status = status
	payment.AdminID = adminID

	eventType := domain.EventPaymentRejected
	if approve {
		eventType = domain.EventPaymentApproved
	}
	s.publish(ctx, domain.LedgerEvent{Type: eventType, UserID: payment.UserID, PaymentID: paymentID, ActorID: adminID})

	if approve {
		if err := s.Grant(ctx, payment.UserID, 1, adminID); err != nil {
			return payment, err
		}
	}
	return payment, nil
}

// Stats возвращает количество платежей по статусам.
func (s *Service) Stats(ctx context.Context) (domain.PaymentStats, error) {
	return s.payments.PaymentStats(ctx)
}

func (s *Service) publish(ctx context.Context, event domain.LedgerEvent) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(event.Type)).Int64("user", event.UserID).Msg("ledger: не удалось опубликовать событие")
	}
}
