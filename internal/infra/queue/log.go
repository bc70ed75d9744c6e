package queue

import (
	"context"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
)

// LogPublisher пишет события в лог, когда брокер не настроен.
type LogPublisher struct {
	log zerolog.Logger
}

var _ domain.EventPublisher = LogPublisher{}

// NewLogPublisher создаёт публикатор в лог.
func NewLogPublisher(logger zerolog.Logger) LogPublisher {
	return LogPublisher{log: logger}
}

// Publish логирует событие.
func (p LogPublisher) Publish(_ context.Context, event domain.LedgerEvent) error {
	p.log.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Int64("user", event.UserID).
		Int64("payment", event.PaymentID).
		Int("amount", event.Amount).
		Msg("ledger: событие")
	return nil
}
