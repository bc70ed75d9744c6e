// Package bot принимает апдейты Telegram и передаёт их координатору диалога.
package bot

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/adapters/telegram"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
	"tg-gate-bot/internal/usecase/conversation"
)

// DedupTTL — сколько помнить обработанный update_id.
const DedupTTL = 10 * time.Minute

// Processor обрабатывает событие диалога.
type Processor interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Handler превращает апдейт в событие, отбрасывает повторы и передаёт дальше.
type Handler struct {
	processor Processor
	cache     domain.Cache
	log       zerolog.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(processor Processor, cache domain.Cache, log zerolog.Logger) *Handler {
	return &Handler{processor: processor, cache: cache, log: log}
}

// HandleUpdate обрабатывает входящий апдейт. Повторно доставленный апдейт пропускается.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	start := time.Now()
	kind := telegram.Kind(upd)
	ev, ok := telegram.EventFromUpdate(upd)
	if !ok {
		return nil
	}

	logger := h.log.With().
		Str("correlation_id", uuid.NewString()).
		Int("update_id", upd.UpdateID).
		Int64("user", ev.From.ID).
		Str("kind", kind).
		Logger()
	ctx = logger.WithContext(ctx)

	key := "update:" + strconv.Itoa(upd.UpdateID)
	err := h.cache.Once(ctx, key, DedupTTL, func() error {
		return h.processor.Handle(ctx, ev)
	})
	metrics.ObserveUpdate(kind, start, err)
	if err != nil {
		logger.Error().Err(err).Msg("bot: апдейт не обработан")
		return err
	}
	logger.Debug().Dur("took", time.Since(start)).Msg("bot: апдейт обработан")
	return nil
}
