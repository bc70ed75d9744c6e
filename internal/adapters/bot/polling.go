package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const pollTimeout = 30

// Poll получает апдейты long polling до отмены контекста.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, dispatcher *Dispatcher, logger zerolog.Logger) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := api.GetUpdatesChan(cfg)
	logger.Info().Msg("bot: long polling запущен")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			logger.Info().Msg("bot: long polling остановлен")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if !dispatcher.Dispatch(ctx, upd) {
				api.StopReceivingUpdates()
				return
			}
		}
	}
}
