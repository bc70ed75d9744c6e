package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"tg-gate-bot/internal/adapters/telegram"
	"tg-gate-bot/internal/app"
	"tg-gate-bot/internal/infra/config"
	"tg-gate-bot/internal/infra/log"
	"tg-gate-bot/internal/infra/metrics"
	"tg-gate-bot/internal/usecase/birthday"
)

// Отдельный процесс напоминаний о днях рождения, когда BIRTHDAY_IN_PROCESS=false.
func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "scheduler")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	store, closeStore, err := app.OpenStore(ctx, cfg.PGDSN, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer closeStore()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: не удалось создать бота")
	}
	svc, err := app.NewServices(ctx, store, telegram.NewMessenger(api, logger), cfg.ProtectedAdmins(), nil, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: не удалось инициализировать сервисы")
	}

	notifier := birthday.NewNotifier(store, store, svc.Bridge, cfg.BirthdayOffset(), logger)
	scheduler := birthday.NewScheduler(notifier, cfg.Birthday.Interval, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("scheduler: не удалось запустить")
	}
	logger.Info().Dur("interval", cfg.Birthday.Interval).Msg("scheduler: запущен")

	<-ctx.Done()
	scheduler.Stop()
	logger.Info().Msg("scheduler: остановлен")
}
