package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/adapters/bot"
	"tg-gate-bot/internal/adapters/telegram"
	"tg-gate-bot/internal/app"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/cache"
	"tg-gate-bot/internal/infra/config"
	apphttp "tg-gate-bot/internal/infra/http"
	"tg-gate-bot/internal/infra/log"
	"tg-gate-bot/internal/infra/metrics"
	"tg-gate-bot/internal/usecase/birthday"
	"tg-gate-bot/internal/usecase/conversation"
	"tg-gate-bot/internal/usecase/gate"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "bot-gateway")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("бот-гейтвей остановлен с ошибкой")
	}
	logger.Info().Msg("бот-гейтвей остановлен")
}

func run(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) error {
	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	store, closeStore, err := app.OpenStore(ctx, cfg.PGDSN, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := app.OpenRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	sessions, dedup := sessionStores(rdb, cfg.SessionTTL)

	publisher, closePublisher, err := app.NewPublisher(cfg, rdb, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("не удалось создать бота: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("бот авторизован")
	messenger := telegram.NewMessenger(api, logger)

	svc, err := app.NewServices(ctx, store, messenger, cfg.ProtectedAdmins(), publisher, logger)
	if err != nil {
		return err
	}

	executor := conversation.NewExecutor(messenger, store, svc.Ledger, svc.Bridge, svc.Catalog, logger)
	coordinator := conversation.NewCoordinator(conversation.Deps{
		Users:    store,
		Sessions: sessions,
		Catalog:  svc.Catalog,
		Gate:     gate.New(store, messenger, logger),
		Ledger:   svc.Ledger,
		Executor: executor,
		Logger:   logger,
		Now:      time.Now,
	})

	if cfg.Birthday.InProcess {
		notifier := birthday.NewNotifier(store, store, svc.Bridge, cfg.BirthdayOffset(), logger)
		scheduler := birthday.NewScheduler(notifier, cfg.Birthday.Interval, logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	// Воркеры живут дольше контекста сигнала, чтобы дообработать очередь.
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	dispatcher := bot.NewDispatcher(bot.NewHandler(coordinator, dedup, logger), cfg.UpdateWorkers, logger)
	dispatcher.Start(workCtx)
	defer dispatcher.Stop()

	intakeCtx, stopIntake := context.WithCancel(ctx)
	defer stopIntake()
	pollDone := make(chan struct{})

	server := apphttp.NewServer(logger, store)
	if cfg.Telegram.WebhookURL != "" {
		if err := setWebhook(api, cfg.Telegram.WebhookURL, cfg.Telegram.Secret); err != nil {
			return err
		}
		server.MountWebhook(dispatcher, cfg.Telegram.Secret)
		logger.Info().Str("url", cfg.Telegram.WebhookURL).Msg("вебхук установлен")
		close(pollDone)
	} else {
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return fmt.Errorf("удаление вебхука: %w", err)
		}
		go func() {
			defer close(pollDone)
			bot.Poll(intakeCtx, api, dispatcher, logger)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(":" + strconv.Itoa(cfg.Port))
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP сервер: %w", err)
		}
	}

	// Приём апдейтов останавливается до закрытия очередей диспетчера.
	logger.Info().Msg("остановка бота")
	stopIntake()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Err(err).Msg("ошибка остановки HTTP сервера")
	}
	<-pollDone
	return runErr
}

func sessionStores(rdb *redis.Client, ttl time.Duration) (domain.SessionStore, domain.Cache) {
	if rdb == nil {
		return cache.NewMemorySessions(), cache.NewMemory()
	}
	return cache.NewRedisSessions(rdb, ttl), cache.NewRedis(rdb)
}

func setWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", []string{"message", "callback_query"}); err != nil {
		return err
	}
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("установка вебхука: %w", err)
	}
	return nil
}
