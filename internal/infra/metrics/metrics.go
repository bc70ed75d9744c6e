package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	UpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Обработанные апдейты по типу и результату",
	}, []string{"kind", "status"})

	UpdateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bot_update_duration_seconds",
		Help:    "Длительность обработки апдейта",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	DuplicateUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_duplicate_updates_total",
		Help: "Повторно доставленные апдейты",
	})

	LedgerOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Операции с кредитами и платежами",
	}, []string{"operation", "result"})

	RelayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_messages_total",
		Help: "Пересылки сообщений администраторам",
	}, []string{"result"})

	GateChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_checks_total",
		Help: "Проверки обязательной подписки",
	}, []string{"result"})

	BirthdayNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "birthday_notifications_total",
		Help: "Уведомления о днях рождения",
	}, []string{"result"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		BotSendErrors,
		UpdatesTotal,
		UpdateDuration,
		DuplicateUpdates,
		LedgerOperations,
		RelayTotal,
		GateChecks,
		BirthdayNotifications,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: ошибка остановки сервера")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: сервер остановлен")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLedger фиксирует результат операции журнала кредитов.
func ObserveLedger(operation string, applied bool, err error) {
	result := "applied"
	switch {
	case err != nil:
		result = "error"
	case !applied:
		result = "rejected"
	}
	LedgerOperations.WithLabelValues(operation, result).Inc()
}

// ObserveUpdate фиксирует обработку апдейта.
func ObserveUpdate(kind string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpdatesTotal.WithLabelValues(kind, status).Inc()
	UpdateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
