package birthday

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler периодически запускает Notifier. Следующий проход не начинается,
// пока не завершён предыдущий.
type Scheduler struct {
	cron     *gocron.Scheduler
	notifier *Notifier
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler создаёт планировщик с заданным периодом.
func NewScheduler(notifier *Notifier, interval time.Duration, logger zerolog.Logger) *Scheduler {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron, notifier: notifier, interval: interval, now: time.Now, log: logger}
}

// Start регистрирует задачу и запускает планировщик без блокировки.
// Первый проход выполняется сразу.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.Every(s.interval).Do(s.tick); err != nil {
		s.cancel()
		return fmt.Errorf("регистрация задачи дней рождения: %w", err)
	}
	s.cron.StartAsync()
	s.log.Info().Dur("interval", s.interval).Msg("birthday: планировщик запущен")
	return nil
}

// Stop отменяет текущий проход и останавливает планировщик.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cron.Stop()
	s.log.Info().Msg("birthday: планировщик остановлен")
}

func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("birthday: паника в проходе")
		}
	}()
	if _, err := s.notifier.RunAt(s.ctx, s.now()); err != nil {
		s.log.Error().Err(err).Msg("birthday: проход завершился ошибкой")
	}
}
