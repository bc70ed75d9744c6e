package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/adapters/telegram"
)

const shardBuffer = 64

// Dispatcher раскладывает апдейты по воркерам по ID отправителя:
// апдейты одного пользователя обрабатываются последовательно, разных — параллельно.
type Dispatcher struct {
	handler *Handler
	shards  []chan tgbotapi.Update
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewDispatcher создаёт диспетчер с workers воркерами.
func NewDispatcher(handler *Handler, workers int, logger zerolog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	shards := make([]chan tgbotapi.Update, workers)
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, shardBuffer)
	}
	return &Dispatcher{handler: handler, shards: shards, log: logger}
}

// Start запускает воркеры. Они завершаются после Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, shard := range d.shards {
		d.wg.Add(1)
		go func(i int, updates <-chan tgbotapi.Update) {
			defer d.wg.Done()
			for upd := range updates {
				d.process(ctx, upd)
			}
			d.log.Debug().Int("worker", i).Msg("bot: воркер остановлен")
		}(i, shard)
	}
}

func (d *Dispatcher) process(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("update_id", upd.UpdateID).Msg("bot: паника при обработке апдейта")
		}
	}()
	_ = d.handler.HandleUpdate(ctx, upd)
}

// Dispatch ставит апдейт в очередь воркера отправителя.
// Возвращает false, если контекст отменён раньше.
func (d *Dispatcher) Dispatch(ctx context.Context, upd tgbotapi.Update) bool {
	select {
	case d.shards[d.shard(telegram.SenderID(upd))] <- upd:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Dispatcher) shard(userID int64) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(len(d.shards)))
}

// Stop закрывает очереди и ждёт завершения начатой обработки.
func (d *Dispatcher) Stop() {
	for _, shard := range d.shards {
		close(shard)
	}
	d.wg.Wait()
}
