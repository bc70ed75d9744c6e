package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/infra/cache"
	"tg-gate-bot/internal/usecase/conversation"
)

type recordingProcessor struct {
	mu     sync.Mutex
	events []conversation.Event
	err    error
}

func (p *recordingProcessor) Handle(_ context.Context, ev conversation.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingProcessor) texts(userID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		if ev.From.ID == userID {
			out = append(out, ev.Text)
		}
	}
	return out
}

func textUpdate(id int, userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: id, Message: &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		Text:      text,
	}}
}

func TestHandleUpdateSkipsDuplicates(t *testing.T) {
	proc := &recordingProcessor{}
	h := NewHandler(proc, cache.NewMemory(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.HandleUpdate(ctx, textUpdate(1, 7, "salom")); err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}
	if got := len(proc.texts(7)); got != 1 {
		t.Fatalf("ожидалась одна обработка, получено %d", got)
	}
}

func TestHandleUpdateRetriesFailed(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("db down")}
	h := NewHandler(proc, cache.NewMemory(), zerolog.Nop())
	ctx := context.Background()

	if err := h.HandleUpdate(ctx, textUpdate(5, 7, "salom")); err == nil {
		t.Fatal("ожидалась ошибка обработки")
	}
	proc.err = nil
	if err := h.HandleUpdate(ctx, textUpdate(5, 7, "salom")); err != nil {
		t.Fatalf("повтор должен пройти: %v", err)
	}
	if got := len(proc.texts(7)); got != 2 {
		t.Fatalf("ожидалось две попытки, получено %d", got)
	}
}

func TestHandleUpdateIgnoresUnknown(t *testing.T) {
	proc := &recordingProcessor{}
	h := NewHandler(proc, cache.NewMemory(), zerolog.Nop())
	if err := h.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 9}); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(proc.events) != 0 {
		t.Fatal("пустой апдейт не должен обрабатываться")
	}
}

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	proc := &recordingProcessor{}
	d := NewDispatcher(NewHandler(proc, cache.NewMemory(), zerolog.Nop()), 4, zerolog.Nop())
	ctx := context.Background()
	d.Start(ctx)

	want := []string{"a", "b", "c", "d", "e"}
	id := 0
	for _, text := range want {
		for _, user := range []int64{7, 8, 9} {
			id++
			if !d.Dispatch(ctx, textUpdate(id, user, text)) {
				t.Fatal("dispatch отклонён")
			}
		}
	}
	d.Stop()

	for _, user := range []int64{7, 8, 9} {
		got := proc.texts(user)
		if len(got) != len(want) {
			t.Fatalf("пользователь %d: ожидалось %d событий, получено %d", user, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("пользователь %d: нарушен порядок %v", user, got)
			}
		}
	}
}

func TestShardIsStable(t *testing.T) {
	d := NewDispatcher(nil, 8, zerolog.Nop())
	if d.shard(15) != d.shard(15) || d.shard(-15) != d.shard(15) {
		t.Fatal("шард должен зависеть только от модуля ID")
	}
	if d.shard(0) != 0 {
		t.Fatal("апдейты без отправителя идут в нулевой шард")
	}
}
