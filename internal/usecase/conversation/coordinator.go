package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/gate"
	"tg-gate-bot/internal/usecase/ledger"
)

const adminErrorText = "Xatolik yuz berdi. Qayta urinib ko'ring."

// Deps — зависимости координатора.
type Deps struct {
	Users    domain.UserRepo
	Sessions domain.SessionStore
	Catalog  *catalog.Service
	Gate     *gate.Gate
	Ledger   *ledger.Service
	Executor *Executor
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Coordinator обрабатывает одно событие: собирает снимок, принимает решение,
// выполняет эффекты и сохраняет сессию. События одного пользователя
// должны подаваться последовательно.
type Coordinator struct {
	users    domain.UserRepo
	sessions domain.SessionStore
	catalog  *catalog.Service
	gate     *gate.Gate
	ledger   *ledger.Service
	exec     *Executor
	log      zerolog.Logger
	now      func() time.Time
}

// NewCoordinator создаёт координатор.
func NewCoordinator(deps Deps) *Coordinator {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		users:    deps.Users,
		sessions: deps.Sessions,
		catalog:  deps.Catalog,
		gate:     deps.Gate,
		ledger:   deps.Ledger,
		exec:     deps.Executor,
		log:      deps.Logger,
		now:      now,
	}
}

// Handle обрабатывает входящее событие.
func (c *Coordinator) Handle(ctx context.Context, ev Event) error {
	isAdmin, err := c.catalog.IsAdmin(ctx, ev.From.ID)
	if err != nil {
		return fmt.Errorf("проверка роли: %w", err)
	}
	actor := domain.NewActor(ev.From, isAdmin)
	if !actor.IsAdmin() && ev.Kind == EventMessage && !ev.Private {
		return nil
	}

	snap, err := c.snapshot(ctx, ev, actor)
	if err != nil {
		c.fail(ctx, ev, snap)
		return err
	}

	out := Decide(ev, snap)
	if err := c.exec.Run(ctx, ev, snap, out.Effects); err != nil {
		c.fail(ctx, ev, snap)
		return fmt.Errorf("выполнение эффектов: %w", err)
	}
	return c.persist(ctx, actor.ID(), snap.Session, out.Next)
}

func (c *Coordinator) snapshot(ctx context.Context, ev Event, actor domain.Actor) (Snapshot, error) {
	snap := Snapshot{Actor: actor, Protected: c.catalog.Protected(), Now: c.now()}

	settings, err := c.catalog.Settings(ctx)
	if err != nil {
		return snap, err
	}
	snap.Settings = settings

	session, err := c.sessions.Load(ctx, actor.ID())
	if err != nil {
		return snap, fmt.Errorf("загрузка сессии: %w", err)
	}
	snap.Session = session

	if actor.IsAdmin() {
		return snap, nil
	}

	if snap.User, err = c.users.UpsertUser(ctx, ev.From); err != nil {
		return snap, fmt.Errorf("сохранение пользователя: %w", err)
	}
	if snap.Missing, err = c.gate.Missing(ctx, actor.ID()); err != nil {
		return snap, err
	}
	if snap.Balance, err = c.ledger.Balance(ctx, actor.ID()); err != nil {
		return snap, fmt.Errorf("получение баланса: %w", err)
	}
	if _, snap.Pending, err = c.ledger.PendingPayment(ctx, actor.ID()); err != nil {
		return snap, fmt.Errorf("получение платежа: %w", err)
	}
	card, ok, err := c.catalog.ActiveCard(ctx)
	if err != nil {
		return snap, fmt.Errorf("получение активной карты: %w", err)
	}
	if ok {
		snap.Card = &card
	}
	if snap.Menus, err = c.catalog.Menus(ctx); err != nil {
		return snap, fmt.Errorf("получение меню: %w", err)
	}
	return snap, nil
}

// persist сохраняет сессию только при изменении; пустая сессия удаляется.
func (c *Coordinator) persist(ctx context.Context, userID int64, prev, next domain.Session) error {
	if sameSession(prev, next) {
		return nil
	}
	if next.Idle() && len(next.Draft) == 0 {
		if err := c.sessions.Clear(ctx, userID); err != nil {
			return fmt.Errorf("очистка сессии: %w", err)
		}
		return nil
	}
	if err := c.sessions.Save(ctx, userID, next); err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	return nil
}

func sameSession(a, b domain.Session) bool {
	if a.State != b.State || len(a.Draft) != len(b.Draft) {
		return false
	}
	for k, v := range a.Draft {
		if b.Draft[k] != v {
			return false
		}
	}
	return true
}

// fail сообщает об ошибке обработки. Сессия при этом не меняется.
func (c *Coordinator) fail(ctx context.Context, ev Event, snap Snapshot) {
	text := i18n.T(snap.Lang(), i18n.KeySendErrorRestart, nil)
	if snap.Actor.IsAdmin() {
		text = adminErrorText
	}
	if ev.Kind == EventCallback {
		c.exec.answer(ctx, ev, text, true)
		return
	}
	if ev.Private {
		c.exec.reply(ctx, ev, text, nil, false)
	}
}
