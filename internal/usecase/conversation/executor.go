package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/ledger"
	"tg-gate-bot/internal/usecase/moderation"
)

// Executor применяет эффекты решения к хранилищу и мессенджеру.
type Executor struct {
	messenger domain.Messenger
	users     domain.UserRepo
	ledger    *ledger.Service
	bridge    *moderation.Bridge
	catalog   *catalog.Service
	log       zerolog.Logger
}

// NewExecutor создаёт исполнитель эффектов.
func NewExecutor(messenger domain.Messenger, users domain.UserRepo, led *ledger.Service, bridge *moderation.Bridge, cat *catalog.Service, logger zerolog.Logger) *Executor {
	return &Executor{messenger: messenger, users: users, ledger: led, bridge: bridge, catalog: cat, log: logger}
}

// Run выполняет эффекты по порядку и останавливается на первой ошибке.
// Ошибки доставки в чат события не прерывают выполнение.
func (x *Executor) Run(ctx context.Context, ev Event, snap Snapshot, effects []Effect) error {
	for _, effect := range effects {
		if err := x.apply(ctx, ev, snap, effect); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) apply(ctx context.Context, ev Event, snap Snapshot, effect Effect) error {
	userID := ev.From.ID
	switch e := effect.(type) {
	case Send:
		x.reply(ctx, ev, e.Text, e.Keyboard, e.Plain)
	case Answer:
		x.answer(ctx, ev, e.Text, e.Alert)
	case ClearMarkup:
		x.clearMarkup(ctx, ev)

	case SetLanguage:
		return wrap("сохранение языка", x.users.SetLanguage(ctx, userID, e.Lang))
	case SaveRegistration:
		return wrap("сохранение регистрации", x.users.SaveRegistration(ctx, userID, e.Registration))
	case UpdateProfile:
		return wrap("обновление профиля", x.users.UpdateProfileField(ctx, userID, e.Field, e.Value))
	case DeleteUser:
		return wrap("удаление данных пользователя", x.users.DeleteUserData(ctx, userID))

	case Relay:
		return x.relay(ctx, ev, snap)
	case SubmitReceipt:
		return x.submitReceipt(ctx, ev, snap, e)
	case CountNoPayment:
		return x.countNoPayment(ctx, ev, snap)
	case ResolvePayment:
		return x.resolvePayment(ctx, ev, e)
	case ReplyToUser:
		return x.replyToUser(ctx, ev)

	case Show:
		return x.show(ctx, ev, e)
	case AddChannel:
		if _, err := x.catalog.AddChannel(ctx, e.Channel); err != nil {
			return err
		}
		return x.show(ctx, ev, Show{View: ViewChannels, Prefix: "Kanal qo'shildi.\n\n", Keyboard: AdminChannelsKeyboard()})
	case RemoveChannel:
		return x.removal(ctx, ev, x.catalog.RemoveChannel(ctx, e.ID), "Bunday kanal ID topilmadi.",
			Show{View: ViewChannels, Prefix: "Kanal o'chirildi.\n\n", Keyboard: AdminChannelsKeyboard()})
	case AddCard:
		if _, err := x.catalog.AddCard(ctx, e.Owner, e.Number); err != nil {
			return err
		}
		return x.show(ctx, ev, Show{View: ViewCards, Prefix: "Karta saqlandi.\n\n", Keyboard: AdminCardsKeyboard()})
	case ActivateCard:
		return x.removal(ctx, ev, x.catalog.ActivateCard(ctx, e.ID), "Karta topilmadi.",
			Show{View: ViewCards, Prefix: "Aktiv karta yangilandi.\n\n", Keyboard: AdminCardsKeyboard()})
	case RemoveCard:
		return x.removal(ctx, ev, x.catalog.RemoveCard(ctx, e.ID), "Karta topilmadi.",
			Show{View: ViewCards, Prefix: "Karta o'chirildi.\n\n", Keyboard: AdminCardsKeyboard()})
	case SaveSetting:
		if _, err := x.catalog.UpdateSetting(ctx, e.Key, e.Input); err != nil {
			return err
		}
		x.reply(ctx, ev, e.Reply, AdminSettingsKeyboard(), false)
	case AddAdmin:
		if err := x.catalog.AddAdmin(ctx, e.ID); err != nil {
			return err
		}
		return x.show(ctx, ev, Show{View: ViewAdmins, Prefix: "Admin qo'shildi.\n\n", Keyboard: AdminAdminsKeyboard()})
	case RemoveAdmin:
		err := x.catalog.RemoveAdmin(ctx, e.ID)
		var protected *catalog.ProtectedAdminError
		if errors.As(err, &protected) {
			x.reply(ctx, ev, protected.Name+" ni o'chirib bo'lmaydi.", AdminAdminsKeyboard(), false)
			return nil
		}
		return x.removal(ctx, ev, err, "Admin topilmadi.",
			Show{View: ViewAdmins, Prefix: "Admin o'chirildi.\n\n", Keyboard: AdminAdminsKeyboard()})
	case SaveMenu:
		created, err := x.catalog.SaveMenu(ctx, e.Name, e.Text)
		if err != nil {
			return err
		}
		status := "Menyu yangilandi."
		if created {
			status = "Menyu qo'shildi."
		}
		return x.show(ctx, ev, Show{View: ViewMenus, Prefix: status + "\n\n", Keyboard: AdminMenusKeyboard()})
	case RemoveMenu:
		return x.removal(ctx, ev, x.catalog.RemoveMenu(ctx, e.ID), "Menyu topilmadi.",
			Show{View: ViewMenus, Prefix: "Menyu o'chirildi.\n\n", Keyboard: AdminMenusKeyboard()})
	default:
		return fmt.Errorf("неизвестный эффект %T", effect)
	}
	return nil
}

func wrap(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (x *Executor) reply(ctx context.Context, ev Event, text string, kb *domain.Keyboard, plain bool) {
	_, err := x.messenger.SendText(ctx, domain.ChatID(ev.ChatID), text, domain.SendOptions{Keyboard: kb, PlainText: plain})
	if err != nil {
		x.log.Warn().Err(err).Int64("chat", ev.ChatID).Msg("conversation: не удалось отправить ответ")
	}
}

func (x *Executor) answer(ctx context.Context, ev Event, text string, alert bool) {
	if ev.CallbackID == "" {
		return
	}
	if err := x.messenger.AnswerCallback(ctx, ev.CallbackID, text, alert); err != nil {
		x.log.Debug().Err(err).Msg("conversation: ответ на callback не доставлен")
	}
}

func (x *Executor) clearMarkup(ctx context.Context, ev Event) {
	if ev.MessageID == 0 {
		return
	}
	if err := x.messenger.ClearKeyboard(ctx, ev.ChatID, ev.MessageID); err != nil {
		x.log.Debug().Err(err).Msg("conversation: клавиатура не снята")
	}
}

// relay списывает кредит до пересылки и возвращает его, если ни один получатель не получил сообщение.
func (x *Executor) relay(ctx context.Context, ev Event, snap Snapshot) error {
	lang := snap.Lang()
	menu := userMenu(snap)
	userID := ev.From.ID

	if err := x.ledger.Consume(ctx, userID); err != nil {
		if !errors.Is(err, domain.ErrInsufficientCredit) {
			x.log.Error().Err(err).Int64("user", userID).Msg("conversation: списание кредита не выполнено")
		}
		x.reply(ctx, ev, i18n.T(lang, i18n.KeySendErrorRestart, nil), menu, false)
		return nil
	}

	sent, err := x.bridge.Relay(ctx, ev.From, ev.ChatID, ev.MessageID)
	if err != nil || sent == 0 {
		if err != nil {
			x.log.Error().Err(err).Int64("user", userID).Msg("conversation: пересылка не выполнена")
		}
		if err := x.ledger.Refund(ctx, userID); err != nil {
			return err
		}
		x.reply(ctx, ev, i18n.T(lang, i18n.KeyAdminSendFailed, nil), menu, false)
		return nil
	}

	remaining, err := x.ledger.Balance(ctx, userID)
	if err != nil {
		return fmt.Errorf("получение баланса: %w", err)
	}
	if remaining > 0 {
		x.reply(ctx, ev, i18n.T(lang, i18n.KeyMsgSentRemaining, i18n.Args{"remaining": remaining}), menu, false)
		return nil
	}
	x.reply(ctx, ev, i18n.T(lang, i18n.KeyMsgSentPayAgain, nil), menu, false)
	x.reply(ctx, ev, PaymentText(lang, snap.Card), menu, false)
	return nil
}

func (x *Executor) submitReceipt(ctx context.Context, ev Event, snap Snapshot, e SubmitReceipt) error {
	id, err := x.ledger.SubmitPayment(ctx, ev.From.ID, e.Receipt, e.Caption)
	if err != nil {
		return err
	}
	payment, err := x.ledger.Payment(ctx, id)
	if err != nil {
		return fmt.Errorf("получение платежа: %w", err)
	}
	if sent, err := x.bridge.SubmitReceipt(ctx, ev.From, payment); err != nil || sent == 0 {
		x.log.Warn().Err(err).Int64("payment", id).Int("sent", sent).Msg("conversation: чек не доставлен ни одному администратору")
	}
	x.reply(ctx, ev, i18n.T(snap.Lang(), i18n.KeyReceiptAccepted, i18n.Args{"payment_id": id}), userMenu(snap), false)
	return nil
}

func (x *Executor) countNoPayment(ctx context.Context, ev Event, snap Snapshot) error {
	attempts, err := x.users.IncrementNoPayment(ctx, ev.From.ID)
	if err != nil {
		return fmt.Errorf("учёт сообщения без оплаты: %w", err)
	}
	if attempts >= snap.Settings.SuspiciousThreshold {
		if err := x.users.ResetNoPayment(ctx, ev.From.ID); err != nil {
			return fmt.Errorf("сброс счётчика: %w", err)
		}
		x.bridge.AlertSuspicious(ctx, ev.From, attempts)
	}
	x.reply(ctx, ev, PaymentText(snap.Lang(), snap.Card), userMenu(snap), false)
	return nil
}

func (x *Executor) resolvePayment(ctx context.Context, ev Event, e ResolvePayment) error {
	payment, err := x.bridge.Decide(ctx, ev.From.ID, e.PaymentID, e.Approve)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		x.answer(ctx, ev, "Payment topilmadi", true)
		return nil
	case errors.Is(err, domain.ErrPaymentResolved):
		x.answer(ctx, ev, "Bu payment allaqachon ko'rilgan", true)
		return nil
	case err != nil:
		return err
	}

	x.notifyDecision(ctx, payment)
	if e.Approve {
		x.answer(ctx, ev, "Tasdiqlandi", false)
	} else {
		x.answer(ctx, ev, "Rad etildi", false)
	}
	x.clearMarkup(ctx, ev)
	x.reply(ctx, ev, fmt.Sprintf("Payment <code>%d</code> holati: <b>%s</b>", payment.ID, payment.Status), nil, false)
	return nil
}

// notifyDecision сообщает пользователю о решении на его языке. Ошибки только логируются.
func (x *Executor) notifyDecision(ctx context.Context, payment domain.Payment) {
	var lang domain.Language
	if user, err := x.users.GetUser(ctx, payment.UserID); err == nil {
		lang = user.Language
	}
	lang = lang.OrDefault()
	menus, err := x.catalog.Menus(ctx)
	if err != nil {
		x.log.Warn().Err(err).Msg("conversation: меню недоступны")
	}
	key := i18n.KeyPaymentRejected
	if payment.Status == domain.PaymentApproved {
		key = i18n.KeyPaymentApproved
	}
	_, err = x.messenger.SendText(ctx, domain.ChatID(payment.UserID), i18n.T(lang, key, nil), domain.SendOptions{Keyboard: UserMenu(lang, menus)})
	if err != nil {
		x.log.Info().Err(err).Int64("user", payment.UserID).Int64("payment", payment.ID).Msg("conversation: пользователь не получил решение по платежу")
	}
}

func (x *Executor) replyToUser(ctx context.Context, ev Event) error {
	ok, err := x.bridge.ReplyToUser(ctx, ev.ChatID, ev.QuotedMessageID, ev.MessageID)
	if err != nil {
		if domain.IsDeliveryError(err) {
			x.reply(ctx, ev, "Xabar foydalanuvchiga yetkazilmadi.", nil, false)
			return nil
		}
		return err
	}
	if !ok {
		x.log.Debug().Int64("chat", ev.ChatID).Int("quoted", ev.QuotedMessageID).Msg("conversation: цитата не связана с пользователем")
	}
	return nil
}

// show выводит свежий список раздела админ-панели.
func (x *Executor) show(ctx context.Context, ev Event, e Show) error {
	var body string
	switch e.View {
	case ViewStats:
		stats, err := x.catalog.Stats(ctx)
		if err != nil {
			return err
		}
		body = catalog.FormatStats(stats)
	case ViewChannels:
		channels, err := x.catalog.Channels(ctx)
		if err != nil {
			return fmt.Errorf("получение каналов: %w", err)
		}
		body = catalog.FormatChannels(channels)
	case ViewCards:
		cards, err := x.catalog.Cards(ctx)
		if err != nil {
			return fmt.Errorf("получение карт: %w", err)
		}
		body = catalog.FormatCards(cards)
	case ViewSettings:
		settings, err := x.catalog.Settings(ctx)
		if err != nil {
			return err
		}
		body = catalog.FormatSettings(settings)
	case ViewAdmins:
		admins, err := x.catalog.Admins(ctx)
		if err != nil {
			return err
		}
		body = catalog.FormatAdmins(admins)
	case ViewMenus:
		menus, err := x.catalog.Menus(ctx)
		if err != nil {
			return fmt.Errorf("получение меню: %w", err)
		}
		body = catalog.FormatMenus(menus)
	default:
		return fmt.Errorf("неизвестный раздел %d", e.View)
	}
	x.reply(ctx, ev, e.Prefix+body+e.Suffix, e.Keyboard, false)
	return nil
}

// removal отвечает на изменение записи по ID: список при успехе, текст при отсутствии записи.
func (x *Executor) removal(ctx context.Context, ev Event, err error, notFound string, success Show) error {
	if catalog.IsNotFound(err) {
		x.reply(ctx, ev, notFound, success.Keyboard, false)
		return nil
	}
	if err != nil {
		return err
	}
	return x.show(ctx, ev, success)
}
