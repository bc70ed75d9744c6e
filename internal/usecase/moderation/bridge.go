// Package moderation связывает пользователей с администраторами:
// пересылка сообщений, рассылка чеков, решения по платежам и ответы.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
	"tg-gate-bot/internal/infra/metrics"
)

// AdminDirectory возвращает получателей админских уведомлений.
type AdminDirectory interface {
	Admins(ctx context.Context) ([]int64, error)
}

// SettingsSource возвращает текущие настройки.
type SettingsSource interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// PaymentResolver применяет решение по платежу ровно один раз.
type PaymentResolver interface {
	Resolve(ctx context.Context, paymentID int64, approve bool, adminID int64) (domain.Payment, error)
}

// Bridge — мост между пользователями и администраторами.
type Bridge struct {
	messenger domain.Messenger
	links     domain.LinkRepo
	users     domain.UserRepo
	admins    AdminDirectory
	settings  SettingsSource
	payments  PaymentResolver
	log       zerolog.Logger
}

// NewBridge создаёт мост модерации.
func NewBridge(messenger domain.Messenger, links domain.LinkRepo, users domain.UserRepo, admins AdminDirectory, settings SettingsSource, payments PaymentResolver, logger zerolog.Logger) *Bridge {
	return &Bridge{
		messenger: messenger,
		links:     links,
		users:     users,
		admins:    admins,
		settings:  settings,
		payments:  payments,
		log:       logger,
	}
}

// inboxOrAdmins возвращает чат для входящих, если он задан, иначе всех администраторов.
func (b *Bridge) inboxOrAdmins(ctx context.Context) ([]domain.ChatRef, error) {
	settings, err := b.settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if inbox, ok := settings.InboxTarget(); ok {
		return []domain.ChatRef{inbox}, nil
	}
	return b.adminTargets(ctx)
}

func (b *Bridge) adminTargets(ctx context.Context) ([]domain.ChatRef, error) {
	ids, err := b.admins.Admins(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]domain.ChatRef, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, domain.ChatID(id))
	}
	return targets, nil
}

// Relay отправляет заголовок и копию сообщения пользователя каждому получателю.
// Возвращает число получателей, которым доставлена копия.
func (b *Bridge) Relay(ctx context.Context, sender domain.TelegramProfile, chatID int64, messageID int) (int, error) {
	targets, err := b.inboxOrAdmins(ctx)
	if err != nil {
		return 0, fmt.Errorf("получатели пересылки: %w", err)
	}
	header := RelayHeader(sender)
	sent := 0
	for _, target := range targets {
		if _, err := b.messenger.SendText(ctx, target, header, domain.SendOptions{}); err != nil {
			b.deliveryFailed(err, target, "relay_header")
			continue
		}
		copied, err := b.messenger.CopyMessage(ctx, target, chatID, messageID, 0)
		if err != nil {
			b.deliveryFailed(err, target, "relay_copy")
			continue
		}
		sent++
		adminChat, err := strconv.ParseInt(string(target), 10, 64)
		if err != nil {
			continue
		}
		link := domain.MessageLink{UserID: sender.ID, UserMessageID: messageID, AdminChatID: adminChat, AdminMessageID: copied}
		if err := b.links.SaveLink(ctx, link); err != nil {
			b.log.Error().Err(err).Int64("user", sender.ID).Str("target", string(target)).Msg("moderation: не удалось сохранить связь сообщения")
		}
	}
	result := "delivered"
	if sent == 0 {
		result = "failed"
	}
	metrics.RelayTotal.WithLabelValues(result).Inc()
	return sent, nil
}

// SubmitReceipt рассылает чек с кнопками решения. Возвращает число доставок.
func (b *Bridge) SubmitReceipt(ctx context.Context, sender domain.TelegramProfile, payment domain.Payment) (int, error) {
	targets, err := b.inboxOrAdmins(ctx)
	if err != nil {
		return 0, fmt.Errorf("получатели чека: %w", err)
	}
	caption := ReceiptCaption(sender, payment)
	keyboard := ReviewKeyboard(payment.ID)
	sent := 0
	for _, target := range targets {
		if _, err := b.messenger.SendReceipt(ctx, target, payment.Receipt, caption, domain.SendOptions{Keyboard: keyboard}); err != nil {
			b.deliveryFailed(err, target, "receipt")
			continue
		}
		sent++
	}
	return sent, nil
}

// Decide применяет решение администратора. При одобрении обнуляет счётчик попыток без оплаты.
// Поздний вызов получает domain.ErrPaymentResolved.
func (b *Bridge) Decide(ctx context.Context, adminID, paymentID int64, approve bool) (domain.Payment, error) {
	payment, err := b.payments.Resolve(ctx, paymentID, approve, adminID)
	if err != nil {
		return payment, err
	}
	if approve {
		if err := b.users.ResetNoPayment(ctx, payment.UserID); err != nil {
			b.log.Error().Err(err).Int64("user", payment.UserID).Msg("moderation: не удалось обнулить счётчик попыток")
		}
	}
	b.log.Info().Int64("payment", paymentID).Int64("admin", adminID).Str("status", string(payment.Status)).Msg("moderation: решение по платежу")
	return payment, nil
}

// AlertSuspicious предупреждает администраторов о повторных сообщениях без оплаты.
func (b *Bridge) AlertSuspicious(ctx context.Context, sender domain.TelegramProfile, attempts int) int {
	return b.NotifyAdmins(ctx, SuspiciousAlert(sender, attempts))
}

// NotifyAdmins отправляет текст каждому администратору. Возвращает число доставок.
func (b *Bridge) NotifyAdmins(ctx context.Context, text string) int {
	targets, err := b.adminTargets(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("moderation: не удалось получить администраторов")
		return 0
	}
	sent := 0
	for _, target := range targets {
		if _, err := b.messenger.SendText(ctx, target, text, domain.SendOptions{}); err != nil {
			b.deliveryFailed(err, target, "notify")
			continue
		}
		sent++
	}
	return sent
}

// ReplyToUser копирует ответ администратора пользователю, чьё сообщение он процитировал.
// Возвращает false, если цитата не связана ни с одним пользователем.
func (b *Bridge) ReplyToUser(ctx context.Context, adminChatID int64, quotedMessageID, messageID int) (bool, error) {
	link, err := b.links.FindLink(ctx, adminChatID, quotedMessageID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("поиск связи: %w", err)
	}
	if _, err := b.messenger.CopyMessage(ctx, domain.ChatID(link.UserID), adminChatID, messageID, link.UserMessageID); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bridge) deliveryFailed(err error, target domain.ChatRef, op string) {
	event := b.log.Warn()
	if domain.IsDeliveryError(err) {
		event = b.log.Debug()
	}
	event.Err(err).Str("target", string(target)).Str("op", op).Msg("moderation: получатель пропущен")
}

func handle(p domain.TelegramProfile) string {
	return i18n.Escape(p.Handle())
}

// RelayHeader — заголовок перед копией сообщения пользователя.
func RelayHeader(p domain.TelegramProfile) string {
	return fmt.Sprintf("Yangi user xabari.\nUser ID: <code>%d</code>\nUser: %s\nUsername: %s\n\nYangi xabar:",
		p.ID, i18n.Escape(p.DisplayName()), handle(p))
}

// ReceiptCaption — подпись чека для администраторов.
func ReceiptCaption(p domain.TelegramProfile, payment domain.Payment) string {
	caption := strings.TrimSpace(payment.Caption)
	if caption == "" {
		caption = "-"
	}
	return fmt.Sprintf("Yangi to'lov cheki\n\nPayment ID: <code>%d</code>\nUser ID: <code>%d</code>\nUser: %s\nUsername: %s\nCaption: %s",
		payment.ID, p.ID, i18n.Escape(p.DisplayName()), handle(p), i18n.Escape(caption))
}

// SuspiciousAlert — предупреждение о попытках без оплаты.
func SuspiciousAlert(p domain.TelegramProfile, attempts int) string {
	return fmt.Sprintf("Shubhali holat kuzatildi.\n\nUser ID: <code>%d</code>\nUser: %s\nUsername: %s\nTo'lovsiz urinishlar: %d",
		p.ID, i18n.Escape(p.DisplayName()), handle(p), attempts)
}
