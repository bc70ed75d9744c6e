// Package telegram реализует транспорт мессенджера поверх Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

const component = "telegram_bot"

// Messenger отправляет сообщения и проверяет подписки через Bot API.
type Messenger struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

var (
	_ domain.Messenger        = (*Messenger)(nil)
	_ domain.MembershipOracle = (*Messenger)(nil)
)

// NewMessenger создаёт транспорт.
func NewMessenger(bot *tgbotapi.BotAPI, logger zerolog.Logger) *Messenger {
	return &Messenger{bot: bot, log: logger}
}

// baseChat адресует чат по числовому ID или @username.
func baseChat(to domain.ChatRef) (tgbotapi.BaseChat, error) {
	ref := strings.TrimSpace(string(to))
	if strings.HasPrefix(ref, "@") && len(ref) > 1 {
		return tgbotapi.BaseChat{ChannelUsername: ref}, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return tgbotapi.BaseChat{}, fmt.Errorf("%w: адрес чата %q", domain.ErrBadRequest, ref)
	}
	return tgbotapi.BaseChat{ChatID: id}, nil
}

func applyOptions(base *tgbotapi.BaseChat, opts domain.SendOptions) {
	if opts.Keyboard != nil {
		base.ReplyMarkup = RenderKeyboard(opts.Keyboard)
	}
	if opts.ReplyTo != 0 {
		base.ReplyToMessageID = opts.ReplyTo
		base.AllowSendingWithoutReply = true
	}
}

func parseMode(plain bool) string {
	if plain {
		return ""
	}
	return tgbotapi.ModeHTML
}

// SendText отправляет текст, разбивая его на части по лимиту. Ответ привязывается
// к первой части, клавиатура к последней. Возвращает ID последнего сообщения.
func (m *Messenger) SendText(_ context.Context, to domain.ChatRef, text string, opts domain.SendOptions) (int, error) {
	base, err := baseChat(to)
	if err != nil {
		return 0, err
	}
	parts := SplitMessage(text)
	if len(parts) == 0 {
		return 0, fmt.Errorf("%w: пустой текст", domain.ErrBadRequest)
	}
	var last int
	for i, part := range parts {
		chat := base
		if i == 0 && opts.ReplyTo != 0 {
			chat.ReplyToMessageID = opts.ReplyTo
			chat.AllowSendingWithoutReply = true
		}
		if i == len(parts)-1 && opts.Keyboard != nil {
			chat.ReplyMarkup = RenderKeyboard(opts.Keyboard)
		}
		msg := tgbotapi.MessageConfig{BaseChat: chat, Text: part, ParseMode: parseMode(opts.PlainText)}
		sent, err := m.send("send_message", to, msg)
		if err != nil {
			return 0, err
		}
		last = sent.MessageID
	}
	return last, nil
}

// SendReceipt пересылает фото или документ чека по file_id.
func (m *Messenger) SendReceipt(_ context.Context, to domain.ChatRef, receipt domain.Receipt, caption string, opts domain.SendOptions) (int, error) {
	base, err := baseChat(to)
	if err != nil {
		return 0, err
	}
	applyOptions(&base, opts)
	file := tgbotapi.BaseFile{BaseChat: base, File: tgbotapi.FileID(receipt.FileID)}
	mode := parseMode(opts.PlainText)

	var cfg tgbotapi.Chattable
	switch receipt.Kind {
	case domain.ReceiptPhoto:
		cfg = tgbotapi.PhotoConfig{BaseFile: file, Caption: fitCaption(caption), ParseMode: mode}
	case domain.ReceiptDocument:
		cfg = tgbotapi.DocumentConfig{BaseFile: file, Caption: fitCaption(caption), ParseMode: mode}
	default:
		return 0, fmt.Errorf("%w: тип чека %q", domain.ErrBadRequest, receipt.Kind)
	}
	sent, err := m.send("send_receipt", to, cfg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// CopyMessage копирует сообщение без подписи «переслано».
func (m *Messenger) CopyMessage(_ context.Context, to domain.ChatRef, fromChatID int64, messageID, replyTo int) (int, error) {
	base, err := baseChat(to)
	if err != nil {
		return 0, err
	}
	applyOptions(&base, domain.SendOptions{ReplyTo: replyTo})
	start := time.Now()
	copied, err := m.bot.CopyMessage(tgbotapi.CopyMessageConfig{BaseChat: base, FromChatID: fromChatID, MessageID: messageID})
	err = m.observe("copy_message", to, start, err)
	if err != nil {
		return 0, err
	}
	return copied.MessageID, nil
}

// ClearKeyboard снимает inline-клавиатуру с сообщения.
func (m *Messenger) ClearKeyboard(_ context.Context, chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	return m.request("edit_markup", domain.ChatID(chatID), edit)
}

// AnswerCallback отвечает на нажатие inline-кнопки.
func (m *Messenger) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	return m.request("answer_callback", "callback", tgbotapi.CallbackConfig{CallbackQueryID: callbackID, Text: text, ShowAlert: alert})
}

// ChatTitle возвращает название чата.
func (m *Messenger) ChatTitle(_ context.Context, ref domain.ChatRef) (string, error) {
	cfg, err := chatConfig(ref)
	if err != nil {
		return "", err
	}
	start := time.Now()
	chat, err := m.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: cfg})
	if err = m.observe("get_chat", ref, start, err); err != nil {
		return "", err
	}
	return chat.Title, nil
}

// MemberStatus возвращает статус пользователя в канале.
func (m *Messenger) MemberStatus(_ context.Context, chat domain.ChatRef, userID int64) (domain.MemberStatus, error) {
	cfg, err := chatConfig(chat)
	if err != nil {
		return "", err
	}
	start := time.Now()
	member, err := m.bot.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
		ChatID:             cfg.ChatID,
		SuperGroupUsername: cfg.SuperGroupUsername,
		UserID:             userID,
	}})
	if err = m.observe("get_chat_member", chat, start, err); err != nil {
		return "", err
	}
	return domain.MemberStatus(member.Status), nil
}

func chatConfig(ref domain.ChatRef) (tgbotapi.ChatConfig, error) {
	base, err := baseChat(ref)
	if err != nil {
		return tgbotapi.ChatConfig{}, err
	}
	return tgbotapi.ChatConfig{ChatID: base.ChatID, SuperGroupUsername: base.ChannelUsername}, nil
}

func (m *Messenger) send(op string, to domain.ChatRef, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	start := time.Now()
	msg, err := m.bot.Send(c)
	if err = m.observe(op, to, start, err); err != nil {
		metrics.BotSendErrors.Inc()
		return tgbotapi.Message{}, err
	}
	return msg, nil
}

func (m *Messenger) request(op string, to domain.ChatRef, c tgbotapi.Chattable) error {
	start := time.Now()
	_, err := m.bot.Request(c)
	return m.observe(op, to, start, err)
}

func (m *Messenger) observe(op string, to domain.ChatRef, start time.Time, err error) error {
	metrics.ObserveNetworkRequest(component, op, string(to), start, err)
	if err == nil {
		return nil
	}
	classified := Classify(err)
	if !domain.IsDeliveryError(classified) {
		m.log.Warn().Err(err).Str("op", op).Str("chat", string(to)).Msg("telegram: запрос не выполнен")
	}
	return classified
}

// Classify приводит ошибку Bot API к ErrRecipientUnreachable или ErrBadRequest.
// Сетевые и серверные ошибки возвращаются как есть.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	description := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == 403,
		strings.Contains(description, "chat not found"),
		strings.Contains(description, "user is deactivated"),
		strings.Contains(description, "bot was blocked"):
		return fmt.Errorf("%w: %s", domain.ErrRecipientUnreachable, apiErr.Message)
	case apiErr.Code == 400:
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, apiErr.Message)
	}
	return err
}
