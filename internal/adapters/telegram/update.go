package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/usecase/conversation"
)

// Profile извлекает данные отправителя.
func Profile(u *tgbotapi.User) domain.TelegramProfile {
	return domain.TelegramProfile{ID: u.ID, Username: u.UserName, FirstName: u.FirstName, LastName: u.LastName}
}

// EventFromUpdate превращает апдейт в событие диалога.
// Апдейты без отправителя и прочие типы пропускаются.
func EventFromUpdate(upd tgbotapi.Update) (conversation.Event, bool) {
	switch {
	case upd.Message != nil:
		return eventFromMessage(upd.Message)
	case upd.CallbackQuery != nil:
		return eventFromCallback(upd.CallbackQuery)
	}
	return conversation.Event{}, false
}

func eventFromMessage(msg *tgbotapi.Message) (conversation.Event, bool) {
	if msg.From == nil || msg.Chat == nil {
		return conversation.Event{}, false
	}
	ev := conversation.Event{
		Kind:      conversation.EventMessage,
		From:      Profile(msg.From),
		ChatID:    msg.Chat.ID,
		Private:   msg.Chat.IsPrivate(),
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Caption:   msg.Caption,
		Command:   msg.Command(),
	}
	if msg.Contact != nil {
		ev.Contact = &conversation.Contact{UserID: msg.Contact.UserID, Phone: msg.Contact.PhoneNumber}
	}
	switch {
	case len(msg.Photo) > 0:
		ev.Receipt = &domain.Receipt{Kind: domain.ReceiptPhoto, FileID: largestPhoto(msg.Photo).FileID}
	case msg.Document != nil:
		ev.Receipt = &domain.Receipt{Kind: domain.ReceiptDocument, FileID: msg.Document.FileID}
	}
	if msg.ReplyToMessage != nil {
		ev.QuotedMessageID = msg.ReplyToMessage.MessageID
	}
	return ev, true
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, size := range sizes[1:] {
		if size.Width*size.Height >= best.Width*best.Height {
			best = size
		}
	}
	return best
}

func eventFromCallback(cb *tgbotapi.CallbackQuery) (conversation.Event, bool) {
	if cb.From == nil {
		return conversation.Event{}, false
	}
	ev := conversation.Event{
		Kind:         conversation.EventCallback,
		From:         Profile(cb.From),
		ChatID:       cb.From.ID,
		Private:      true,
		CallbackID:   cb.ID,
		CallbackData: cb.Data,
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		ev.ChatID = cb.Message.Chat.ID
		ev.Private = cb.Message.Chat.IsPrivate()
		ev.MessageID = cb.Message.MessageID
	}
	return ev, true
}

// Kind возвращает тип апдейта для метрик.
func Kind(upd tgbotapi.Update) string {
	switch {
	case upd.Message != nil:
		return "message"
	case upd.CallbackQuery != nil:
		return "callback"
	}
	return "other"
}

// SenderID возвращает ID отправителя апдейта или 0.
func SenderID(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return upd.Message.From.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID
	}
	return 0
}
