package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-gate-bot/internal/domain"
)

// RenderKeyboard превращает описание клавиатуры в разметку Bot API.
func RenderKeyboard(kb *domain.Keyboard) any {
	if kb == nil {
		return nil
	}
	switch kb.Kind {
	case domain.KeyboardInline:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				if b.URL != "" {
					buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
					continue
				}
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	case domain.KeyboardReply:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, b := range row {
				if b.RequestContact {
					buttons = append(buttons, tgbotapi.NewKeyboardButtonContact(b.Text))
					continue
				}
				buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
			}
			rows = append(rows, buttons)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.OneTimeKeyboard = kb.OneTime
		return markup
	case domain.KeyboardRemove:
		return tgbotapi.NewRemoveKeyboard(true)
	}
	return nil
}
