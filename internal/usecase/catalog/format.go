package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
)

const notSet = "(kiritilmagan)"

// FormatChannels выводит список обязательных каналов.
func FormatChannels(channels []domain.Channel) string {
	if len(channels) == 0 {
		return "Majburiy kanal yo'q."
	}
	lines := []string{"Majburiy kanallar:"}
	for _, ch := range channels {
		item := fmt.Sprintf("%d. %s", ch.ID, i18n.Escape(ch.ChatRef))
		if ch.Title != "" {
			item += fmt.Sprintf(" (%s)", i18n.Escape(ch.Title))
		}
		if ch.JoinURL != "" {
			item += "\nURL: " + i18n.Escape(ch.JoinURL)
		}
		lines = append(lines, item)
	}
	return strings.Join(lines, "\n")
}

// FormatCards выводит карты с отметкой активной.
func FormatCards(cards []domain.Card) string {
	if len(cards) == 0 {
		return "Kartalar yo'q."
	}
	lines := []string{"Kartalar:"}
	for _, card := range cards {
		marker := ""
		if card.Active {
			marker = " [AKTIV]"
		}
		lines = append(lines, fmt.Sprintf("%d. %s | <code>%s</code>%s", card.ID, i18n.Escape(card.OwnerName), i18n.Escape(card.Number), marker))
	}
	return strings.Join(lines, "\n")
}

// FormatAdmins выводит ID администраторов.
func FormatAdmins(ids []int64) string {
	if len(ids) == 0 {
		return "Adminlar yo'q."
	}
	lines := []string{"Adminlar ro'yxati:"}
	for _, id := range ids {
		lines = append(lines, strconv.FormatInt(id, 10))
	}
	return strings.Join(lines, "\n")
}

// FormatMenus выводит пользовательские меню с ответами.
func FormatMenus(menus []domain.CustomMenu) string {
	if len(menus) == 0 {
		return "Menyular yo'q."
	}
	blocks := []string{"Menyular ro'yxati:"}
	for _, menu := range menus {
		blocks = append(blocks, fmt.Sprintf("%d. %s\nJavob: %s", menu.ID, i18n.Escape(menu.ButtonText), i18n.Escape(menu.ResponseText)))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatSettings выводит текущие настройки.
func FormatSettings(s domain.Settings) string {
	instagram := s.InstagramURL
	if instagram == "" {
		instagram = notSet
	}
	inbox := s.InboxChatID
	if inbox == "" {
		inbox = notSet
	}
	return fmt.Sprintf("Sozlamalar:\nInstagram URL: %s\nShubhali urinish limiti: %d\nQabul chat ID: %s",
		i18n.Escape(instagram), s.SuspiciousThreshold, i18n.Escape(inbox))
}

// FormatStats выводит статистику.
func FormatStats(s domain.Stats) string {
	return fmt.Sprintf("Statistika:\nUsers: %d\nYuborilgan xabarlar: %d\nTo'lov pending: %d\nTo'lov approved: %d\nTo'lov rejected: %d",
		s.Users, s.Messages, s.Payments.Pending, s.Payments.Approved, s.Payments.Rejected)
}
