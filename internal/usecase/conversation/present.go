package conversation

import (
	"strings"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
)

// GatingText перечисляет неподписанные каналы. withHint добавляет подсказку о кнопке проверки.
func GatingText(lang domain.Language, missing []domain.Channel, withHint bool) string {
	refs := make([]string, 0, len(missing))
	for _, ch := range missing {
		refs = append(refs, ch.ChatRef)
	}
	text := i18n.T(lang, i18n.KeySubRequired, nil) + "\n" +
		i18n.T(lang, i18n.KeySubMissing, i18n.Args{"channels": i18n.Escape(strings.Join(refs, ", "))})
	if withHint {
		text += "\n\n" + i18n.T(lang, i18n.KeySubCheckBtn, nil)
	}
	return text
}

// PaymentText показывает реквизиты активной карты.
func PaymentText(lang domain.Language, card *domain.Card) string {
	if card == nil {
		return i18n.T(lang, i18n.KeyCardNotSet, nil)
	}
	return i18n.T(lang, i18n.KeyPaymentPrompt, i18n.Args{
		"owner": i18n.Escape(card.OwnerName),
		"card":  i18n.Escape(card.Number),
	})
}

// ProfileText выводит регистрационные данные пользователя.
func ProfileText(lang domain.Language, u domain.User) string {
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return i18n.Escape(v)
	}
	return i18n.T(lang, i18n.KeyProfileText, i18n.Args{
		"first_name": orDash(u.FirstName),
		"last_name":  orDash(u.LastName),
		"phone":      orDash(u.Phone),
		"birth_date": orDash(u.BirthDate),
	})
}

// readyText — сообщение готового пользователя: остаток кредитов, ожидание проверки или реквизиты.
func readyText(snap Snapshot) string {
	lang := snap.Lang()
	switch {
	case snap.Balance > 0:
		return i18n.T(lang, i18n.KeyReadyWithCredits, i18n.Args{"credits": snap.Balance})
	case snap.Pending:
		return i18n.T(lang, i18n.KeyReceiptPending, nil)
	default:
		return PaymentText(lang, snap.Card)
	}
}

func userMenu(snap Snapshot) *domain.Keyboard {
	return UserMenu(snap.Lang(), snap.Menus)
}
