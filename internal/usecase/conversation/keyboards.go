package conversation

import (
	"fmt"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
)

// Callback-данные пользовательских кнопок.
const (
	CallbackCheckSubs    = "user:check_subs"
	CallbackLangPrefix   = "user:lang:"
	CallbackEditPrefix   = "user:profile:edit:"
	CallbackProfileClose = "user:profile:close"
	callbackUserPrefix   = "user:"
)

var languageTitles = map[domain.Language]string{
	domain.LangLotin: "Lotin",
	domain.LangKril:  "Kril",
	domain.LangRuss:  "Russ",
}

// LanguageKeyboard — выбор языка в один ряд.
func LanguageKeyboard() *domain.Keyboard {
	row := make([]domain.Button, 0, len(domain.Languages))
	for _, lang := range domain.Languages {
		row = append(row, domain.Button{Text: languageTitles[lang], Data: CallbackLangPrefix + string(lang)})
	}
	return domain.InlineKeyboard(row)
}

// GatingKeyboard — ссылки на неподписанные каналы, Instagram и кнопка перепроверки.
func GatingKeyboard(missing []domain.Channel, instagramURL string, lang domain.Language) *domain.Keyboard {
	var rows [][]domain.Button
	for i, ch := range missing {
		link := ch.Link()
		if link == "" {
			continue
		}
		rows = append(rows, domain.Row(domain.Button{Text: fmt.Sprintf("Kanal %d", i+1), URL: link}))
	}
	if instagramURL != "" {
		rows = append(rows, domain.Row(domain.Button{Text: "Instagram", URL: instagramURL}))
	}
	rows = append(rows, domain.Row(domain.Button{Text: i18n.T(lang, i18n.KeySubCheckBtn, nil), Data: CallbackCheckSubs}))
	return domain.InlineKeyboard(rows...)
}

// UserMenu — постоянное меню пользователя: профиль, удаление и пользовательские меню.
func UserMenu(lang domain.Language, menus []domain.CustomMenu) *domain.Keyboard {
	rows := [][]domain.Button{domain.Row(
		domain.Button{Text: i18n.T(lang, i18n.KeyMenuProfileBtn, nil)},
		domain.Button{Text: i18n.T(lang, i18n.KeyMenuDeleteBtn, nil)},
	)}
	for _, menu := range menus {
		rows = append(rows, domain.Row(domain.Button{Text: menu.ButtonText}))
	}
	return domain.ReplyKeyboard(rows...)
}

// ProfileKeyboard — действия с профилем, по одной кнопке в ряд.
func ProfileKeyboard(lang domain.Language) *domain.Keyboard {
	button := func(key i18n.Key, data string) []domain.Button {
		return domain.Row(domain.Button{Text: i18n.T(lang, key, nil), Data: data})
	}
	return domain.InlineKeyboard(
		button(i18n.KeyProfileEditFirstBtn, CallbackEditPrefix+string(domain.ProfileFirstName)),
		button(i18n.KeyProfileEditLastBtn, CallbackEditPrefix+string(domain.ProfileLastName)),
		button(i18n.KeyProfileEditPhoneBtn, CallbackEditPrefix+string(domain.ProfilePhone)),
		button(i18n.KeyProfileEditBirthBtn, CallbackEditPrefix+string(domain.ProfileBirthDate)),
		button(i18n.KeyProfileCloseBtn, CallbackProfileClose),
	)
}

// PhoneKeyboard — одноразовая кнопка отправки своего контакта.
func PhoneKeyboard(lang domain.Language) *domain.Keyboard {
	kb := domain.ReplyKeyboard(domain.Row(domain.Button{Text: i18n.T(lang, i18n.KeyRegPhoneButton, nil), RequestContact: true}))
	kb.OneTime = true
	return kb
}

// Кнопки админ-панели.
const (
	BtnAdminPanel = "Admin panel"

	BtnStats    = "Statistika"
	BtnChannels = "Kanallar"
	BtnCards    = "Kartalar"
	BtnSettings = "Sozlamalar"
	BtnAdmins   = "Adminlar"
	BtnMenus    = "Menyular"
	BtnBack     = "Orqaga"
	BtnExit     = "Paneldan chiqish"

	BtnChannelAdd    = "Kanal qo'shish"
	BtnChannelRemove = "Kanal o'chirish"
	BtnChannelList   = "Kanallar ro'yxati"

	BtnCardAdd      = "Karta qo'shish"
	BtnCardActivate = "Aktiv karta tanlash"
	BtnCardRemove   = "Karta o'chirish"
	BtnCardList     = "Kartalar ro'yxati"

	BtnSettingInstagram = "Instagram link"
	BtnSettingThreshold = "Shubhali limit"
	BtnSettingInbox     = "Qabul chat ID"
	BtnSettingList      = "Sozlamalar holati"

	BtnAdminAdd    = "Admin qo'shish"
	BtnAdminRemove = "Admin o'chirish"
	BtnAdminList   = "Adminlar ro'yxati"

	BtnMenuAdd    = "Menyu qo'shish"
	BtnMenuRemove = "Menyu o'chirish"
	BtnMenuList   = "Menyular ro'yxati"
)

func replyRows(rows ...[]string) *domain.Keyboard {
	out := make([][]domain.Button, 0, len(rows))
	for _, row := range rows {
		buttons := make([]domain.Button, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, domain.Button{Text: text})
		}
		out = append(out, buttons)
	}
	return domain.ReplyKeyboard(out...)
}

// AdminEntryKeyboard — одна кнопка входа в панель.
func AdminEntryKeyboard() *domain.Keyboard {
	return replyRows([]string{BtnAdminPanel})
}

// AdminMainKeyboard — главное меню панели.
func AdminMainKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnStats, BtnChannels},
		[]string{BtnCards, BtnSettings},
		[]string{BtnMenus, BtnAdmins},
		[]string{BtnExit},
	)
}

// AdminChannelsKeyboard — раздел каналов.
func AdminChannelsKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnChannelAdd, BtnChannelRemove},
		[]string{BtnChannelList, BtnBack},
	)
}

// AdminCardsKeyboard — раздел карт.
func AdminCardsKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnCardAdd, BtnCardActivate},
		[]string{BtnCardRemove, BtnCardList},
		[]string{BtnBack},
	)
}

// AdminSettingsKeyboard — раздел настроек.
func AdminSettingsKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnSettingInstagram, BtnSettingThreshold},
		[]string{BtnSettingInbox},
		[]string{BtnSettingList, BtnBack},
	)
}

// AdminAdminsKeyboard — раздел администраторов.
func AdminAdminsKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnAdminAdd, BtnAdminRemove},
		[]string{BtnAdminList, BtnBack},
	)
}

// AdminMenusKeyboard — раздел пользовательских меню.
func AdminMenusKeyboard() *domain.Keyboard {
	return replyRows(
		[]string{BtnMenuAdd, BtnMenuRemove},
		[]string{BtnMenuList, BtnBack},
	)
}
