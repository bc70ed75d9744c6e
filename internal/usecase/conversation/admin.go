package conversation

import (
	"errors"
	"strings"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/moderation"
)

const (
	adminPanelText   = "Admin panel:"
	adminClosedText  = "Admin panel yopildi."
	adminEntryText   = "Admin panel tugmasi pastda."
	adminCancelText  = "Bekor qilindi."
	idNotNumberText  = "ID raqam bo'lishi kerak."
	tgIDNotNumber    = "Telegram ID raqam bo'lishi kerak."
	usersOnlyText    = "Faqat foydalanuvchilar uchun"
	badCallbackText  = "Noto'g'ri callback"
	badPaymentIDText = "Payment ID xato"
)

// adminButton описывает действие кнопки админ-панели.
type adminButton struct {
	state    domain.ConversationState
	text     string
	view     View
	suffix   string
	keyboard func() *domain.Keyboard
}

var adminButtons = map[string]adminButton{
	BtnAdminPanel: {text: adminPanelText, keyboard: AdminMainKeyboard},
	BtnBack:       {text: adminPanelText, keyboard: AdminMainKeyboard},
	BtnExit:       {text: adminClosedText, keyboard: AdminEntryKeyboard},
	BtnStats:      {view: ViewStats, keyboard: AdminMainKeyboard},

	BtnChannels:      {view: ViewChannels, keyboard: AdminChannelsKeyboard},
	BtnChannelList:   {view: ViewChannels, keyboard: AdminChannelsKeyboard},
	BtnChannelAdd:    {state: domain.StateAdminChannelAdd, text: "Kanal kiriting.\nFormat: <code>@kanal_username</code>\nYoki: <code>@kanal_username|https://t.me/kanal_username</code>", keyboard: AdminChannelsKeyboard},
	BtnChannelRemove: {state: domain.StateAdminChannelRemove, view: ViewChannels, suffix: "\n\nO'chirish uchun kanal ID yuboring.", keyboard: AdminChannelsKeyboard},

	BtnCards:        {view: ViewCards, keyboard: AdminCardsKeyboard},
	BtnCardList:     {view: ViewCards, keyboard: AdminCardsKeyboard},
	BtnCardAdd:      {state: domain.StateAdminCardOwner, text: "Yangi karta egasini yuboring.", keyboard: AdminCardsKeyboard},
	BtnCardActivate: {state: domain.StateAdminCardActivate, view: ViewCards, suffix: "\n\nAktiv qilish uchun karta ID yuboring.", keyboard: AdminCardsKeyboard},
	BtnCardRemove:   {state: domain.StateAdminCardRemove, view: ViewCards, suffix: "\n\nO'chirish uchun karta ID yuboring.", keyboard: AdminCardsKeyboard},

	BtnSettings:         {view: ViewSettings, keyboard: AdminSettingsKeyboard},
	BtnSettingList:      {view: ViewSettings, keyboard: AdminSettingsKeyboard},
	BtnSettingInstagram: {state: domain.StateAdminInstagram, text: "Instagram link yuboring.\nTozalash uchun <code>-</code> yuboring.", keyboard: AdminSettingsKeyboard},
	BtnSettingThreshold: {state: domain.StateAdminThreshold, text: "Shubhali urinish limitini yuboring (masalan: 3).", keyboard: AdminSettingsKeyboard},
	BtnSettingInbox:     {state: domain.StateAdminInbox, text: "Xabar tushadigan chat ID ni yuboring.\nMasalan: <code>-1001234567890</code>\nTozalash uchun <code>-</code> yuboring.", keyboard: AdminSettingsKeyboard},

	BtnAdmins:      {view: ViewAdmins, keyboard: AdminAdminsKeyboard},
	BtnAdminList:   {view: ViewAdmins, keyboard: AdminAdminsKeyboard},
	BtnAdminAdd:    {state: domain.StateAdminAdd, text: "Qo'shmoqchi bo'lgan admin Telegram ID sini yuboring.", keyboard: AdminAdminsKeyboard},
	BtnAdminRemove: {state: domain.StateAdminRemove, view: ViewAdmins, suffix: "\n\nO'chirish uchun admin ID yuboring.", keyboard: AdminAdminsKeyboard},

	BtnMenus:      {view: ViewMenus, keyboard: AdminMenusKeyboard},
	BtnMenuList:   {view: ViewMenus, keyboard: AdminMenusKeyboard},
	BtnMenuAdd:    {state: domain.StateAdminMenuName, text: "Yangi menyu nomini yuboring (tugmada chiqadigan yozuv).", keyboard: AdminMenusKeyboard},
	BtnMenuRemove: {state: domain.StateAdminMenuRemove, view: ViewMenus, suffix: "\n\nO'chirish uchun menyu ID yuboring.", keyboard: AdminMenusKeyboard},
}

func matchAdminButton(text string) (adminButton, bool) {
	for label, button := range adminButtons {
		if strings.EqualFold(text, label) {
			return button, true
		}
	}
	return adminButton{}, false
}

// DecideAdmin вычисляет переход для администратора.
func DecideAdmin(ev Event, snap Snapshot) Outcome {
	if !snap.Session.State.IsAdmin() {
		snap.Session = domain.Session{}
	}
	if ev.Kind == EventCallback {
		return decideAdminCallback(ev, snap)
	}
	if !ev.Private {
		if ev.QuotedMessageID != 0 {
			return stay(snap, ReplyToUser{})
		}
		return stay(snap)
	}

	switch ev.Command {
	case CommandStart:
		return idle(Send{Text: adminEntryText, Keyboard: AdminEntryKeyboard()})
	case CommandCancel:
		return idle(Send{Text: adminCancelText, Keyboard: AdminMainKeyboard()})
	}

	text := strings.TrimSpace(ev.Text)
	if button, ok := matchAdminButton(text); ok {
		next := domain.Session{State: button.state}
		if button.view != 0 {
			return moveTo(next, Show{View: button.view, Suffix: button.suffix, Keyboard: button.keyboard()})
		}
		return moveTo(next, Send{Text: button.text, Keyboard: button.keyboard()})
	}

	if snap.Session.State.IsAdmin() {
		return adminInput(text, snap)
	}
	if ev.QuotedMessageID != 0 {
		return stay(snap, ReplyToUser{})
	}
	return stay(snap)
}

func decideAdminCallback(ev Event, snap Snapshot) Outcome {
	data := ev.CallbackData
	switch {
	case moderation.IsDecision(data):
		id, approve, err := moderation.ParseDecision(data)
		switch {
		case errors.Is(err, moderation.ErrDecisionID):
			return stay(snap, Answer{Text: badPaymentIDText})
		case err != nil:
			return stay(snap, Answer{Text: badCallbackText})
		}
		return stay(snap, ResolvePayment{PaymentID: id, Approve: approve})
	case strings.HasPrefix(data, callbackUserPrefix):
		return stay(snap, Answer{Text: usersOnlyText, Alert: true})
	}
	return stay(snap, Answer{})
}

func retry(snap Snapshot, text string) Outcome {
	return stay(snap, Send{Text: text})
}

// adminInput обрабатывает ввод в ожидающем шаге админ-панели.
// Ошибка проверки оставляет шаг, успешный ввод завершает его.
func adminInput(text string, snap Snapshot) Outcome {
	switch snap.Session.State {
	case domain.StateAdminChannelAdd:
		ch, err := catalog.ParseChannelInput(text)
		switch {
		case errors.Is(err, catalog.ErrEmptyInput):
			return retry(snap, "Bo'sh qiymat yuborildi. Qayta yuboring.")
		case errors.Is(err, catalog.ErrChatRefInvalid):
			return retry(snap, "Chat format xato. Misol: <code>@kanal_username</code> yoki <code>-1001234567890</code>")
		case err != nil:
			return retry(snap, "URL xato. To'g'ri URL yuboring.")
		}
		return idle(AddChannel{Channel: ch})

	case domain.StateAdminChannelRemove:
		id, err := catalog.ParseID(text)
		if err != nil {
			return retry(snap, idNotNumberText)
		}
		return idle(RemoveChannel{ID: id})

	case domain.StateAdminCardOwner:
		owner, err := catalog.ValidCardOwner(text)
		if err != nil {
			return retry(snap, "Karta egasi juda qisqa. Qayta kiriting.")
		}
		next := snap.Session.Put(domain.DraftCardOwner, owner).With(domain.StateAdminCardNumber)
		return moveTo(next, Send{Text: "Karta raqamini yuboring (masalan: 8600 1234 5678 9012)."})

	case domain.StateAdminCardNumber:
		number, err := catalog.ValidCardNumber(text)
		if err != nil {
			return retry(snap, "Karta raqami xato. Qayta yuboring.")
		}
		owner := strings.TrimSpace(snap.Session.Get(domain.DraftCardOwner))
		if owner == "" {
			return idle(Send{Text: "Karta egasi topilmadi. Qaytadan boshlang.", Keyboard: AdminCardsKeyboard()})
		}
		return idle(AddCard{Owner: owner, Number: number})

	case domain.StateAdminCardActivate, domain.StateAdminCardRemove:
		id, err := catalog.ParseID(text)
		if err != nil {
			return retry(snap, idNotNumberText)
		}
		if snap.Session.State == domain.StateAdminCardActivate {
			return idle(ActivateCard{ID: id})
		}
		return idle(RemoveCard{ID: id})

	case domain.StateAdminAdd:
		id, err := catalog.ParseID(text)
		if err != nil {
			return retry(snap, tgIDNotNumber)
		}
		return idle(AddAdmin{ID: id})

	case domain.StateAdminRemove:
		id, err := catalog.ParseID(text)
		if err != nil {
			return retry(snap, tgIDNotNumber)
		}
		if name, protected := catalog.ProtectedName(snap.Protected, id); protected {
			return retry(snap, name+" ni o'chirib bo'lmaydi.")
		}
		return idle(RemoveAdmin{ID: id})

	case domain.StateAdminMenuName:
		name, err := catalog.ValidMenuName(text)
		switch {
		case errors.Is(err, catalog.ErrMenuNameEmpty):
			return retry(snap, "Menyu nomi bo'sh bo'lmasligi kerak.")
		case errors.Is(err, catalog.ErrMenuNameLong):
			return retry(snap, "Menyu nomi 64 ta belgidan oshmasligi kerak.")
		case err != nil:
			return retry(snap, "Bu nom band. Iltimos boshqa nom kiriting.")
		}
		next := snap.Session.Put(domain.DraftMenuName, name).With(domain.StateAdminMenuText)
		return moveTo(next, Send{Text: "Endi shu tugma bosilganda chiqadigan matnni yuboring."})

	case domain.StateAdminMenuText:
		response, err := catalog.ValidMenuResponse(text)
		switch {
		case errors.Is(err, catalog.ErrMenuTextEmpty):
			return retry(snap, "Javob matni bo'sh bo'lmasligi kerak.")
		case err != nil:
			return retry(snap, "Javob matni juda uzun. 4000 belgidan oshmasin.")
		}
		name := strings.TrimSpace(snap.Session.Get(domain.DraftMenuName))
		if name == "" {
			return idle(Send{Text: "Menyu nomi topilmadi. Qaytadan boshlang.", Keyboard: AdminMenusKeyboard()})
		}
		return idle(SaveMenu{Name: name, Text: response})

	case domain.StateAdminMenuRemove:
		id, err := catalog.ParseID(text)
		if err != nil {
			return retry(snap, idNotNumberText)
		}
		return idle(RemoveMenu{ID: id})

	case domain.StateAdminInstagram:
		value, err := domain.ValidateSetting(domain.SettingInstagramURL, text)
		if err != nil {
			return retry(snap, "Instagram URL xato. To'g'ri URL yuboring.")
		}
		return idle(SaveSetting{Key: domain.SettingInstagramURL, Input: text, Reply: clearedOr(value, "Instagram URL tozalandi.", "Instagram URL saqlandi.")})

	case domain.StateAdminThreshold:
		_, err := domain.ValidateSetting(domain.SettingSuspiciousThreshold, text)
		switch {
		case errors.Is(err, domain.ErrOutOfRange):
			return retry(snap, "Limit 1 dan 100 gacha bo'lishi kerak.")
		case err != nil:
			return retry(snap, "Raqam yuboring.")
		}
		return idle(SaveSetting{Key: domain.SettingSuspiciousThreshold, Input: text, Reply: "Shubhali limit saqlandi."})

	case domain.StateAdminInbox:
		value, err := domain.ValidateSetting(domain.SettingInboxChatID, text)
		if err != nil {
			return retry(snap, "Chat ID xato. Misol: -1001234567890 yoki @kanal_username")
		}
		return idle(SaveSetting{Key: domain.SettingInboxChatID, Input: text, Reply: clearedOr(value, "Qabul chat ID tozalandi.", "Qabul chat ID saqlandi.")})
	}
	return idle()
}

func clearedOr(value, cleared, saved string) string {
	if value == "" {
		return cleared
	}
	return saved
}
