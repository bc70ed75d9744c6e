package conversation

import (
	"errors"
	"strings"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
	"tg-gate-bot/internal/usecase/moderation"
	"tg-gate-bot/internal/usecase/profile"
)

const notAdminText = "Siz admin emassiz."

type regStep struct {
	field   domain.ProfileField
	draft   string
	next    domain.ConversationState
	prompt  i18n.Key
	invalid i18n.Key
}

var regSteps = map[domain.ConversationState]regStep{
	domain.StateRegFirstName: {field: domain.ProfileFirstName, draft: domain.DraftFirstName, next: domain.StateRegLastName, prompt: i18n.KeyRegLastPrompt, invalid: i18n.KeyRegFirstInvalid},
	domain.StateRegLastName:  {field: domain.ProfileLastName, draft: domain.DraftLastName, next: domain.StateRegPhone, prompt: i18n.KeyRegPhonePrompt, invalid: i18n.KeyRegLastInvalid},
	domain.StateRegPhone:     {field: domain.ProfilePhone, draft: domain.DraftPhone, next: domain.StateRegBirthDate, prompt: i18n.KeyRegBirthPrompt, invalid: i18n.KeyRegPhoneInvalid},
	domain.StateRegBirthDate: {field: domain.ProfileBirthDate, invalid: i18n.KeyRegBirthInvalid},
}

var editPrompts = map[domain.ProfileField]i18n.Key{
	domain.ProfileFirstName: i18n.KeyProfileEditFirstPrompt,
	domain.ProfileLastName:  i18n.KeyProfileEditLastPrompt,
	domain.ProfilePhone:     i18n.KeyProfileEditPhonePrompt,
	domain.ProfileBirthDate: i18n.KeyProfileEditBirthPrompt,
}

var invalidKeys = map[domain.ProfileField]i18n.Key{
	domain.ProfileFirstName: i18n.KeyRegFirstInvalid,
	domain.ProfileLastName:  i18n.KeyRegLastInvalid,
	domain.ProfilePhone:     i18n.KeyRegPhoneInvalid,
	domain.ProfileBirthDate: i18n.KeyRegBirthInvalid,
}

func stay(snap Snapshot, effects ...Effect) Outcome {
	return Outcome{Next: snap.Session, Effects: effects}
}

func moveTo(next domain.Session, effects ...Effect) Outcome {
	return Outcome{Next: next, Effects: effects}
}

func idle(effects ...Effect) Outcome {
	return Outcome{Next: domain.Session{}, Effects: effects}
}

// DecideUser вычисляет переход для обычного пользователя.
func DecideUser(ev Event, snap Snapshot) Outcome {
	if snap.Session.State.IsAdmin() {
		snap.Session = domain.Session{}
	}
	if ev.Kind == EventCallback {
		return decideUserCallback(ev, snap)
	}
	if !ev.Private {
		return stay(snap)
	}
	lang := snap.Lang()
	text := strings.TrimSpace(ev.Text)

	if ev.Command == CommandCancel {
		var kb *domain.Keyboard
		if snap.User.Language != "" && snap.User.IsRegistered() {
			kb = userMenu(snap)
		}
		return idle(Send{Text: i18n.T(lang, i18n.KeyCancelled, nil), Keyboard: kb})
	}
	if i18n.Matches(text, i18n.KeyMenuDeleteBtn) {
		return idle(DeleteUser{}, Send{Text: i18n.T(lang, i18n.KeyProfileDeleted, nil), Keyboard: domain.RemoveKeyboard()})
	}
	if strings.EqualFold(text, BtnAdminPanel) {
		return stay(snap, Send{Text: notAdminText})
	}
	if len(snap.Missing) > 0 {
		return stay(snap, gatingPrompt(snap, ev.Command == CommandStart))
	}
	if ev.Command == CommandStart {
		return startFlow(snap)
	}
	if snap.User.Language == "" {
		return idle(Send{Text: i18n.T(lang, i18n.KeyLangPrompt, nil), Keyboard: LanguageKeyboard()})
	}
	if i18n.Matches(text, i18n.KeyMenuProfileBtn) {
		if !snap.User.IsRegistered() {
			return idle(Send{Text: i18n.T(lang, i18n.KeyMustRegister, nil)})
		}
		return idle(Send{Text: ProfileText(lang, snap.User), Keyboard: ProfileKeyboard(lang)})
	}

	state := snap.Session.State
	if state.IsRegistering() {
		return registrationStep(ev, snap)
	}
	if field, ok := state.EditedField(); ok {
		return editStep(ev, snap, field)
	}
	if !snap.User.IsRegistered() {
		return stay(snap, Send{Text: i18n.T(lang, i18n.KeyMustRegister, nil)})
	}
	if snap.Session.Idle() {
		for _, menu := range snap.Menus {
			if text != "" && strings.EqualFold(text, menu.ButtonText) {
				return idle(Send{Text: menu.ResponseText, Keyboard: userMenu(snap), Plain: true})
			}
		}
	}
	return readyFlow(ev, snap)
}

func gatingPrompt(snap Snapshot, withHint bool) Send {
	lang := snap.Lang()
	return Send{
		Text:     GatingText(lang, snap.Missing, withHint),
		Keyboard: GatingKeyboard(snap.Missing, snap.Settings.InstagramURL, lang),
	}
}

// startFlow ведёт пользователя к следующему незавершённому шагу: язык, регистрация или оплата.
func startFlow(snap Snapshot) Outcome {
	lang := snap.Lang()
	if snap.User.Language == "" {
		return idle(Send{Text: i18n.T(lang, i18n.KeyLangPrompt, nil), Keyboard: LanguageKeyboard()})
	}
	if !snap.User.IsRegistered() {
		return moveTo(domain.Session{State: domain.StateRegFirstName}, Send{Text: i18n.T(lang, i18n.KeyRegStart, nil)})
	}
	return idle(Send{Text: readyText(snap), Keyboard: userMenu(snap)})
}

func readyFlow(ev Event, snap Snapshot) Outcome {
	lang := snap.Lang()
	switch {
	case snap.Balance > 0:
		return idle(Relay{})
	case snap.Pending:
		return idle(Send{Text: i18n.T(lang, i18n.KeyReceiptWait, nil), Keyboard: userMenu(snap)})
	case ev.Receipt != nil:
		return idle(SubmitReceipt{Receipt: *ev.Receipt, Caption: ev.Caption})
	default:
		return idle(CountNoPayment{})
	}
}

// fieldInput проверяет ввод для поля профиля и возвращает ключ ошибки при отказе.
func fieldInput(ev Event, snap Snapshot, field domain.ProfileField) (string, i18n.Key, bool) {
	var (
		value string
		err   error
	)
	switch field {
	case domain.ProfileFirstName, domain.ProfileLastName:
		value, err = profile.ValidateName(ev.Text)
	case domain.ProfilePhone:
		if ev.Contact != nil {
			value, err = profile.PhoneFromContact(ev.From.ID, ev.Contact.UserID, ev.Contact.Phone)
			if errors.Is(err, domain.ErrForeignContact) {
				return "", i18n.KeyRegPhoneSelfOnly, false
			}
		} else {
			value, err = profile.NormalizePhone(ev.Text)
		}
	case domain.ProfileBirthDate:
		value, err = profile.ParseBirthDate(ev.Text, snap.Now)
	}
	if err != nil {
		return "", invalidKeys[field], false
	}
	return value, "", true
}

func registrationStep(ev Event, snap Snapshot) Outcome {
	lang := snap.Lang()
	step, ok := regSteps[snap.Session.State]
	if !ok {
		return startFlow(snap)
	}
	value, errKey, ok := fieldInput(ev, snap, step.field)
	if !ok {
		return stay(snap, Send{Text: i18n.T(lang, errKey, nil)})
	}
	if step.next != "" {
		next := snap.Session.Put(step.draft, value).With(step.next)
		var kb *domain.Keyboard
		switch step.next {
		case domain.StateRegPhone:
			kb = PhoneKeyboard(lang)
		case domain.StateRegBirthDate:
			kb = domain.RemoveKeyboard()
		}
		return moveTo(next, Send{Text: i18n.T(lang, step.prompt, nil), Keyboard: kb})
	}

	reg := domain.Registration{
		FirstName: strings.TrimSpace(snap.Session.Get(domain.DraftFirstName)),
		LastName:  strings.TrimSpace(snap.Session.Get(domain.DraftLastName)),
		Phone:     strings.TrimSpace(snap.Session.Get(domain.DraftPhone)),
		BirthDate: value,
	}
	if reg.FirstName == "" || reg.LastName == "" || reg.Phone == "" {
		return idle(Send{Text: i18n.T(lang, i18n.KeyRegDataLost, nil)})
	}
	menu := userMenu(snap)
	return idle(
		SaveRegistration{Registration: reg},
		Send{Text: i18n.T(lang, i18n.KeyRegDonePaid, nil), Keyboard: menu},
		Send{Text: readyText(snap), Keyboard: menu},
	)
}

func editStep(ev Event, snap Snapshot, field domain.ProfileField) Outcome {
	lang := snap.Lang()
	value, errKey, ok := fieldInput(ev, snap, field)
	if !ok {
		return stay(snap, Send{Text: i18n.T(lang, errKey, nil)})
	}
	return idle(
		UpdateProfile{Field: field, Value: value},
		Send{Text: i18n.T(lang, i18n.KeyProfileUpdated, nil), Keyboard: userMenu(snap)},
		Send{Text: ProfileText(lang, field.Apply(snap.User, value)), Keyboard: ProfileKeyboard(lang)},
	)
}

func decideUserCallback(ev Event, snap Snapshot) Outcome {
	lang := snap.Lang()
	data := ev.CallbackData
	switch {
	case moderation.IsDecision(data):
		return stay(snap, Answer{Text: "Faqat admin", Alert: true})
	case data == CallbackCheckSubs:
		if len(snap.Missing) > 0 {
			return stay(snap, gatingPrompt(snap, false), Answer{Text: i18n.T(lang, i18n.KeySubNotFull, nil), Alert: true})
		}
		out := startFlow(snap)
		out.Effects = append([]Effect{Answer{Text: i18n.T(lang, i18n.KeySubOk, nil)}}, out.Effects...)
		return out
	case data == CallbackProfileClose:
		return stay(snap, ClearMarkup{}, Answer{})
	}

	if len(snap.Missing) > 0 {
		return stay(snap, gatingPrompt(snap, false), Answer{})
	}

	switch {
	case strings.HasPrefix(data, CallbackLangPrefix):
		chosen, ok := domain.ParseLanguage(strings.TrimPrefix(data, CallbackLangPrefix))
		if !ok {
			return stay(snap, Answer{Text: i18n.T(lang, i18n.KeyLangInvalid, nil), Alert: true})
		}
		snap.User.Language = chosen
		out := startFlow(snap)
		out.Effects = append([]Effect{
			SetLanguage{Lang: chosen},
			Answer{Text: i18n.T(chosen, i18n.KeyLangSaved, nil)},
			ClearMarkup{},
		}, out.Effects...)
		return out
	case strings.HasPrefix(data, CallbackEditPrefix):
		if !snap.User.IsRegistered() {
			return stay(snap, Answer{Text: i18n.T(lang, i18n.KeyMustRegister, nil), Alert: true})
		}
		field, ok := domain.ParseProfileField(strings.TrimPrefix(data, CallbackEditPrefix))
		if !ok {
			return stay(snap, Answer{Text: "Xato amal", Alert: true})
		}
		var kb *domain.Keyboard
		switch field {
		case domain.ProfilePhone:
			kb = PhoneKeyboard(lang)
		case domain.ProfileBirthDate:
			kb = domain.RemoveKeyboard()
		}
		return moveTo(domain.Session{State: domain.EditState(field)},
			ClearMarkup{},
			Send{Text: i18n.T(lang, editPrompts[field], nil), Keyboard: kb},
			Answer{},
		)
	}
	return stay(snap, Answer{})
}
