package domain

import "strings"

// ConversationState — ожидаемый ввод в текущем шаге диалога.
// Пустое значение означает отсутствие незавершённого подпотока.
type ConversationState string

const (
	StateIdle ConversationState = ""

	StateRegFirstName ConversationState = "registering:first_name"
	StateRegLastName  ConversationState = "registering:last_name"
	StateRegPhone     ConversationState = "registering:phone"
	StateRegBirthDate ConversationState = "registering:birth_date"

	StateEditFirstName ConversationState = "editing:first_name"
	StateEditLastName  ConversationState = "editing:last_name"
	StateEditPhone     ConversationState = "editing:phone"
	StateEditBirthDate ConversationState = "editing:birth_date"

	StateAdminChannelAdd    ConversationState = "admin:channel_add"
	StateAdminChannelRemove ConversationState = "admin:channel_remove"
	StateAdminCardOwner     ConversationState = "admin:card_owner"
	StateAdminCardNumber    ConversationState = "admin:card_number"
	StateAdminCardActivate  ConversationState = "admin:card_activate"
	StateAdminCardRemove    ConversationState = "admin:card_remove"
	StateAdminInstagram     ConversationState = "admin:instagram_url"
	StateAdminThreshold     ConversationState = "admin:suspicious_threshold"
	StateAdminInbox         ConversationState = "admin:inbox_chat_id"
	StateAdminAdd           ConversationState = "admin:admin_add"
	StateAdminRemove        ConversationState = "admin:admin_remove"
	StateAdminMenuName      ConversationState = "admin:menu_name"
	StateAdminMenuText      ConversationState = "admin:menu_text"
	StateAdminMenuRemove    ConversationState = "admin:menu_remove"
)

// IsRegistering сообщает, находится ли пользователь в шаге регистрации.
func (s ConversationState) IsRegistering() bool {
	return strings.HasPrefix(string(s), "registering:")
}

// IsEditing сообщает, редактирует ли пользователь поле профиля.
func (s ConversationState) IsEditing() bool {
	return strings.HasPrefix(string(s), "editing:")
}

// IsAdmin сообщает, относится ли состояние к админ-панели.
func (s ConversationState) IsAdmin() bool {
	return strings.HasPrefix(string(s), "admin:")
}

// EditState возвращает состояние редактирования для поля профиля.
func EditState(field ProfileField) ConversationState {
	return ConversationState("editing:" + string(field))
}

// EditedField возвращает поле профиля для состояния редактирования.
func (s ConversationState) EditedField() (ProfileField, bool) {
	if !s.IsEditing() {
		return "", false
	}
	return ParseProfileField(strings.TrimPrefix(string(s), "editing:"))
}

// Ключи черновика диалога.
const (
	DraftFirstName = "first_name"
	DraftLastName  = "last_name"
	DraftPhone     = "phone"
	DraftCardOwner = "card_owner"
	DraftMenuName  = "menu_name"
)

// Session хранит ожидаемый ввод и черновик многошаговой формы.
// Анонимность, отсутствие языка и готовность выводятся из записи пользователя.
type Session struct {
	State ConversationState `json:"state"`
	Draft map[string]string `json:"draft,omitempty"`
}

// Idle сообщает, что ожидаемого ввода нет.
func (s Session) Idle() bool {
	return s.State == StateIdle
}

// With возвращает сессию с новым состоянием и сохранённым черновиком.
func (s Session) With(state ConversationState) Session {
	return Session{State: state, Draft: s.Draft}
}

// Put возвращает копию сессии с добавленным значением черновика.
func (s Session) Put(key, value string) Session {
	draft := make(map[string]string, len(s.Draft)+1)
	for k, v := range s.Draft {
		draft[k] = v
	}
	draft[key] = value
	return Session{State: s.State, Draft: draft}
}

// Get возвращает значение черновика.
func (s Session) Get(key string) string {
	return s.Draft[key]
}
