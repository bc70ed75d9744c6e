// Package conversation ведёт диалог с пользователями и администраторами.
// Переходы вычисляются чистыми функциями по событию и снимку данных,
// а побочные эффекты выполняет отдельный исполнитель.
package conversation

import (
	"time"

	"tg-gate-bot/internal/domain"
)

// EventKind — тип входящего события.
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventCallback
)

// Команды бота.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)

// Contact — контакт, отправленный кнопкой запроса телефона.
type Contact struct {
	UserID int64
	Phone  string
}

// Event — входящее событие, не зависящее от транспорта.
type Event struct {
	Kind    EventKind
	From    domain.TelegramProfile
	ChatID  int64
	Private bool

	// MessageID — сообщение пользователя либо сообщение с нажатой кнопкой.
	MessageID       int
	Text            string
	Caption         string
	Command         string
	Contact         *Contact
	Receipt         *domain.Receipt
	QuotedMessageID int

	CallbackID   string
	CallbackData string
}

// Snapshot — данные, прочитанные один раз перед принятием решения.
type Snapshot struct {
	Actor     domain.Actor
	Session   domain.Session
	User      domain.User
	Missing   []domain.Channel
	Settings  domain.Settings
	Balance   int
	Pending   bool
	Card      *domain.Card
	Menus     []domain.CustomMenu
	Protected domain.ProtectedAdmins
	Now       time.Time
}

// Lang возвращает язык пользователя с откатом на язык по умолчанию.
func (s Snapshot) Lang() domain.Language {
	return s.User.Language.OrDefault()
}

// Outcome — результат перехода: новая сессия и эффекты в порядке выполнения.
type Outcome struct {
	Next    domain.Session
	Effects []Effect
}

// Effect — действие, которое исполнитель применяет после решения.
type Effect interface {
	effect()
}

// Send отправляет сообщение в чат события.
type Send struct {
	Text     string
	Keyboard *domain.Keyboard
	Plain    bool
}

// Answer отвечает на нажатие кнопки.
type Answer struct {
	Text  string
	Alert bool
}

// ClearMarkup убирает inline-кнопки с сообщения, на котором нажата кнопка.
type ClearMarkup struct{}

// SetLanguage сохраняет язык пользователя.
type SetLanguage struct{ Lang domain.Language }

// SaveRegistration сохраняет регистрацию.
type SaveRegistration struct{ Registration domain.Registration }

// UpdateProfile сохраняет одно поле профиля.
type UpdateProfile struct {
	Field domain.ProfileField
	Value string
}

// DeleteUser удаляет все данные пользователя.
type DeleteUser struct{}

// Relay списывает кредит и пересылает сообщение администраторам.
type Relay struct{}

// SubmitReceipt создаёт платёж и отправляет чек на проверку.
type SubmitReceipt struct {
	Receipt domain.Receipt
	Caption string
}

// CountNoPayment учитывает сообщение без оплаты и напоминает реквизиты.
type CountNoPayment struct{}

// ResolvePayment применяет решение администратора по платежу.
type ResolvePayment struct {
	PaymentID int64
	Approve   bool
}

// ReplyToUser копирует ответ администратора пользователю.
type ReplyToUser struct{}

// View — раздел админ-панели, выводимый списком.
type View int

const (
	ViewStats View = iota + 1
	ViewChannels
	ViewCards
	ViewSettings
	ViewAdmins
	ViewMenus
)

// Show выводит свежий список раздела с префиксом и суффиксом.
type Show struct {
	View     View
	Prefix   string
	Suffix   string
	Keyboard *domain.Keyboard
}

// AddChannel сохраняет обязательный канал.
type AddChannel struct{ Channel domain.Channel }

// RemoveChannel удаляет канал.
type RemoveChannel struct{ ID int64 }

// AddCard сохраняет карту.
type AddCard struct{ Owner, Number string }

// ActivateCard делает карту активной.
type ActivateCard struct{ ID int64 }

// RemoveCard удаляет карту.
type RemoveCard struct{ ID int64 }

// SaveSetting сохраняет настройку и отвечает текстом Reply.
type SaveSetting struct {
	Key   domain.SettingKey
	Input string
	Reply string
}

// AddAdmin добавляет администратора.
type AddAdmin struct{ ID int64 }

// RemoveAdmin удаляет администратора.
type RemoveAdmin struct{ ID int64 }

// SaveMenu создаёт или обновляет пользовательское меню.
type SaveMenu struct{ Name, Text string }

// RemoveMenu удаляет пользовательское меню.
type RemoveMenu struct{ ID int64 }

func (Send) effect()             {}
func (Answer) effect()           {}
func (ClearMarkup) effect()      {}
func (SetLanguage) effect()      {}
func (SaveRegistration) effect() {}
func (UpdateProfile) effect()    {}
func (DeleteUser) effect()       {}
func (Relay) effect()            {}
func (SubmitReceipt) effect()    {}
func (CountNoPayment) effect()   {}
func (ResolvePayment) effect()   {}
func (ReplyToUser) effect()      {}
func (Show) effect()             {}
func (AddChannel) effect()       {}
func (RemoveChannel) effect()    {}
func (AddCard) effect()          {}
func (ActivateCard) effect()     {}
func (RemoveCard) effect()       {}
func (SaveSetting) effect()      {}
func (AddAdmin) effect()         {}
func (RemoveAdmin) effect()      {}
func (SaveMenu) effect()         {}
func (RemoveMenu) effect()       {}

// Decide выбирает функцию перехода по роли отправителя.
func Decide(ev Event, snap Snapshot) Outcome {
	if snap.Actor.IsAdmin() {
		return DecideAdmin(ev, snap)
	}
	return DecideUser(ev, snap)
}
