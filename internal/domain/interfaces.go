package domain

import (
	"context"
	"strconv"
	"time"
)

// UserRepo управляет пользователями.
type UserRepo interface {
	UpsertUser(ctx context.Context, profile TelegramProfile) (User, error)
	GetUser(ctx context.Context, tgID int64) (User, error)
	SetLanguage(ctx context.Context, tgID int64, lang Language) error
	SaveRegistration(ctx context.Context, tgID int64, reg Registration) error
	UpdateProfileField(ctx context.Context, tgID int64, field ProfileField, value string) error
	IncrementNoPayment(ctx context.Context, tgID int64) (int, error)
	ResetNoPayment(ctx context.Context, tgID int64) error
	DeleteUserData(ctx context.Context, tgID int64) error
	CountUsers(ctx context.Context) (int, error)
	ListByBirthday(ctx context.Context, monthDay string) ([]User, error)
}

// CreditRepo хранит баланс кредитов. ConsumeCredit применяется только
// если баланс после списания остаётся неотрицательным.
type CreditRepo interface {
	Balance(ctx context.Context, userID int64) (int, error)
	AddCredits(ctx context.Context, userID int64, n int) error
	ConsumeCredit(ctx context.Context, userID int64, n int) (bool, error)
}

// PaymentRepo хранит платежи. ResolvePayment применяется только к платежу в статусе pending.
type PaymentRepo interface {
	CreatePayment(ctx context.Context, userID int64, receipt Receipt, caption string) (int64, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)
	PendingPayment(ctx context.Context, userID int64) (Payment, bool, error)
	ResolvePayment(ctx context.Context, id int64, status PaymentStatus, adminID int64) (bool, error)
	PaymentStats(ctx context.Context) (PaymentStats, error)
}

// LinkRepo хранит связи админских сообщений с пользователями.
type LinkRepo interface {
	SaveLink(ctx context.Context, link MessageLink) error
	FindLink(ctx context.Context, adminChatID int64, adminMessageID int) (MessageLink, error)
	CountLinks(ctx context.Context) (int, error)
}

// ChannelRepo управляет обязательными каналами.
type ChannelRepo interface {
	UpsertChannel(ctx context.Context, ch Channel) (Channel, error)
	DeleteChannel(ctx context.Context, id int64) (bool, error)
	ListChannels(ctx context.Context) ([]Channel, error)
}

// CardRepo управляет картами. Если карты есть, ровно одна активна.
type CardRepo interface {
	AddCard(ctx context.Context, owner, number string) (Card, error)
	ActivateCard(ctx context.Context, id int64) (bool, error)
	DeleteCard(ctx context.Context, id int64) (bool, error)
	ListCards(ctx context.Context) ([]Card, error)
	ActiveCard(ctx context.Context) (Card, bool, error)
}

// AdminRepo управляет списком администраторов.
type AdminRepo interface {
	AddAdmin(ctx context.Context, tgID int64) error
	RemoveAdmin(ctx context.Context, tgID int64) (bool, error)
	ListAdmins(ctx context.Context) ([]int64, error)
	IsAdmin(ctx context.Context, tgID int64) (bool, error)
}

// SettingsRepo хранит плоские настройки.
type SettingsRepo interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key SettingKey, value string) error
}

// MenuRepo управляет пользовательскими меню.
type MenuRepo interface {
	UpsertMenu(ctx context.Context, name, text string) (bool, error)
	DeleteMenu(ctx context.Context, id int64) (bool, error)
	ListMenus(ctx context.Context) ([]CustomMenu, error)
}

// BirthdayRepo хранит отметки об уведомлениях о днях рождения.
// ClaimBirthday возвращает true только для первого захвата пары (пользователь, год).
type BirthdayRepo interface {
	ClaimBirthday(ctx context.Context, userID int64, year int) (bool, error)
	ReleaseBirthday(ctx context.Context, userID int64, year int) error
}

// Store объединяет все репозитории одного хранилища.
type Store interface {
	UserRepo
	CreditRepo
	PaymentRepo
	LinkRepo
	ChannelRepo
	CardRepo
	AdminRepo
	SettingsRepo
	MenuRepo
	BirthdayRepo
	Ping(ctx context.Context) error
}

// ChatRef адресует чат: числовой ID или @username.
type ChatRef string

// ChatID превращает числовой идентификатор в ChatRef.
func ChatID(id int64) ChatRef {
	return ChatRef(strconv.FormatInt(id, 10))
}

// SendOptions задаёт оформление исходящего сообщения.
type SendOptions struct {
	Keyboard  *Keyboard
	PlainText bool
	ReplyTo   int
}

// Messenger отправляет сообщения через мессенджер.
// Ошибки доставки оборачивают ErrRecipientUnreachable или ErrBadRequest.
type Messenger interface {
	SendText(ctx context.Context, to ChatRef, text string, opts SendOptions) (int, error)
	SendReceipt(ctx context.Context, to ChatRef, receipt Receipt, caption string, opts SendOptions) (int, error)
	CopyMessage(ctx context.Context, to ChatRef, fromChatID int64, messageID, replyTo int) (int, error)
	ClearKeyboard(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	ChatTitle(ctx context.Context, ref ChatRef) (string, error)
}

// MemberStatus — статус участника канала.
type MemberStatus string

const (
	MemberLeft   MemberStatus = "left"
	MemberKicked MemberStatus = "kicked"
)

// Joined сообщает, считается ли пользователь подписанным.
func (s MemberStatus) Joined() bool {
	return s != "" && s != MemberLeft && s != MemberKicked
}

// MembershipOracle проверяет подписку пользователя на канал.
type MembershipOracle interface {
	MemberStatus(ctx context.Context, chat ChatRef, userID int64) (MemberStatus, error)
}

// SessionStore хранит состояние диалога между событиями.
type SessionStore interface {
	Load(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, userID int64, session Session) error
	Clear(ctx context.Context, userID int64) error
}

// Cache используется для простых TTL-операций.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error
}

// EventPublisher публикует события журнала кредитов.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
}
