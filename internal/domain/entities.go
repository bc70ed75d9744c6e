package domain

import (
	"strings"
	"time"
)

// User описывает пользователя бота и его регистрационные данные.
type User struct {
	TGID              int64
	Username          string
	FullName          string
	Language          Language
	FirstName         string
	LastName          string
	Phone             string
	BirthDate         string
	NoPaymentAttempts int
	RegisteredAt      *time.Time
	CreatedAt         time.Time
}

// IsRegistered сообщает, заполнены ли все четыре поля регистрации.
func (u User) IsRegistered() bool {
	return u.FirstName != "" && u.LastName != "" && u.Phone != "" && u.BirthDate != ""
}

// MonthDay возвращает MM-DD из даты рождения формата YYYY-MM-DD.
func (u User) MonthDay() string {
	if len(u.BirthDate) != len("2006-01-02") {
		return ""
	}
	return u.BirthDate[5:]
}

// Registration содержит четыре поля, которые сохраняются одной операцией.
type Registration struct {
	FirstName string
	LastName  string
	Phone     string
	BirthDate string
}

// ProfileField перечисляет редактируемые поля профиля.
type ProfileField string

const (
	ProfileFirstName ProfileField = "first_name"
	ProfileLastName  ProfileField = "last_name"
	ProfilePhone     ProfileField = "phone"
	ProfileBirthDate ProfileField = "birth_date"
)

// ParseProfileField проверяет имя поля из callback-данных.
func ParseProfileField(raw string) (ProfileField, bool) {
	switch field := ProfileField(raw); field {
	case ProfileFirstName, ProfileLastName, ProfilePhone, ProfileBirthDate:
		return field, true
	}
	return "", false
}

// Apply возвращает копию пользователя с обновлённым полем.
func (f ProfileField) Apply(u User, value string) User {
	switch f {
	case ProfileFirstName:
		u.FirstName = value
	case ProfileLastName:
		u.LastName = value
	case ProfilePhone:
		u.Phone = value
	case ProfileBirthDate:
		u.BirthDate = value
	}
	return u
}

// TelegramProfile содержит данные отправителя из апдейта.
type TelegramProfile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает имя для админских уведомлений.
func (p TelegramProfile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return "NoName"
	}
	return name
}

// Handle возвращает @username либо заглушку.
func (p TelegramProfile) Handle() string {
	if p.Username == "" {
		return "(yo'q)"
	}
	return "@" + p.Username
}

// Channel описывает обязательный для подписки канал.
type Channel struct {
	ID        int64
	ChatRef   string
	JoinURL   string
	Title     string
	CreatedAt time.Time
}

// Link возвращает ссылку для вступления: явную или выведенную из @handle.
func (c Channel) Link() string {
	if c.JoinURL != "" {
		return c.JoinURL
	}
	if strings.HasPrefix(c.ChatRef, "@") && len(c.ChatRef) > 1 {
		return "https://t.me/" + c.ChatRef[1:]
	}
	if strings.HasPrefix(c.ChatRef, "https://t.me/") {
		return c.ChatRef
	}
	return ""
}

// Card описывает реквизиты для оплаты.
type Card struct {
	ID        int64
	OwnerName string
	Number    string
	Active    bool
	CreatedAt time.Time
}

// PaymentStatus описывает состояние платежа.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// ReceiptKind описывает тип вложения с чеком.
type ReceiptKind string

const (
	ReceiptPhoto    ReceiptKind = "photo"
	ReceiptDocument ReceiptKind = "document"
)

// Receipt ссылается на файл чека в мессенджере.
type Receipt struct {
	Kind   ReceiptKind
	FileID string
}

// Payment описывает присланный пользователем чек и решение по нему.
type Payment struct {
	ID        int64
	UserID    int64
	Status    PaymentStatus
	Receipt   Receipt
	Caption   string
	AdminID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentStats содержит количество платежей по статусам.
type PaymentStats struct {
	Pending  int
	Approved int
	Rejected int
}

// MessageLink связывает сообщение в админском чате с пользователем.
type MessageLink struct {
	ID             int64
	UserID         int64
	UserMessageID  int
	AdminChatID    int64
	AdminMessageID int
	CreatedAt      time.Time
}

// CustomMenu описывает кнопку пользовательского меню с ответом.
type CustomMenu struct {
	ID           int64
	ButtonText   string
	ResponseText string
	CreatedAt    time.Time
}

// Stats собирает сводку для админ-панели.
type Stats struct {
	Users    int
	Messages int
	Payments PaymentStats
}
