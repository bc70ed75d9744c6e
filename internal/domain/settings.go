package domain

import (
	"strconv"
	"strings"
)

// SettingKey — ключ из фиксированной схемы настроек.
type SettingKey string

const (
	SettingInstagramURL        SettingKey = "instagram_url"
	SettingSuspiciousThreshold SettingKey = "suspicious_threshold"
	SettingInboxChatID         SettingKey = "inbox_chat_id"
)

// SettingKeys перечисляет все известные ключи.
var SettingKeys = []SettingKey{SettingInstagramURL, SettingSuspiciousThreshold, SettingInboxChatID}

const (
	DefaultSuspiciousThreshold = 3
	minSuspiciousThreshold     = 1
	maxSuspiciousThreshold     = 100

	// ClearValue очищает строковую настройку.
	ClearValue = "-"
)

// ParseSettingKey отклоняет ключи вне схемы.
func ParseSettingKey(raw string) (SettingKey, error) {
	for _, key := range SettingKeys {
		if string(key) == raw {
			return key, nil
		}
	}
	return "", ErrUnknownSetting
}

// Settings — типизированное представление настроек.
type Settings struct {
	InstagramURL        string
	SuspiciousThreshold int
	InboxChatID         string
}

// DefaultSettings возвращает значения по умолчанию.
func DefaultSettings() Settings {
	return Settings{SuspiciousThreshold: DefaultSuspiciousThreshold}
}

// DefaultSettingValues возвращает сырые значения для первичного заполнения хранилища.
func DefaultSettingValues() map[SettingKey]string {
	return map[SettingKey]string{
		SettingInstagramURL:        "",
		SettingSuspiciousThreshold: strconv.Itoa(DefaultSuspiciousThreshold),
		SettingInboxChatID:         "",
	}
}

// SettingsFromMap собирает настройки из сырых значений хранилища.
// Неизвестные ключи игнорируются, испорченный порог заменяется значением по умолчанию.
func SettingsFromMap(raw map[string]string) Settings {
	s := DefaultSettings()
	s.InstagramURL = strings.TrimSpace(raw[string(SettingInstagramURL)])
	s.InboxChatID = strings.TrimSpace(raw[string(SettingInboxChatID)])
	if v, err := strconv.Atoi(strings.TrimSpace(raw[string(SettingSuspiciousThreshold)])); err == nil && v >= minSuspiciousThreshold {
		s.SuspiciousThreshold = v
	}
	return s
}

// InboxTarget возвращает чат для входящих, если он настроен.
func (s Settings) InboxTarget() (ChatRef, bool) {
	if s.InboxChatID == "" {
		return "", false
	}
	return ChatRef(s.InboxChatID), true
}

// ValidateSetting проверяет и нормализует значение настройки.
// Для строковых ключей ClearValue превращается в пустую строку.
func ValidateSetting(key SettingKey, input string) (string, error) {
	value := strings.TrimSpace(input)
	switch key {
	case SettingInstagramURL:
		if value == ClearValue {
			return "", nil
		}
		lowered := strings.ToLower(value)
		if !(strings.HasPrefix(lowered, "https://") || strings.HasPrefix(lowered, "http://")) || !strings.Contains(lowered, "instagram.com") {
			return "", ErrInvalidInput
		}
		return value, nil
	case SettingSuspiciousThreshold:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", ErrInvalidInput
		}
		if n < minSuspiciousThreshold || n > maxSuspiciousThreshold {
			return "", ErrOutOfRange
		}
		return strconv.Itoa(n), nil
	case SettingInboxChatID:
		if value == ClearValue {
			return "", nil
		}
		if !IsNumericChatID(value) && !(strings.HasPrefix(value, "@") && len(value) > 1) {
			return "", ErrInvalidInput
		}
		return value, nil
	}
	return "", ErrUnknownSetting
}

// IsNumericChatID проверяет идентификатор чата: цифры с необязательным минусом.
func IsNumericChatID(value string) bool {
	digits := strings.TrimPrefix(value, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
