// Package profile проверяет и нормализует регистрационные данные пользователя.
package profile

import (
	"strings"
	"time"
	"unicode"

	"tg-gate-bot/internal/domain"
)

const (
	minNameLength  = 2
	minPhoneDigits = 9
	maxPhoneDigits = 15
	minBirthYear   = 1900

	birthInputLayout  = "2.1.2006"
	birthStoredLayout = "2006-01-02"
)

// ValidateName проверяет имя или фамилию: не меньше двух непробельных символов.
func ValidateName(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	count := 0
	for _, r := range value {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	if count < minNameLength {
		return "", domain.ErrTooShort
	}
	return value, nil
}

// NormalizePhone приводит номер к виду +<9..15 цифр>.
func NormalizePhone(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.Len()
	if n < minPhoneDigits || n > maxPhoneDigits {
		return "", domain.ErrInvalidInput
	}
	return "+" + digits.String(), nil
}

// PhoneFromContact принимает только контакт самого отправителя.
// Контакт без user_id считается своим.
func PhoneFromContact(senderID, contactUserID int64, phone string) (string, error) {
	if contactUserID != 0 && contactUserID != senderID {
		return "", domain.ErrForeignContact
	}
	return NormalizePhone(phone)
}

// ParseBirthDate разбирает дату формата ДД.ММ.ГГГГ (разделители ".", "-", "/")
// и возвращает её в виде ГГГГ-ММ-ДД.
func ParseBirthDate(raw string, now time.Time) (string, error) {
	cleaned := strings.NewReplacer("-", ".", "/", ".").Replace(strings.TrimSpace(raw))
	parsed, err := time.Parse(birthInputLayout, cleaned)
	if err != nil {
		return "", domain.ErrInvalidInput
	}
	if parsed.Year() < minBirthYear {
		return "", domain.ErrOutOfRange
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.After(today) {
		return "", domain.ErrOutOfRange
	}
	return parsed.Format(birthStoredLayout), nil
}
