package catalog

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
)

var (
	ErrEmptyInput       = errors.New("пустой ввод")
	ErrChatRefInvalid   = errors.New("некорректная ссылка на чат")
	ErrJoinURLInvalid   = errors.New("некорректная ссылка для вступления")
	ErrIDInvalid        = errors.New("идентификатор должен быть числом")
	ErrCardOwnerShort   = errors.New("имя владельца карты слишком короткое")
	ErrCardNumber       = errors.New("некорректный номер карты")
	ErrMenuNameEmpty    = errors.New("пустое название меню")
	ErrMenuNameLong     = errors.New("название меню слишком длинное")
	ErrMenuNameReserved = errors.New("название меню занято системной кнопкой")
	ErrMenuTextEmpty    = errors.New("пустой ответ меню")
	ErrMenuTextLong     = errors.New("ответ меню слишком длинный")
)

const (
	minCardOwner    = 2
	minCardDigits   = 12
	maxMenuName     = 64
	maxMenuResponse = 4000
)

// ParseChannelInput разбирает ввод вида "ref" или "ref|url".
func ParseChannelInput(input string) (domain.Channel, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return domain.Channel{}, ErrEmptyInput
	}
	ref, joinURL := text, ""
	if before, after, ok := strings.Cut(text, "|"); ok {
		ref, joinURL = strings.TrimSpace(before), strings.TrimSpace(after)
	}
	if !ValidChatRef(ref) {
		return domain.Channel{}, ErrChatRefInvalid
	}
	if joinURL != "" && !strings.HasPrefix(joinURL, "http") {
		return domain.Channel{}, ErrJoinURLInvalid
	}
	return domain.Channel{ChatRef: ref, JoinURL: joinURL}, nil
}

// ValidChatRef принимает @username или числовой ID вида -100XXXX.
func ValidChatRef(ref string) bool {
	if strings.HasPrefix(ref, "@") {
		return len(ref) > 1
	}
	return strings.HasPrefix(ref, "-100") && domain.IsNumericChatID(ref)
}

// ParseID разбирает числовой идентификатор записи.
func ParseID(input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, ErrIDInvalid
	}
	return id, nil
}

// ValidCardOwner проверяет имя владельца карты.
func ValidCardOwner(input string) (string, error) {
	owner := strings.TrimSpace(input)
	if utf8.RuneCountInString(owner) < minCardOwner {
		return "", ErrCardOwnerShort
	}
	return owner, nil
}

// ValidCardNumber требует не меньше 12 цифр; номер сохраняется как введён.
func ValidCardNumber(input string) (string, error) {
	number := strings.TrimSpace(input)
	digits := 0
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minCardDigits {
		return "", ErrCardNumber
	}
	return number, nil
}

// ValidMenuName проверяет название кнопки меню.
func ValidMenuName(input string) (string, error) {
	name := strings.TrimSpace(input)
	switch {
	case name == "":
		return "", ErrMenuNameEmpty
	case utf8.RuneCountInString(name) > maxMenuName:
		return "", ErrMenuNameLong
	case i18n.Matches(name, i18n.KeyMenuProfileBtn), i18n.Matches(name, i18n.KeyMenuDeleteBtn):
		return "", ErrMenuNameReserved
	}
	return name, nil
}

// ValidMenuResponse проверяет текст ответа меню.
func ValidMenuResponse(input string) (string, error) {
	text := strings.TrimSpace(input)
	switch {
	case text == "":
		return "", ErrMenuTextEmpty
	case utf8.RuneCountInString(text) > maxMenuResponse:
		return "", ErrMenuTextLong
	}
	return text, nil
}
