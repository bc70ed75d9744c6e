// Package i18n хранит локализованные строки бота.
package i18n

import (
	"fmt"
	"strings"

	"tg-gate-bot/internal/domain"
)

// Args — значения для подстановки в шаблон вида {name}.
type Args map[string]any

// T возвращает строку на языке пользователя с откатом на язык по умолчанию.
func T(lang domain.Language, key Key, args Args) string {
	template, ok := messages[lang.OrDefault()][key]
	if !ok {
		template, ok = messages[domain.DefaultLanguage][key]
	}
	if !ok {
		template = string(key)
	}
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Variants возвращает значения ключа на всех языках.
func Variants(key Key) []string {
	out := make([]string, 0, len(domain.Languages))
	for _, lang := range domain.Languages {
		if v := strings.TrimSpace(messages[lang][key]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Matches сообщает, совпадает ли текст с ключом на любом языке без учёта регистра.
func Matches(text string, key Key) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, variant := range Variants(key) {
		if strings.EqualFold(text, variant) {
			return true
		}
	}
	return false
}
