package i18n

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape экранирует пользовательский текст для parse_mode=HTML.
// Кавычки не экранируются.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
