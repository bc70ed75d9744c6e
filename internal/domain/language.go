package domain

// Language описывает язык интерфейса пользователя.
type Language string

const (
	LangLotin Language = "lotin"
	LangKril  Language = "kril"
	LangRuss  Language = "russ"

	DefaultLanguage = LangLotin
)

// Languages перечисляет поддерживаемые языки в порядке показа.
var Languages = []Language{LangLotin, LangKril, LangRuss}

// ParseLanguage проверяет код языка.
func ParseLanguage(raw string) (Language, bool) {
	for _, lang := range Languages {
		if string(lang) == raw {
			return lang, true
		}
	}
	return "", false
}

// OrDefault возвращает язык или язык по умолчанию, если он не поддерживается.
func (l Language) OrDefault() Language {
	if _, ok := ParseLanguage(string(l)); ok {
		return l
	}
	return DefaultLanguage
}
