package domain

// KeyboardKind определяет способ отображения клавиатуры.
type KeyboardKind int

const (
	KeyboardInline KeyboardKind = iota + 1
	KeyboardReply
	KeyboardRemove
)

// Button — кнопка клавиатуры. Для inline используется Data или URL,
// для reply-клавиатуры важны Text и RequestContact.
type Button struct {
	Text           string
	Data           string
	URL            string
	RequestContact bool
}

// Keyboard описывает намерение показать клавиатуру без привязки к транспорту.
type Keyboard struct {
	Kind    KeyboardKind
	Rows    [][]Button
	OneTime bool
}

// InlineKeyboard собирает inline-клавиатуру из рядов.
func InlineKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Kind: KeyboardInline, Rows: rows}
}

// ReplyKeyboard собирает постоянную клавиатуру из рядов.
func ReplyKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Kind: KeyboardReply, Rows: rows}
}

// RemoveKeyboard убирает постоянную клавиатуру.
func RemoveKeyboard() *Keyboard {
	return &Keyboard{Kind: KeyboardRemove}
}

// Row собирает ряд кнопок.
func Row(buttons ...Button) []Button {
	return buttons
}
