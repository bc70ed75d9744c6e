// Package telegramtest содержит записывающий мессенджер для тестов.
package telegramtest

import (
	"context"
	"sync"

	"tg-gate-bot/internal/domain"
)

// Outgoing — одно исходящее сообщение.
type Outgoing struct {
	Kind      string
	To        domain.ChatRef
	Text      string
	Opts      domain.SendOptions
	Receipt   domain.Receipt
	FromChat  int64
	MessageID int
	ReplyTo   int
	ResultID  int
}

// Answer — ответ на callback.
type Answer struct {
	CallbackID string
	Text       string
	Alert      bool
}

// Cleared — снятая inline-клавиатура.
type Cleared struct {
	ChatID    int64
	MessageID int
}

// Messenger записывает весь исходящий трафик и реализует domain.Messenger.
type Messenger struct {
	mu sync.Mutex

	Sent    []Outgoing
	Answers []Answer
	Cleared []Cleared

	// Fail задаёт ошибку доставки для получателя.
	Fail map[domain.ChatRef]error
	// Titles задаёт названия чатов.
	Titles map[domain.ChatRef]string

	nextID int
}

var _ domain.Messenger = (*Messenger)(nil)

// New создаёт пустой мессенджер.
func New() *Messenger {
	return &Messenger{Fail: make(map[domain.ChatRef]error), Titles: make(map[domain.ChatRef]string)}
}

func (m *Messenger) record(out Outgoing) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[out.To]; err != nil {
		return 0, err
	}
	m.nextID++
	out.ResultID = 1000 + m.nextID
	m.Sent = append(m.Sent, out)
	return out.ResultID, nil
}

// SendText реализует domain.Messenger.
func (m *Messenger) SendText(_ context.Context, to domain.ChatRef, text string, opts domain.SendOptions) (int, error) {
	return m.record(Outgoing{Kind: "text", To: to, Text: text, Opts: opts})
}

// SendReceipt реализует domain.Messenger.
func (m *Messenger) SendReceipt(_ context.Context, to domain.ChatRef, receipt domain.Receipt, caption string, opts domain.SendOptions) (int, error) {
	return m.record(Outgoing{Kind: "receipt", To: to, Text: caption, Opts: opts, Receipt: receipt})
}

// CopyMessage реализует domain.Messenger.
func (m *Messenger) CopyMessage(_ context.Context, to domain.ChatRef, fromChatID int64, messageID, replyTo int) (int, error) {
	return m.record(Outgoing{Kind: "copy", To: to, FromChat: fromChatID, MessageID: messageID, ReplyTo: replyTo})
}

// ClearKeyboard реализует domain.Messenger.
func (m *Messenger) ClearKeyboard(_ context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared = append(m.Cleared, Cleared{ChatID: chatID, MessageID: messageID})
	return nil
}

// AnswerCallback реализует domain.Messenger.
func (m *Messenger) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answers = append(m.Answers, Answer{CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

// ChatTitle реализует domain.Messenger.
func (m *Messenger) ChatTitle(_ context.Context, ref domain.ChatRef) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	title, ok := m.Titles[ref]
	if !ok {
		return "", domain.ErrBadRequest
	}
	return title, nil
}

// To возвращает сообщения, отправленные получателю.
func (m *Messenger) To(to domain.ChatRef) []Outgoing {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Outgoing
	for _, o := range m.Sent {
		if o.To == to {
			out = append(out, o)
		}
	}
	return out
}

// Texts возвращает тексты сообщений получателю.
func (m *Messenger) Texts(to domain.ChatRef) []string {
	var texts []string
	for _, o := range m.To(to) {
		if o.Kind == "text" {
			texts = append(texts, o.Text)
		}
	}
	return texts
}

// LastAnswer возвращает последний ответ на callback.
func (m *Messenger) LastAnswer() (Answer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Answers) == 0 {
		return Answer{}, false
	}
	return m.Answers[len(m.Answers)-1], true
}

// Reset очищает записанный трафик.
func (m *Messenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent, m.Answers, m.Cleared = nil, nil, nil
}
