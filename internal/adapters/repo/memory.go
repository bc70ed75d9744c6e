package repo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"tg-gate-bot/internal/domain"
)

type birthdayKey struct {
	userID int64
	year   int
}

// Memory хранит все данные в памяти процесса. Используется без PG_DSN и в тестах.
// Условные операции выполняются под одним мьютексом и поэтому линеаризуемы.
type Memory struct {
	mu sync.Mutex

	users     map[int64]domain.User
	credits   map[int64]int
	payments  map[int64]domain.Payment
	links     []domain.MessageLink
	channels  []domain.Channel
	cards     []domain.Card
	admins    map[int64]time.Time
	settings  map[string]string
	menus     []domain.CustomMenu
	birthdays map[birthdayKey]struct{}

	nextID int64
	now    func() time.Time
}

var _ domain.Store = (*Memory)(nil)

// NewMemory создаёт пустое хранилище с настройками по умолчанию.
func NewMemory() *Memory {
	m := &Memory{
		users:     make(map[int64]domain.User),
		credits:   make(map[int64]int),
		payments:  make(map[int64]domain.Payment),
		admins:    make(map[int64]time.Time),
		settings:  make(map[string]string),
		birthdays: make(map[birthdayKey]struct{}),
		now:       time.Now,
	}
	for key, value := range domain.DefaultSettingValues() {
		m.settings[string(key)] = value
	}
	return m
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// Ping всегда успешен.
func (m *Memory) Ping(context.Context) error { return nil }

// UpsertUser создаёт пользователя или обновляет username и имя.
func (m *Memory) UpsertUser(_ context.Context, profile domain.TelegramProfile) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[profile.ID]
	if !ok {
		user = domain.User{TGID: profile.ID, CreatedAt: m.now().UTC()}
	}
	user.Username = strings.TrimSpace(profile.Username)
	user.FullName = profile.DisplayName()
	m.users[profile.ID] = user
	return user, nil
}

// GetUser возвращает пользователя.
func (m *Memory) GetUser(_ context.Context, tgID int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[tgID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (m *Memory) updateUser(tgID int64, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&user)
	m.users[tgID] = user
	return nil
}

// SetLanguage сохраняет язык.
func (m *Memory) SetLanguage(_ context.Context, tgID int64, lang domain.Language) error {
	return m.updateUser(tgID, func(u *domain.User) { u.Language = lang })
}

// SaveRegistration сохраняет четыре поля регистрации одной операцией.
func (m *Memory) SaveRegistration(_ context.Context, tgID int64, reg domain.Registration) error {
	return m.updateUser(tgID, func(u *domain.User) {
		u.FirstName, u.LastName, u.Phone, u.BirthDate = reg.FirstName, reg.LastName, reg.Phone, reg.BirthDate
		now := m.now().UTC()
		u.RegisteredAt = &now
	})
}

// UpdateProfileField обновляет одно поле профиля.
func (m *Memory) UpdateProfileField(_ context.Context, tgID int64, field domain.ProfileField, value string) error {
	return m.updateUser(tgID, func(u *domain.User) { *u = field.Apply(*u, value) })
}

// IncrementNoPayment увеличивает счётчик попыток без оплаты.
func (m *Memory) IncrementNoPayment(_ context.Context, tgID int64) (int, error) {
	var attempts int
	err := m.updateUser(tgID, func(u *domain.User) {
		u.NoPaymentAttempts++
		attempts = u.NoPaymentAttempts
	})
	return attempts, err
}

// ResetNoPayment обнуляет счётчик попыток без оплаты.
func (m *Memory) ResetNoPayment(_ context.Context, tgID int64) error {
	err := m.updateUser(tgID, func(u *domain.User) { u.NoPaymentAttempts = 0 })
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteUserData удаляет пользователя и все его записи.
func (m *Memory) DeleteUserData(_ context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, tgID)
	delete(m.credits, tgID)
	for id, p := range m.payments {
		if p.UserID == tgID {
			delete(m.payments, id)
		}
	}
	kept := m.links[:0]
	for _, link := range m.links {
		if link.UserID != tgID {
			kept = append(kept, link)
		}
	}
	m.links = kept
	for key := range m.birthdays {
		if key.userID == tgID {
			delete(m.birthdays, key)
		}
	}
	return nil
}

// CountUsers возвращает количество пользователей.
func (m *Memory) CountUsers(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// ListByBirthday возвращает пользователей с датой рождения MM-DD.
func (m *Memory) ListByBirthday(_ context.Context, monthDay string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, user := range m.users {
		if user.MonthDay() == monthDay {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TGID < out[j].TGID })
	return out, nil
}

// Balance возвращает баланс кредитов.
func (m *Memory) Balance(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credits[userID], nil
}

// AddCredits прибавляет кредиты.
func (m *Memory) AddCredits(_ context.Context, userID int64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credits[userID] += n
	return nil
}

// ConsumeCredit списывает кредиты, только если баланс останется неотрицательным.
func (m *Memory) ConsumeCredit(_ context.Context, userID int64, n int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.credits[userID] < n {
		return false, nil
	}
	m.credits[userID] -= n
	return true, nil
}

// CreatePayment создаёт платёж в статусе pending.
func (m *Memory) CreatePayment(_ context.Context, userID int64, receipt domain.Receipt, caption string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	p := domain.Payment{
		ID:        m.id(),
		UserID:    userID,
		Status:    domain.PaymentPending,
		Receipt:   receipt,
		Caption:   caption,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.payments[p.ID] = p
	return p.ID, nil
}

// GetPayment возвращает платёж.
func (m *Memory) GetPayment(_ context.Context, id int64) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domain.Payment{}, domain.ErrNotFound
	}
	return p, nil
}

// PendingPayment возвращает последний pending-платёж пользователя.
func (m *Memory) PendingPayment(_ context.Context, userID int64) (domain.Payment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		found domain.Payment
		ok    bool
	)
	for _, p := range m.payments {
		if p.UserID == userID && p.Status == domain.PaymentPending && (!ok || p.ID > found.ID) {
			found, ok = p, true
		}
	}
	return found, ok, nil
}

// ResolvePayment меняет статус только у платежа в pending.
func (m *Memory) ResolvePayment(_ context.Context, id int64, status domain.PaymentStatus, adminID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != domain.PaymentPending {
		return false, nil
	}
	p.Status = status
	p.AdminID = adminID
	p.UpdatedAt = m.now().UTC()
	m.payments[id] = p
	return true, nil
}

// PaymentStats считает платежи по статусам.
func (m *Memory) PaymentStats(context.Context) (domain.PaymentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats domain.PaymentStats
	for _, p := range m.payments {
		switch p.Status {
		case domain.PaymentPending:
			stats.Pending++
		case domain.PaymentApproved:
			stats.Approved++
		case domain.PaymentRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// SaveLink добавляет связь админского сообщения с пользователем.
func (m *Memory) SaveLink(_ context.Context, link domain.MessageLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link.ID = m.id()
	link.CreatedAt = m.now().UTC()
	m.links = append(m.links, link)
	return nil
}

// FindLink ищет самую свежую связь по админскому сообщению.
func (m *Memory) FindLink(_ context.Context, adminChatID int64, adminMessageID int) (domain.MessageLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.links) - 1; i >= 0; i-- {
		link := m.links[i]
		if link.AdminChatID == adminChatID && link.AdminMessageID == adminMessageID {
			return link, nil
		}
	}
	return domain.MessageLink{}, domain.ErrNotFound
}

// CountLinks возвращает количество связей.
func (m *Memory) CountLinks(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links), nil
}

// UpsertChannel добавляет канал или обновляет его по ChatRef.
func (m *Memory) UpsertChannel(_ context.Context, ch domain.Channel) (domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.channels {
		if existing.ChatRef == ch.ChatRef {
			existing.JoinURL = ch.JoinURL
			existing.Title = ch.Title
			m.channels[i] = existing
			return existing, nil
		}
	}
	ch.ID = m.id()
	ch.CreatedAt = m.now().UTC()
	m.channels = append(m.channels, ch)
	return ch, nil
}

// DeleteChannel удаляет канал.
func (m *Memory) DeleteChannel(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ch := range m.channels {
		if ch.ID == id {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListChannels возвращает каналы в порядке добавления.
func (m *Memory) ListChannels(context.Context) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Channel(nil), m.channels...), nil
}

// AddCard добавляет карту; первая карта становится активной.
func (m *Memory) AddCard(_ context.Context, owner, number string) (domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card := domain.Card{ID: m.id(), OwnerName: owner, Number: number, CreatedAt: m.now().UTC()}
	card.Active = m.activeIndex() < 0
	m.cards = append(m.cards, card)
	return card, nil
}

func (m *Memory) activeIndex() int {
	for i, card := range m.cards {
		if card.Active {
			return i
		}
	}
	return -1
}

// ActivateCard делает карту единственной активной.
func (m *Memory) ActivateCard(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, card := range m.cards {
		if card.ID == id {
			found = true
		}
	}
	if !found {
		return false, nil
	}
	for i := range m.cards {
		m.cards[i].Active = m.cards[i].ID == id
	}
	return true, nil
}

// DeleteCard удаляет карту; при удалении активной активируется самая старая из оставшихся.
func (m *Memory) DeleteCard(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, card := range m.cards {
		if card.ID != id {
			continue
		}
		m.cards = append(m.cards[:i], m.cards[i+1:]...)
		if card.Active && len(m.cards) > 0 {
			m.cards[0].Active = true
		}
		return true, nil
	}
	return false, nil
}

// ListCards возвращает карты в порядке добавления.
func (m *Memory) ListCards(context.Context) ([]domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Card(nil), m.cards...), nil
}

// ActiveCard возвращает активную карту.
func (m *Memory) ActiveCard(context.Context) (domain.Card, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.activeIndex(); i >= 0 {
		return m.cards[i], true, nil
	}
	if len(m.cards) > 0 {
		m.cards[0].Active = true
		return m.cards[0], true, nil
	}
	return domain.Card{}, false, nil
}

// AddAdmin добавляет администратора.
func (m *Memory) AddAdmin(_ context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[tgID]; !ok {
		m.admins[tgID] = m.now().UTC()
	}
	return nil
}

// RemoveAdmin удаляет администратора.
func (m *Memory) RemoveAdmin(_ context.Context, tgID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[tgID]; !ok {
		return false, nil
	}
	delete(m.admins, tgID)
	return true, nil
}

// ListAdmins возвращает администраторов по возрастанию ID.
func (m *Memory) ListAdmins(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.admins))
	for id := range m.admins {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// IsAdmin проверяет администратора.
func (m *Memory) IsAdmin(_ context.Context, tgID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.admins[tgID]
	return ok, nil
}

// GetSettings возвращает копию настроек.
func (m *Memory) GetSettings(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

// SetSetting сохраняет настройку.
func (m *Memory) SetSetting(_ context.Context, key domain.SettingKey, value string) error {
	if _, err := domain.ParseSettingKey(string(key)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[string(key)] = value
	return nil
}

// UpsertMenu создаёт меню или обновляет ответ по имени. Возвращает true при создании.
func (m *Memory) UpsertMenu(_ context.Context, name, text string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, menu := range m.menus {
		if menu.ButtonText == name {
			m.menus[i].ResponseText = text
			return false, nil
		}
	}
	m.menus = append(m.menus, domain.CustomMenu{ID: m.id(), ButtonText: name, ResponseText: text, CreatedAt: m.now().UTC()})
	return true, nil
}

// DeleteMenu удаляет меню.
func (m *Memory) DeleteMenu(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, menu := range m.menus {
		if menu.ID == id {
			m.menus = append(m.menus[:i], m.menus[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ListMenus возвращает меню в порядке добавления.
func (m *Memory) ListMenus(context.Context) ([]domain.CustomMenu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CustomMenu(nil), m.menus...), nil
}

// ClaimBirthday ставит отметку, если её ещё нет.
func (m *Memory) ClaimBirthday(_ context.Context, userID int64, year int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := birthdayKey{userID: userID, year: year}
	if _, ok := m.birthdays[key]; ok {
		return false, nil
	}
	m.birthdays[key] = struct{}{}
	return true, nil
}

// ReleaseBirthday снимает отметку после неудачной доставки.
func (m *Memory) ReleaseBirthday(_ context.Context, userID int64, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.birthdays, birthdayKey{userID: userID, year: year})
	return nil
}
