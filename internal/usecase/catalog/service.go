// Package catalog управляет данными админ-панели: каналами, картами,
// настройками, администраторами и пользовательскими меню.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
)

// TitleResolver получает название чата у транспорта.
type TitleResolver interface {
	ChatTitle(ctx context.Context, ref domain.ChatRef) (string, error)
}

// ProtectedAdminError возвращается при попытке удалить администратора из конфигурации.
type ProtectedAdminError struct {
	ID   int64
	Name string
}

func (e *ProtectedAdminError) Error() string {
	return fmt.Sprintf("%s (%d) нельзя удалить", e.Name, e.ID)
}

// Is позволяет сравнивать ошибку с domain.ErrSuperAdmin.
func (e *ProtectedAdminError) Is(target error) bool {
	return target == domain.ErrSuperAdmin
}

// Service — операции админ-панели поверх хранилища.
type Service struct {
	store     domain.Store
	titles    TitleResolver
	protected domain.ProtectedAdmins
	log       zerolog.Logger
}

// NewService создаёт сервис каталога. protected[0] — SUPER_ADMIN_ID, protected[1] — ADMIN2_ID.
func NewService(store domain.Store, titles TitleResolver, protected domain.ProtectedAdmins, logger zerolog.Logger) *Service {
	return &Service{store: store, titles: titles, protected: protected, log: logger}
}

// Protected возвращает администраторов из конфигурации.
func (s *Service) Protected() domain.ProtectedAdmins {
	return s.protected
}

// EnsureAdmins записывает администраторов из конфигурации в хранилище.
func (s *Service) EnsureAdmins(ctx context.Context) error {
	for _, id := range s.protected.IDs() {
		if err := s.store.AddAdmin(ctx, id); err != nil {
			return fmt.Errorf("добавление администратора %d: %w", id, err)
		}
	}
	return nil
}

// IsAdmin проверяет роль по конфигурации и таблице администраторов.
func (s *Service) IsAdmin(ctx context.Context, tgID int64) (bool, error) {
	if s.protected.Contains(tgID) {
		return true, nil
	}
	return s.store.IsAdmin(ctx, tgID)
}

// Admins возвращает всех администраторов без повторов по возрастанию ID.
func (s *Service) Admins(ctx context.Context) ([]int64, error) {
	ids, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение администраторов: %w", err)
	}
	seen := make(map[int64]struct{}, len(ids)+len(s.protected))
	out := make([]int64, 0, len(ids)+len(s.protected))
	for _, id := range append(ids, s.protected.IDs()...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// AddAdmin добавляет администратора.
func (s *Service) AddAdmin(ctx context.Context, tgID int64) error {
	return s.store.AddAdmin(ctx, tgID)
}

var protectedNames = []string{"SUPER_ADMIN_ID", "ADMIN2_ID"}

// ProtectedName возвращает имя переменной окружения, которой задан защищённый администратор.
func ProtectedName(protected domain.ProtectedAdmins, tgID int64) (string, bool) {
	for i, id := range protected {
		if id == 0 || id != tgID {
			continue
		}
		if i < len(protectedNames) {
			return protectedNames[i], true
		}
		return "ADMIN_ID", true
	}
	return "", false
}

// CheckRemovable возвращает ProtectedAdminError для администраторов из конфигурации.
func (s *Service) CheckRemovable(tgID int64) error {
	if name, ok := ProtectedName(s.protected, tgID); ok {
		return &ProtectedAdminError{ID: tgID, Name: name}
	}
	return nil
}

// RemoveAdmin удаляет администратора, кроме защищённых.
func (s *Service) RemoveAdmin(ctx context.Context, tgID int64) error {
	if err := s.CheckRemovable(tgID); err != nil {
		return err
	}
	ok, err := s.store.RemoveAdmin(ctx, tgID)
	if err != nil {
		return fmt.Errorf("удаление администратора: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// AddChannel сохраняет канал; название запрашивается у транспорта и может отсутствовать.
func (s *Service) AddChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error) {
	if s.titles != nil {
		title, err := s.titles.ChatTitle(ctx, domain.ChatRef(ch.ChatRef))
		if err != nil {
			s.log.Debug().Err(err).Str("chat", ch.ChatRef).Msg("catalog: название канала недоступно")
		}
		ch.Title = title
	}
	saved, err := s.store.UpsertChannel(ctx, ch)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("сохранение канала: %w", err)
	}
	return saved, nil
}

// RemoveChannel удаляет канал по ID.
func (s *Service) RemoveChannel(ctx context.Context, id int64) error {
	return removed(s.store.DeleteChannel(ctx, id))
}

// Channels возвращает обязательные каналы.
func (s *Service) Channels(ctx context.Context) ([]domain.Channel, error) {
	return s.store.ListChannels(ctx)
}

// AddCard сохраняет карту; первая карта становится активной.
func (s *Service) AddCard(ctx context.Context, owner, number string) (domain.Card, error) {
	owner, err := ValidCardOwner(owner)
	if err != nil {
		return domain.Card{}, err
	}
	if number, err = ValidCardNumber(number); err != nil {
		return domain.Card{}, err
	}
	card, err := s.store.AddCard(ctx, owner, number)
	if err != nil {
		return domain.Card{}, fmt.Errorf("сохранение карты: %w", err)
	}
	return card, nil
}

// ActivateCard делает карту активной.
func (s *Service) ActivateCard(ctx context.Context, id int64) error {
	return removed(s.store.ActivateCard(ctx, id))
}

// RemoveCard удаляет карту.
func (s *Service) RemoveCard(ctx context.Context, id int64) error {
	return removed(s.store.DeleteCard(ctx, id))
}

// Cards возвращает карты.
func (s *Service) Cards(ctx context.Context) ([]domain.Card, error) {
	return s.store.ListCards(ctx)
}

// ActiveCard возвращает активную карту.
func (s *Service) ActiveCard(ctx context.Context) (domain.Card, bool, error) {
	return s.store.ActiveCard(ctx)
}

// Settings возвращает типизированные настройки.
func (s *Service) Settings(ctx context.Context) (domain.Settings, error) {
	raw, err := s.store.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("получение настроек: %w", err)
	}
	return domain.SettingsFromMap(raw), nil
}

// UpdateSetting проверяет ввод администратора и сохраняет нормализованное значение.
func (s *Service) UpdateSetting(ctx context.Context, key domain.SettingKey, input string) (string, error) {
	value, err := domain.ValidateSetting(key, input)
	if err != nil {
		return "", err
	}
	if err := s.store.SetSetting(ctx, key, value); err != nil {
		return "", fmt.Errorf("сохранение настройки %s: %w", key, err)
	}
	return value, nil
}

// SaveMenu создаёт или обновляет меню по названию. Возвращает true при создании.
func (s *Service) SaveMenu(ctx context.Context, name, response string) (bool, error) {
	name, err := ValidMenuName(name)
	if err != nil {
		return false, err
	}
	if response, err = ValidMenuResponse(response); err != nil {
		return false, err
	}
	created, err := s.store.UpsertMenu(ctx, name, response)
	if err != nil {
		return false, fmt.Errorf("сохранение меню: %w", err)
	}
	return created, nil
}

// RemoveMenu удаляет меню.
func (s *Service) RemoveMenu(ctx context.Context, id int64) error {
	return removed(s.store.DeleteMenu(ctx, id))
}

// Menus возвращает пользовательские меню.
func (s *Service) Menus(ctx context.Context) ([]domain.CustomMenu, error) {
	return s.store.ListMenus(ctx)
}

// Stats собирает статистику для админ-панели.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("подсчёт пользователей: %w", err)
	}
	messages, err := s.store.CountLinks(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("подсчёт сообщений: %w", err)
	}
	payments, err := s.store.PaymentStats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("статистика платежей: %w", err)
	}
	return domain.Stats{Users: users, Messages: messages, Payments: payments}, nil
}

func removed(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// IsNotFound сообщает, что запись с таким ID отсутствует.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
