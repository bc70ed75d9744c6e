package domain

// ActorRole описывает роль инициатора события.
type ActorRole string

const (
	ActorUser  ActorRole = "user"
	ActorAdmin ActorRole = "admin"
)

// Actor — отправитель события с ролью, определённой один раз на событие.
type Actor struct {
	Role    ActorRole
	Profile TelegramProfile
}

// NewActor определяет роль по признаку администратора.
func NewActor(profile TelegramProfile, isAdmin bool) Actor {
	role := ActorUser
	if isAdmin {
		role = ActorAdmin
	}
	return Actor{Role: role, Profile: profile}
}

// IsAdmin сообщает, действует ли отправитель как администратор.
func (a Actor) IsAdmin() bool {
	return a.Role == ActorAdmin
}

// ID возвращает Telegram ID отправителя.
func (a Actor) ID() int64 {
	return a.Profile.ID
}

// ProtectedAdmins хранит администраторов из конфигурации, которых нельзя удалить.
type ProtectedAdmins []int64

// Contains сообщает, защищён ли администратор.
func (p ProtectedAdmins) Contains(id int64) bool {
	for _, protected := range p {
		if protected != 0 && protected == id {
			return true
		}
	}
	return false
}

// IDs возвращает ненулевые идентификаторы.
func (p ProtectedAdmins) IDs() []int64 {
	out := make([]int64, 0, len(p))
	for _, id := range p {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}
