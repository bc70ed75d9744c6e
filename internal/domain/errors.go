package domain

import "errors"

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrPaymentResolved — платёж уже рассмотрен другим администратором.
	ErrPaymentResolved = errors.New("платёж уже рассмотрен")
	// ErrInsufficientCredit — списание не применено из-за нехватки кредитов.
	ErrInsufficientCredit = errors.New("недостаточно кредитов")
	// ErrRecipientUnreachable — получатель заблокировал бота или чат недоступен.
	ErrRecipientUnreachable = errors.New("получатель недоступен")
	// ErrBadRequest — транспорт отклонил запрос.
	ErrBadRequest = errors.New("некорректный запрос к транспорту")
	// ErrSuperAdmin — попытка удалить администратора из конфигурации.
	ErrSuperAdmin = errors.New("администратор из конфигурации не удаляется")
	// ErrUnknownSetting — ключ вне схемы настроек.
	ErrUnknownSetting = errors.New("неизвестная настройка")
	// ErrInvalidInput — ввод не прошёл проверку формата.
	ErrInvalidInput = errors.New("некорректный ввод")
	// ErrOutOfRange — число вне допустимого диапазона.
	ErrOutOfRange = errors.New("значение вне диапазона")
	// ErrTooShort и ErrTooLong — ограничения длины.
	ErrTooShort = errors.New("значение слишком короткое")
	ErrTooLong  = errors.New("значение слишком длинное")
	// ErrReserved — имя занято системной кнопкой.
	ErrReserved = errors.New("имя зарезервировано")
	// ErrForeignContact — контакт принадлежит другому пользователю.
	ErrForeignContact = errors.New("контакт принадлежит другому пользователю")
)

// IsDeliveryError сообщает, что ошибка доставки постоянная и повтор не нужен.
func IsDeliveryError(err error) bool {
	return errors.Is(err, ErrRecipientUnreachable) || errors.Is(err, ErrBadRequest)
}
