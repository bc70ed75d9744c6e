package moderation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tg-gate-bot/internal/domain"
)

const decisionPrefix = "pay:"

var (
	// ErrMalformedDecision — данные кнопки не распознаны.
	ErrMalformedDecision = errors.New("некорректные данные решения")
	// ErrDecisionID — ID платежа не число.
	ErrDecisionID = errors.New("некорректный ID платежа")
)

// IsDecision сообщает, что callback относится к решению по платежу.
func IsDecision(data string) bool {
	return strings.HasPrefix(data, decisionPrefix)
}

// ParseDecision разбирает данные вида pay:approve:<id> и pay:reject:<id>.
func ParseDecision(data string) (int64, bool, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "pay" {
		return 0, false, ErrMalformedDecision
	}
	var approve bool
	switch parts[1] {
	case "approve":
		approve = true
	case "reject":
	default:
		return 0, false, ErrMalformedDecision
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false, ErrDecisionID
	}
	return id, approve, nil
}

// ReviewKeyboard — кнопки решения под чеком.
func ReviewKeyboard(paymentID int64) *domain.Keyboard {
	return domain.InlineKeyboard(domain.Row(
		domain.Button{Text: "Tasdiqlash", Data: fmt.Sprintf("pay:approve:%d", paymentID)},
		domain.Button{Text: "Rad etish", Data: fmt.Sprintf("pay:reject:%d", paymentID)},
	))
}
