package domain

import "time"

// LedgerEventType описывает тип события журнала кредитов.
type LedgerEventType string

const (
	EventPaymentCreated  LedgerEventType = "payment_created"
	EventPaymentApproved LedgerEventType = "payment_approved"
	EventPaymentRejected LedgerEventType = "payment_rejected"
	EventCreditGranted   LedgerEventType = "credit_granted"
	EventCreditConsumed  LedgerEventType = "credit_consumed"
	EventCreditRefunded  LedgerEventType = "credit_refunded"
)

// LedgerEvent публикуется после каждого изменения кредитов или платежей.
type LedgerEvent struct {
	ID         string          `json:"id"`
	Type       LedgerEventType `json:"type"`
	UserID     int64           `json:"user_id"`
	PaymentID  int64           `json:"payment_id,omitempty"`
	Amount     int             `json:"amount,omitempty"`
	ActorID    int64           `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
