package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// Balance возвращает баланс кредитов; отсутствие строки означает ноль.
func (p *Postgres) Balance(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var credits int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT credits FROM user_credits WHERE user_tg_id = $1`, userID).Scan(&credits)
	metrics.ObserveNetworkRequest("postgres", "credits_get", "user_credits", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return credits, err
}

// AddCredits прибавляет кредиты аддитивным upsert.
func (p *Postgres) AddCredits(ctx context.Context, userID int64, n int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO user_credits (user_tg_id, credits)
VALUES ($1, $2)
ON CONFLICT (user_tg_id) DO UPDATE SET credits = user_credits.credits + EXCLUDED.credits
`, userID, n)
	metrics.ObserveNetworkRequest("postgres", "credits_add", "user_credits", start, err)
	return err
}

// ConsumeCredit списывает кредиты условным обновлением.
func (p *Postgres) ConsumeCredit(ctx context.Context, userID int64, n int) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE user_credits SET credits = credits - $2
WHERE user_tg_id = $1 AND credits >= $2
`, userID, n)
	metrics.ObserveNetworkRequest("postgres", "credits_consume", "user_credits", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const paymentColumns = `id, user_tg_id, status, receipt_type, receipt_file_id, receipt_caption, admin_tg_id, created_at, updated_at`

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var (
		payment domain.Payment
		status  string
		kind    string
		caption sql.NullString
		adminID sql.NullInt64
	)
	if err := row.Scan(&payment.ID, &payment.UserID, &status, &kind, &payment.Receipt.FileID, &caption, &adminID, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
		return domain.Payment{}, err
	}
	payment.Status = domain.PaymentStatus(status)
	payment.Receipt.Kind = domain.ReceiptKind(kind)
	payment.Caption = caption.String
	payment.AdminID = adminID.Int64
	return payment, nil
}

// CreatePayment создаёт платёж в статусе pending.
func (p *Postgres) CreatePayment(ctx context.Context, userID int64, receipt domain.Receipt, caption string) (int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var id int64
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO payments (user_tg_id, status, receipt_type, receipt_file_id, receipt_caption)
VALUES ($1, 'pending', $2, $3, NULLIF($4, ''))
RETURNING id
`, userID, string(receipt.Kind), receipt.FileID, caption).Scan(&id)
	metrics.ObserveNetworkRequest("postgres", "payments_create", "payments", start, err)
	return id, err
}

// GetPayment возвращает платёж по ID.
func (p *Postgres) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	payment, err := scanPayment(p.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	metrics.ObserveNetworkRequest("postgres", "payments_get", "payments", start, err)
	return payment, notFound(err)
}

// PendingPayment возвращает последний pending-платёж пользователя.
func (p *Postgres) PendingPayment(ctx context.Context, userID int64) (domain.Payment, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	payment, err := scanPayment(p.pool.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payments
WHERE user_tg_id = $1 AND status = 'pending'
ORDER BY id DESC
LIMIT 1
`, userID))
	metrics.ObserveNetworkRequest("postgres", "payments_pending", "payments", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, false, nil
	}
	if err != nil {
		return domain.Payment{}, false, err
	}
	return payment, true, nil
}

// ResolvePayment меняет статус, только если платёж ещё в pending.
func (p *Postgres) ResolvePayment(ctx context.Context, id int64, status domain.PaymentStatus, adminID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE payments SET status = $2, admin_tg_id = $3, updated_at = now()
WHERE id = $1 AND status = 'pending'
`, id, string(status), adminID)
	metrics.ObserveNetworkRequest("postgres", "payments_resolve", "payments", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// PaymentStats считает платежи по статусам.
func (p *Postgres) PaymentStats(ctx context.Context) (domain.PaymentStats, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT status, COUNT(*) FROM payments GROUP BY status`)
	metrics.ObserveNetworkRequest("postgres", "payments_stats", "payments", start, err)
	if err != nil {
		return domain.PaymentStats{}, err
	}
	defer rows.Close()
	var stats domain.PaymentStats
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return domain.PaymentStats{}, err
		}
		switch domain.PaymentStatus(status) {
		case domain.PaymentPending:
			stats.Pending = n
		case domain.PaymentApproved:
			stats.Approved = n
		case domain.PaymentRejected:
			stats.Rejected = n
		}
	}
	return stats, rows.Err()
}

// SaveLink добавляет связь админского сообщения с пользователем.
func (p *Postgres) SaveLink(ctx context.Context, link domain.MessageLink) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	userMessage := sql.NullInt32{Int32: int32(link.UserMessageID), Valid: link.UserMessageID != 0}
	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO message_links (user_tg_id, user_message_id, admin_chat_id, admin_message_id)
VALUES ($1, $2, $3, $4)
`, link.UserID, userMessage, link.AdminChatID, link.AdminMessageID)
	metrics.ObserveNetworkRequest("postgres", "message_links_insert", "message_links", start, err)
	return err
}

// FindLink ищет самую свежую связь по админскому сообщению.
func (p *Postgres) FindLink(ctx context.Context, adminChatID int64, adminMessageID int) (domain.MessageLink, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var (
		link        domain.MessageLink
		userMessage sql.NullInt32
	)
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, user_tg_id, user_message_id, admin_chat_id, admin_message_id, created_at
FROM message_links
WHERE admin_chat_id = $1 AND admin_message_id = $2
ORDER BY id DESC
LIMIT 1
`, adminChatID, adminMessageID).Scan(&link.ID, &link.UserID, &userMessage, &link.AdminChatID, &link.AdminMessageID, &link.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "message_links_find", "message_links", start, err)
	if err != nil {
		return domain.MessageLink{}, notFound(err)
	}
	link.UserMessageID = int(userMessage.Int32)
	return link, nil
}

// CountLinks возвращает количество пересланных сообщений.
func (p *Postgres) CountLinks(ctx context.Context) (int, error) {
	return p.count(ctx, "message_links")
}
