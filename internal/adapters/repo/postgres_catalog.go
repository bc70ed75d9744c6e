package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

// UpsertChannel добавляет канал или обновляет ссылку и название по chat_ref.
func (p *Postgres) UpsertChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var joinURL, title sql.NullString
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO channels (chat_ref, join_url, title)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
ON CONFLICT (chat_ref) DO UPDATE SET join_url = EXCLUDED.join_url, title = EXCLUDED.title
RETURNING id, chat_ref, join_url, title, created_at
`, ch.ChatRef, ch.JoinURL, ch.Title).Scan(&ch.ID, &ch.ChatRef, &joinURL, &title, &ch.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "channels_upsert", "channels", start, err)
	ch.JoinURL = joinURL.String
	ch.Title = title.String
	return ch, err
}

// DeleteChannel удаляет канал.
func (p *Postgres) DeleteChannel(ctx context.Context, id int64) (bool, error) {
	return p.deleteByID(ctx, "channels", id)
}

func (p *Postgres) deleteByID(ctx context.Context, table string, id int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", table+"_delete", table, start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListChannels возвращает каналы в порядке добавления.
func (p *Postgres) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, chat_ref, join_url, title, created_at FROM channels ORDER BY id`)
	metrics.ObserveNetworkRequest("postgres", "channels_list", "channels", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var channels []domain.Channel
	for rows.Next() {
		var (
			ch             domain.Channel
			joinURL, title sql.NullString
		)
		if err := rows.Scan(&ch.ID, &ch.ChatRef, &joinURL, &title, &ch.CreatedAt); err != nil {
			return nil, err
		}
		ch.JoinURL = joinURL.String
		ch.Title = title.String
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (p *Postgres) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx pgx.Tx) error) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", op, start, err)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", op, start, err)
	return err
}

// lockCards сериализует изменения активной карты, чтобы параллельные операции
// не нарушали cards_single_active_idx.
func lockCards(ctx context.Context, tx pgx.Tx) error {
	start := time.Now()
	_, err := tx.Exec(ctx, `LOCK TABLE cards IN SHARE ROW EXCLUSIVE MODE`)
	metrics.ObserveNetworkRequest("postgres", "cards_lock", "cards", start, err)
	return err
}

// AddCard добавляет карту; если активной карты нет, новая становится активной.
func (p *Postgres) AddCard(ctx context.Context, owner, number string) (domain.Card, error) {
	card := domain.Card{OwnerName: owner, Number: number}
	err := p.inTx(ctx, "cards", func(ctx context.Context, tx pgx.Tx) error {
		if err := lockCards(ctx, tx); err != nil {
			return err
		}
		start := time.Now()
		err := tx.QueryRow(ctx, `
INSERT INTO cards (owner_name, card_number, is_active)
VALUES ($1, $2, NOT EXISTS (SELECT 1 FROM cards WHERE is_active))
RETURNING id, is_active, created_at
`, owner, number).Scan(&card.ID, &card.Active, &card.CreatedAt)
		metrics.ObserveNetworkRequest("postgres", "cards_insert", "cards", start, err)
		return err
	})
	return card, err
}

// ActivateCard делает карту единственной активной.
func (p *Postgres) ActivateCard(ctx context.Context, id int64) (bool, error) {
	found := false
	err := p.inTx(ctx, "cards", func(ctx context.Context, tx pgx.Tx) error {
		if err := lockCards(ctx, tx); err != nil {
			return err
		}
		start := time.Now()
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1)`, id).Scan(&found)
		metrics.ObserveNetworkRequest("postgres", "cards_exists", "cards", start, err)
		if err != nil || !found {
			return err
		}
		start = time.Now()
		_, err = tx.Exec(ctx, `UPDATE cards SET is_active = false WHERE is_active AND id <> $1`, id)
		metrics.ObserveNetworkRequest("postgres", "cards_deactivate", "cards", start, err)
		if err != nil {
			return err
		}
		start = time.Now()
		_, err = tx.Exec(ctx, `UPDATE cards SET is_active = true WHERE id = $1`, id)
		metrics.ObserveNetworkRequest("postgres", "cards_activate", "cards", start, err)
		return err
	})
	return found, err
}

// DeleteCard удаляет карту; если она была активной, активной становится самая старая из оставшихся.
func (p *Postgres) DeleteCard(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := p.inTx(ctx, "cards", func(ctx context.Context, tx pgx.Tx) error {
		if err := lockCards(ctx, tx); err != nil {
			return err
		}
		var wasActive bool
		start := time.Now()
		err := tx.QueryRow(ctx, `DELETE FROM cards WHERE id = $1 RETURNING is_active`, id).Scan(&wasActive)
		metrics.ObserveNetworkRequest("postgres", "cards_delete", "cards", start, err)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		if !wasActive {
			return nil
		}
		start = time.Now()
		_, err = tx.Exec(ctx, `
UPDATE cards SET is_active = true
WHERE id = (SELECT id FROM cards ORDER BY created_at, id LIMIT 1)
`)
		metrics.ObserveNetworkRequest("postgres", "cards_promote", "cards", start, err)
		return err
	})
	return removed, err
}

// ListCards возвращает карты в порядке добавления.
func (p *Postgres) ListCards(ctx context.Context) ([]domain.Card, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, owner_name, card_number, is_active, created_at FROM cards ORDER BY created_at, id`)
	metrics.ObserveNetworkRequest("postgres", "cards_list", "cards", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cards []domain.Card
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(&card.ID, &card.OwnerName, &card.Number, &card.Active, &card.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// ActiveCard возвращает активную карту. Если карты есть, но ни одна не активна,
// активирует самую старую.
func (p *Postgres) ActiveCard(ctx context.Context) (domain.Card, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var card domain.Card
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, owner_name, card_number, is_active, created_at FROM cards WHERE is_active LIMIT 1
`).Scan(&card.ID, &card.OwnerName, &card.Number, &card.Active, &card.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "cards_active", "cards", start, err)
	if err == nil {
		return card, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Card{}, false, err
	}

	start = time.Now()
	err = p.pool.QueryRow(ctx, `
UPDATE cards SET is_active = true
WHERE id = (SELECT id FROM cards ORDER BY created_at, id LIMIT 1)
  AND NOT EXISTS (SELECT 1 FROM cards WHERE is_active)
RETURNING id, owner_name, card_number, is_active, created_at
`).Scan(&card.ID, &card.OwnerName, &card.Number, &card.Active, &card.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "cards_heal_active", "cards", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Card{}, false, nil
	}
	if err != nil {
		return domain.Card{}, false, err
	}
	return card, true, nil
}

// AddAdmin добавляет администратора.
func (p *Postgres) AddAdmin(ctx context.Context, tgID int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `INSERT INTO admins (tg_id) VALUES ($1) ON CONFLICT (tg_id) DO NOTHING`, tgID)
	metrics.ObserveNetworkRequest("postgres", "admins_add", "admins", start, err)
	return err
}

// RemoveAdmin удаляет администратора.
func (p *Postgres) RemoveAdmin(ctx context.Context, tgID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM admins WHERE tg_id = $1`, tgID)
	metrics.ObserveNetworkRequest("postgres", "admins_remove", "admins", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListAdmins возвращает администраторов.
func (p *Postgres) ListAdmins(ctx context.Context) ([]int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT tg_id FROM admins ORDER BY tg_id`)
	metrics.ObserveNetworkRequest("postgres", "admins_list", "admins", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsAdmin проверяет администратора.
func (p *Postgres) IsAdmin(ctx context.Context, tgID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var ok bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE tg_id = $1)`, tgID).Scan(&ok)
	metrics.ObserveNetworkRequest("postgres", "admins_exists", "admins", start, err)
	return ok, err
}

// GetSettings возвращает все настройки.
func (p *Postgres) GetSettings(ctx context.Context) (map[string]string, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT key, value FROM settings`)
	metrics.ObserveNetworkRequest("postgres", "settings_list", "settings", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// SetSetting сохраняет настройку из схемы.
func (p *Postgres) SetSetting(ctx context.Context, key domain.SettingKey, value string) error {
	if _, err := domain.ParseSettingKey(string(key)); err != nil {
		return fmt.Errorf("настройка %q: %w", key, err)
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, string(key), value)
	metrics.ObserveNetworkRequest("postgres", "settings_set", "settings", start, err)
	return err
}

// UpsertMenu создаёт меню или обновляет ответ. Возвращает true, если запись создана.
func (p *Postgres) UpsertMenu(ctx context.Context, name, text string) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var inserted bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO custom_menus (button_text, response_text) VALUES ($1, $2)
ON CONFLICT (button_text) DO UPDATE SET response_text = EXCLUDED.response_text
RETURNING (xmax = 0)
`, name, text).Scan(&inserted)
	metrics.ObserveNetworkRequest("postgres", "custom_menus_upsert", "custom_menus", start, err)
	return inserted, err
}

// DeleteMenu удаляет меню.
func (p *Postgres) DeleteMenu(ctx context.Context, id int64) (bool, error) {
	return p.deleteByID(ctx, "custom_menus", id)
}

// ListMenus возвращает меню в порядке добавления.
func (p *Postgres) ListMenus(ctx context.Context) ([]domain.CustomMenu, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, button_text, response_text, created_at FROM custom_menus ORDER BY id`)
	metrics.ObserveNetworkRequest("postgres", "custom_menus_list", "custom_menus", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var menus []domain.CustomMenu
	for rows.Next() {
		var menu domain.CustomMenu
		if err := rows.Scan(&menu.ID, &menu.ButtonText, &menu.ResponseText, &menu.CreatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, menu)
	}
	return menus, rows.Err()
}

// ClaimBirthday ставит отметку (пользователь, год); true только для первого вызова.
func (p *Postgres) ClaimBirthday(ctx context.Context, userID int64, year int) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
INSERT INTO birthday_notifications (user_tg_id, year) VALUES ($1, $2)
ON CONFLICT (user_tg_id, year) DO NOTHING
`, userID, year)
	metrics.ObserveNetworkRequest("postgres", "birthday_claim", "birthday_notifications", start, err)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseBirthday снимает отметку, если ни одно уведомление не доставлено.
func (p *Postgres) ReleaseBirthday(ctx context.Context, userID int64, year int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM birthday_notifications WHERE user_tg_id = $1 AND year = $2`, userID, year)
	metrics.ObserveNetworkRequest("postgres", "birthday_release", "birthday_notifications", start, err)
	return err
}
