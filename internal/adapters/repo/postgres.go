package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/metrics"
)

//go:embed schema/schema.sql
var schemaSQL string

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Migrate применяет схему и заполняет настройки по умолчанию. Повторный вызов безопасен.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, schemaSQL)
	metrics.ObserveNetworkRequest("postgres", "migrate", "schema", start, err)
	if err != nil {
		return fmt.Errorf("применение схемы: %w", err)
	}
	for key, value := range domain.DefaultSettingValues() {
		start = time.Now()
		_, err = p.pool.Exec(ctx, `INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`, string(key), value)
		metrics.ObserveNetworkRequest("postgres", "settings_seed", "settings", start, err)
		if err != nil {
			return fmt.Errorf("заполнение настроек: %w", err)
		}
	}
	return nil
}

// Ping проверяет соединение.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	err := p.pool.Ping(ctx)
	metrics.ObserveNetworkRequest("postgres", "ping", "pool", start, err)
	return err
}

const userColumns = `tg_id, username, full_name, language, first_name, last_name, phone, birth_date, registered_at, no_payment_attempts, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user                                 domain.User
		username, fullName, language         sql.NullString
		firstName, lastName, phone, birthday sql.NullString
		registeredAt                         sql.NullTime
	)
	err := row.Scan(&user.TGID, &username, &fullName, &language, &firstName, &lastName, &phone, &birthday, &registeredAt, &user.NoPaymentAttempts, &user.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	user.Username = username.String
	user.FullName = fullName.String
	user.Language = domain.Language(language.String)
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Phone = phone.String
	user.BirthDate = birthday.String
	if registeredAt.Valid {
		ts := registeredAt.Time
		user.RegisteredAt = &ts
	}
	return user, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// UpsertUser реализует domain.UserRepo.
func (p *Postgres) UpsertUser(ctx context.Context, profile domain.TelegramProfile) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `
INSERT INTO users (tg_id, username, full_name)
VALUES ($1, NULLIF($2, ''), $3)
ON CONFLICT (tg_id) DO UPDATE SET username = EXCLUDED.username, full_name = EXCLUDED.full_name
RETURNING `+userColumns, profile.ID, strings.TrimSpace(profile.Username), profile.DisplayName()))
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	return user, err
}

// GetUser возвращает пользователя по Telegram ID.
func (p *Postgres) GetUser(ctx context.Context, tgID int64) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID))
	metrics.ObserveNetworkRequest("postgres", "users_get", "users", start, err)
	return user, notFound(err)
}

func (p *Postgres) execUser(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, query, args...)
	metrics.ObserveNetworkRequest("postgres", op, "users", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLanguage сохраняет язык интерфейса.
func (p *Postgres) SetLanguage(ctx context.Context, tgID int64, lang domain.Language) error {
	return p.execUser(ctx, "users_set_language", `UPDATE users SET language = $2 WHERE tg_id = $1`, tgID, string(lang))
}

// SaveRegistration сохраняет регистрацию одной строкой.
func (p *Postgres) SaveRegistration(ctx context.Context, tgID int64, reg domain.Registration) error {
	return p.execUser(ctx, "users_save_registration", `
UPDATE users
SET first_name = $2, last_name = $3, phone = $4, birth_date = $5, registered_at = now()
WHERE tg_id = $1
`, tgID, reg.FirstName, reg.LastName, reg.Phone, reg.BirthDate)
}

var profileColumns = map[domain.ProfileField]string{
	domain.ProfileFirstName: "first_name",
	domain.ProfileLastName:  "last_name",
	domain.ProfilePhone:     "phone",
	domain.ProfileBirthDate: "birth_date",
}

// UpdateProfileField обновляет одно поле профиля.
func (p *Postgres) UpdateProfileField(ctx context.Context, tgID int64, field domain.ProfileField, value string) error {
	column, ok := profileColumns[field]
	if !ok {
		return fmt.Errorf("неизвестное поле профиля %q", field)
	}
	return p.execUser(ctx, "users_update_"+column, `UPDATE users SET `+column+` = $2 WHERE tg_id = $1`, tgID, value)
}

// IncrementNoPayment увеличивает счётчик и возвращает новое значение.
func (p *Postgres) IncrementNoPayment(ctx context.Context, tgID int64) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var attempts int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
UPDATE users SET no_payment_attempts = no_payment_attempts + 1
WHERE tg_id = $1
RETURNING no_payment_attempts
`, tgID).Scan(&attempts)
	metrics.ObserveNetworkRequest("postgres", "users_increment_no_payment", "users", start, err)
	return attempts, notFound(err)
}

// ResetNoPayment обнуляет счётчик попыток.
func (p *Postgres) ResetNoPayment(ctx context.Context, tgID int64) error {
	err := p.execUser(ctx, "users_reset_no_payment", `UPDATE users SET no_payment_attempts = 0 WHERE tg_id = $1`, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteUserData удаляет пользователя; кредиты, платежи, связи и отметки удаляются каскадом.
func (p *Postgres) DeleteUserData(ctx context.Context, tgID int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM users WHERE tg_id = $1`, tgID)
	metrics.ObserveNetworkRequest("postgres", "users_delete", "users", start, err)
	return err
}

// CountUsers возвращает количество пользователей.
func (p *Postgres) CountUsers(ctx context.Context) (int, error) {
	return p.count(ctx, "users")
}

func (p *Postgres) count(ctx context.Context, table string) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var n int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	metrics.ObserveNetworkRequest("postgres", table+"_count", table, start, err)
	return n, err
}

// ListByBirthday возвращает пользователей, чей день рождения приходится на MM-DD.
func (p *Postgres) ListByBirthday(ctx context.Context, monthDay string) ([]domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
WHERE birth_date IS NOT NULL AND substr(birth_date, 6, 5) = $1
ORDER BY first_name, last_name
`, monthDay)
	metrics.ObserveNetworkRequest("postgres", "users_list_birthday", "users", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
