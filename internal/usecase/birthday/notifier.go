// Package birthday уведомляет администраторов о днях рождения пользователей.
package birthday

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
	"tg-gate-bot/internal/infra/metrics"
)

// DefaultOffset — смещение часового пояса, в котором определяется «сегодня».
const DefaultOffset = 5 * time.Hour

// AdminNotifier рассылает текст всем администраторам и возвращает число доставок.
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, text string) int
}

// Users — пользователи с датой рождения.
type Users interface {
	ListByBirthday(ctx context.Context, monthDay string) ([]domain.User, error)
}

// Report — итог одного прохода.
type Report struct {
	Candidates int
	Notified   int
	Skipped    int
	Failed     int
}

// Notifier выполняет проход по сегодняшним именинникам.
type Notifier struct {
	users    Users
	markers  domain.BirthdayRepo
	notifier AdminNotifier
	zone     *time.Location
	log      zerolog.Logger
}

// NewNotifier создаёт уведомитель. offset задаёт фиксированный часовой пояс.
func NewNotifier(users Users, markers domain.BirthdayRepo, notifier AdminNotifier, offset time.Duration, logger zerolog.Logger) *Notifier {
	return &Notifier{
		users:    users,
		markers:  markers,
		notifier: notifier,
		zone:     time.FixedZone(fmt.Sprintf("UTC%+d", int(offset.Hours())), int(offset.Seconds())),
		log:      logger,
	}
}

// RunAt уведомляет о пользователях, у которых день рождения в день now.
// Отметка ставится до рассылки и снимается, если ни один администратор не получил сообщение,
// поэтому повторный или параллельный проход не уведомляет дважды.
func (n *Notifier) RunAt(ctx context.Context, now time.Time) (Report, error) {
	local := now.In(n.zone)
	year := local.Year()
	users, err := n.users.ListByBirthday(ctx, local.Format("01-02"))
	if err != nil {
		return Report{}, fmt.Errorf("список именинников: %w", err)
	}

	report := Report{Candidates: len(users)}
	for _, user := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		claimed, err := n.markers.ClaimBirthday(ctx, user.TGID, year)
		if err != nil {
			n.log.Error().Err(err).Int64("user", user.TGID).Msg("birthday: не удалось поставить отметку")
			report.Failed++
			continue
		}
		if !claimed {
			report.Skipped++
			metrics.BirthdayNotifications.WithLabelValues("skipped").Inc()
			continue
		}
		if sent := n.notifier.NotifyAdmins(ctx, Text(user)); sent > 0 {
			report.Notified++
			metrics.BirthdayNotifications.WithLabelValues("sent").Inc()
			continue
		}
		report.Failed++
		metrics.BirthdayNotifications.WithLabelValues("failed").Inc()
		if err := n.markers.ReleaseBirthday(ctx, user.TGID, year); err != nil {
			n.log.Error().Err(err).Int64("user", user.TGID).Msg("birthday: не удалось снять отметку")
		}
	}
	n.log.Info().
		Int("candidates", report.Candidates).
		Int("notified", report.Notified).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("birthday: проход завершён")
	return report, nil
}

// Text — уведомление администраторам о дне рождения.
func Text(user domain.User) string {
	phone, date := user.Phone, user.BirthDate
	if phone == "" {
		phone = "-"
	}
	if date == "" {
		date = "-"
	}
	username := "(yo'q)"
	if user.Username != "" {
		username = "@" + user.Username
	}
	return fmt.Sprintf("Bugun foydalanuvchi tug'ilgan kuni.\n\n"+
		"User ID: <code>%d</code>\nIsm: %s\nFamiliya: %s\nTelefon: <code>%s</code>\nSana: <code>%s</code>\nUsername: %s\n\n"+
		"Shablon: Bugun tug'ilgan kuningiz ekan, sizga 25%% chegirma.",
		user.TGID, i18n.Escape(user.FirstName), i18n.Escape(user.LastName),
		i18n.Escape(phone), i18n.Escape(date), i18n.Escape(username))
}
