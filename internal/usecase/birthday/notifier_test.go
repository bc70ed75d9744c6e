package birthday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/domain"
)

type recordingNotifier struct {
	texts []string
	sent  int
}

func (r *recordingNotifier) NotifyAdmins(_ context.Context, text string) int {
	r.texts = append(r.texts, text)
	return r.sent
}

type failingUsers struct{}

func (failingUsers) ListByBirthday(context.Context, string) ([]domain.User, error) {
	return nil, errors.New("db down")
}

func seed(t *testing.T, store *repo.Memory, id int64, birth string) {
	t.Helper()
	ctx := context.Background()
	_, err := store.UpsertUser(ctx, domain.TelegramProfile{ID: id, Username: "ali"})
	require.NoError(t, err)
	require.NoError(t, store.SaveRegistration(ctx, id, domain.Registration{
		FirstName: "Ali", LastName: "<Valiyev>", Phone: "+998901234567", BirthDate: birth,
	}))
}

func TestRunAtNotifiesOncePerYear(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemory()
	seed(t, store, 1, "1990-10-18")
	seed(t, store, 2, "1985-03-01")
	notifier := &recordingNotifier{sent: 2}
	n := NewNotifier(store, store, notifier, DefaultOffset, zerolog.Nop())

	// 20:00 UTC 17 октября — уже 18 октября в UTC+5.
	now := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)
	report, err := n.RunAt(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, Report{Candidates: 1, Notified: 1}, report)
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "User ID: <code>1</code>")
	assert.Contains(t, notifier.texts[0], "Familiya: &lt;Valiyev&gt;")
	assert.Contains(t, notifier.texts[0], "Username: @ali")

	report, err = n.RunAt(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Report{Candidates: 1, Skipped: 1}, report)
	assert.Len(t, notifier.texts, 1)

	report, err = n.RunAt(ctx, now.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Notified)
}

func TestRunAtRetriesWhenNobodyReceived(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemory()
	seed(t, store, 1, "2000-01-02")
	notifier := &recordingNotifier{}
	n := NewNotifier(store, store, notifier, DefaultOffset, zerolog.Nop())
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	report, err := n.RunAt(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, Report{Candidates: 1, Failed: 1}, report)

	notifier.sent = 1
	report, err = n.RunAt(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Report{Candidates: 1, Notified: 1}, report)
	assert.Len(t, notifier.texts, 2)
}

func TestRunAtListError(t *testing.T) {
	n := NewNotifier(failingUsers{}, repo.NewMemory(), &recordingNotifier{}, DefaultOffset, zerolog.Nop())
	_, err := n.RunAt(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestTextPlaceholders(t *testing.T) {
	text := Text(domain.User{TGID: 5})
	assert.Contains(t, text, "Telefon: <code>-</code>")
	assert.Contains(t, text, "Sana: <code>-</code>")
	assert.Contains(t, text, "Username: (yo'q)")
	assert.Contains(t, text, "25% chegirma")
}
