package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/i18n"
)

type fakeTitles map[domain.ChatRef]string

func (f fakeTitles) ChatTitle(_ context.Context, ref domain.ChatRef) (string, error) {
	title, ok := f[ref]
	if !ok {
		return "", domain.ErrBadRequest
	}
	return title, nil
}

func TestParseChannelInput(t *testing.T) {
	cases := map[string]struct {
		ref, url string
		err      error
	}{
		"@kanal":                         {ref: "@kanal"},
		" -1001234567890 ":               {ref: "-1001234567890"},
		"@kanal|https://t.me/kanal":      {ref: "@kanal", url: "https://t.me/kanal"},
		"@kanal | http://example.com/x ": {ref: "@kanal", url: "http://example.com/x"},
		"":                               {err: ErrEmptyInput},
		"kanal":                          {err: ErrChatRefInvalid},
		"@":                              {err: ErrChatRefInvalid},
		"-12345":                         {err: ErrChatRefInvalid},
		"-100abc":                        {err: ErrChatRefInvalid},
		"@kanal|t.me/kanal":              {err: ErrJoinURLInvalid},
	}
	for input, expected := range cases {
		ch, err := ParseChannelInput(input)
		if expected.err != nil {
			if !errors.Is(err, expected.err) {
				t.Fatalf("для %q ожидали %v, получили %v", input, expected.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("для %q не ожидали ошибку: %v", input, err)
		}
		if ch.ChatRef != expected.ref || ch.JoinURL != expected.url {
			t.Fatalf("для %q получили %+v", input, ch)
		}
	}
}

func TestValidators(t *testing.T) {
	_, err := ValidCardOwner(" A ")
	assert.ErrorIs(t, err, ErrCardOwnerShort)
	_, err = ValidCardNumber("8600 1234 567")
	assert.ErrorIs(t, err, ErrCardNumber)
	number, err := ValidCardNumber(" 8600 1234 5678 9012 ")
	require.NoError(t, err)
	assert.Equal(t, "8600 1234 5678 9012", number)

	_, err = ParseID("abc")
	assert.ErrorIs(t, err, ErrIDInvalid)

	_, err = ValidMenuName(strings.Repeat("x", 65))
	assert.ErrorIs(t, err, ErrMenuNameLong)
	_, err = ValidMenuName("  ")
	assert.ErrorIs(t, err, ErrMenuNameEmpty)
	_, err = ValidMenuName(strings.ToUpper(i18n.T(domain.LangRuss, i18n.KeyMenuProfileBtn, nil)))
	assert.ErrorIs(t, err, ErrMenuNameReserved)
	_, err = ValidMenuResponse(strings.Repeat("я", 4001))
	assert.ErrorIs(t, err, ErrMenuTextLong)
}

func TestChannelsLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemory(), fakeTitles{"@kanal": "Kanal"}, nil, zerolog.Nop())

	ch, err := svc.AddChannel(ctx, domain.Channel{ChatRef: "@kanal"})
	require.NoError(t, err)
	assert.Equal(t, "Kanal", ch.Title)
	other, err := svc.AddChannel(ctx, domain.Channel{ChatRef: "@yopiq"})
	require.NoError(t, err)
	assert.Empty(t, other.Title)

	again, err := svc.AddChannel(ctx, domain.Channel{ChatRef: "@kanal", JoinURL: "https://t.me/+abc"})
	require.NoError(t, err)
	assert.Equal(t, ch.ID, again.ID)

	require.NoError(t, svc.RemoveChannel(ctx, other.ID))
	assert.True(t, IsNotFound(svc.RemoveChannel(ctx, other.ID)))

	channels, err := svc.Channels(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Majburiy kanallar:\n1. @kanal (Kanal)\nURL: https://t.me/+abc", FormatChannels(channels))
}

func TestAdminsProtected(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemory(), nil, domain.ProtectedAdmins{100, 200}, zerolog.Nop())
	require.NoError(t, svc.EnsureAdmins(ctx))
	require.NoError(t, svc.AddAdmin(ctx, 300))

	var protected *ProtectedAdminError
	err := svc.RemoveAdmin(ctx, 100)
	require.ErrorAs(t, err, &protected)
	assert.Equal(t, "SUPER_ADMIN_ID", protected.Name)
	assert.ErrorIs(t, err, domain.ErrSuperAdmin)

	err = svc.RemoveAdmin(ctx, 200)
	require.ErrorAs(t, err, &protected)
	assert.Equal(t, "ADMIN2_ID", protected.Name)

	require.NoError(t, svc.RemoveAdmin(ctx, 300))
	assert.ErrorIs(t, svc.RemoveAdmin(ctx, 300), domain.ErrNotFound)

	ids, err := svc.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, ids)

	ok, err := svc.IsAdmin(ctx, 200)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = svc.IsAdmin(ctx, 300)
	assert.False(t, ok)
}

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemory(), nil, nil, zerolog.Nop())

	_, err := svc.UpdateSetting(ctx, domain.SettingSuspiciousThreshold, "101")
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = svc.UpdateSetting(ctx, domain.SettingInstagramURL, "https://example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateSetting(ctx, domain.SettingSuspiciousThreshold, " 5 ")
	require.NoError(t, err)
	_, err = svc.UpdateSetting(ctx, domain.SettingInboxChatID, "-1001234567890")
	require.NoError(t, err)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sozlamalar:\nInstagram URL: (kiritilmagan)\nShubhali urinish limiti: 5\nQabul chat ID: -1001234567890", FormatSettings(settings))

	_, err = svc.UpdateSetting(ctx, domain.SettingInboxChatID, "-")
	require.NoError(t, err)
	settings, _ = svc.Settings(ctx)
	_, ok := settings.InboxTarget()
	assert.False(t, ok)
}

func TestCardsAndStats(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemory()
	svc := NewService(store, nil, nil, zerolog.Nop())

	first, err := svc.AddCard(ctx, "Ali Valiyev", "8600 1234 5678 9012")
	require.NoError(t, err)
	second, err := svc.AddCard(ctx, "Vali", "9860 0000 0000 0001")
	require.NoError(t, err)
	require.NoError(t, svc.ActivateCard(ctx, second.ID))
	assert.ErrorIs(t, svc.ActivateCard(ctx, 999), domain.ErrNotFound)

	cards, err := svc.Cards(ctx)
	require.NoError(t, err)
	expected := "Kartalar:\n" +
		"1. Ali Valiyev | <code>8600 1234 5678 9012</code>\n" +
		"2. Vali | <code>9860 0000 0000 0001</code> [AKTIV]"
	assert.Equal(t, expected, FormatCards(cards))

	require.NoError(t, svc.RemoveCard(ctx, second.ID))
	active, ok, err := svc.ActiveCard(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)

	_, err = store.UpsertUser(ctx, domain.TelegramProfile{ID: 1, FirstName: "A"})
	require.NoError(t, err)
	_, err = store.CreatePayment(ctx, 1, domain.Receipt{Kind: domain.ReceiptPhoto, FileID: "f"}, "")
	require.NoError(t, err)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Statistika:\nUsers: 1\nYuborilgan xabarlar: 0\nTo'lov pending: 1\nTo'lov approved: 0\nTo'lov rejected: 0", FormatStats(stats))
}

func TestMenus(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repo.NewMemory(), nil, nil, zerolog.Nop())

	created, err := svc.SaveMenu(ctx, "Narxlar", "Narx: 10$")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.SaveMenu(ctx, "Narxlar", "Narx: 12$")
	require.NoError(t, err)
	assert.False(t, created)

	menus, err := svc.Menus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Menyular ro'yxati:\n\n1. Narxlar\nJavob: Narx: 12$", FormatMenus(menus))

	assert.ErrorIs(t, svc.RemoveMenu(ctx, 42), domain.ErrNotFound)
	require.NoError(t, svc.RemoveMenu(ctx, menus[0].ID))
	menus, _ = svc.Menus(ctx)
	assert.Equal(t, "Menyular yo'q.", FormatMenus(menus))
}
