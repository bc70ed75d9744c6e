package moderation

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/adapters/telegram/telegramtest"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/ledger"
)

type fixture struct {
	store     *repo.Memory
	messenger *telegramtest.Messenger
	catalog   *catalog.Service
	ledger    *ledger.Service
	bridge    *Bridge
}

func newFixture(t *testing.T, admins ...int64) fixture {
	t.Helper()
	store := repo.NewMemory()
	messenger := telegramtest.New()
	cat := catalog.NewService(store, messenger, domain.ProtectedAdmins(admins), zerolog.Nop())
	require.NoError(t, cat.EnsureAdmins(context.Background()))
	led := ledger.NewService(store, store, nil, zerolog.Nop())
	return fixture{
		store:     store,
		messenger: messenger,
		catalog:   cat,
		ledger:    led,
		bridge:    NewBridge(messenger, store, store, cat, cat, led, zerolog.Nop()),
	}
}

var sender = domain.TelegramProfile{ID: 7, Username: "ali", FirstName: "Ali", LastName: "<Valiyev>"}

func TestRelaySkipsUnreachableAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, 200, 300)
	f.messenger.Fail[domain.ChatID(200)] = domain.ErrRecipientUnreachable

	sent, err := f.bridge.Relay(ctx, sender, 7, 55)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	texts := f.messenger.Texts(domain.ChatID(100))
	require.Len(t, texts, 1)
	assert.Equal(t, "Yangi user xabari.\nUser ID: <code>7</code>\nUser: Ali &lt;Valiyev&gt;\nUsername: @ali\n\nYangi xabar:", texts[0])

	copies := f.messenger.To(domain.ChatID(300))
	require.Len(t, copies, 2)
	assert.Equal(t, "copy", copies[1].Kind)
	assert.Equal(t, int64(7), copies[1].FromChat)
	assert.Equal(t, 55, copies[1].MessageID)

	links, err := f.store.CountLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, links)
	link, err := f.store.FindLink(ctx, 300, copies[1].ResultID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.UserID)
	assert.Equal(t, 55, link.UserMessageID)
}

func TestRelayToInbox(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	_, err := f.catalog.UpdateSetting(ctx, domain.SettingInboxChatID, "-1009")
	require.NoError(t, err)

	sent, err := f.bridge.Relay(ctx, sender, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Empty(t, f.messenger.To(domain.ChatID(100)))
	assert.Len(t, f.messenger.To("-1009"), 2)

	f.messenger.Fail["-1009"] = domain.ErrBadRequest
	sent, err = f.bridge.Relay(ctx, sender, 7, 2)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestSubmitReceiptFanOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, 200)
	f.messenger.Fail[domain.ChatID(100)] = domain.ErrRecipientUnreachable

	id, err := f.ledger.SubmitPayment(ctx, 7, domain.Receipt{Kind: domain.ReceiptPhoto, FileID: "file"}, "")
	require.NoError(t, err)
	payment, err := f.ledger.Payment(ctx, id)
	require.NoError(t, err)

	sent, err := f.bridge.SubmitReceipt(ctx, sender, payment)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	out := f.messenger.To(domain.ChatID(200))
	require.Len(t, out, 1)
	assert.Equal(t, "receipt", out[0].Kind)
	assert.Equal(t, payment.Receipt, out[0].Receipt)
	assert.Contains(t, out[0].Text, "Caption: -")
	require.NotNil(t, out[0].Opts.Keyboard)
	assert.Equal(t, "pay:approve:1", out[0].Opts.Keyboard.Rows[0][0].Data)
	assert.Equal(t, "pay:reject:1", out[0].Opts.Keyboard.Rows[0][1].Data)
}

func TestDecideOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, 200)
	_, err := f.store.UpsertUser(ctx, sender)
	require.NoError(t, err)
	_, err = f.store.IncrementNoPayment(ctx, sender.ID)
	require.NoError(t, err)
	id, err := f.ledger.SubmitPayment(ctx, sender.ID, domain.Receipt{Kind: domain.ReceiptDocument, FileID: "d"}, "chek")
	require.NoError(t, err)

	payment, err := f.bridge.Decide(ctx, 100, id, true)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentApproved, payment.Status)

	_, err = f.bridge.Decide(ctx, 200, id, false)
	assert.ErrorIs(t, err, domain.ErrPaymentResolved)

	user, err := f.store.GetUser(ctx, sender.ID)
	require.NoError(t, err)
	assert.Zero(t, user.NoPaymentAttempts)
	balance, _ := f.ledger.Balance(ctx, sender.ID)
	assert.Equal(t, 1, balance)
}

func TestReplyToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	_, err := f.bridge.Relay(ctx, sender, 7, 55)
	require.NoError(t, err)
	copied := f.messenger.To(domain.ChatID(100))[1].ResultID

	ok, err := f.bridge.ReplyToUser(ctx, 100, copied, 900)
	require.NoError(t, err)
	require.True(t, ok)
	reply := f.messenger.To(domain.ChatID(7))
	require.Len(t, reply, 1)
	assert.Equal(t, int64(100), reply[0].FromChat)
	assert.Equal(t, 900, reply[0].MessageID)
	assert.Equal(t, 55, reply[0].ReplyTo)

	ok, err = f.bridge.ReplyToUser(ctx, 100, 424242, 901)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseDecision(t *testing.T) {
	cases := map[string]struct {
		id      int64
		approve bool
		err     error
	}{
		"pay:approve:12": {id: 12, approve: true},
		"pay:reject:3":   {id: 3},
		"pay:maybe:3":    {err: ErrMalformedDecision},
		"pay:approve":    {err: ErrMalformedDecision},
		"pay:approve:x":  {err: ErrDecisionID},
	}
	for data, expected := range cases {
		id, approve, err := ParseDecision(data)
		if expected.err != nil {
			assert.ErrorIs(t, err, expected.err, data)
			continue
		}
		require.NoError(t, err, data)
		assert.Equal(t, expected.id, id, data)
		assert.Equal(t, expected.approve, approve, data)
	}
}

func TestSuspiciousAlertGoesToAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100)
	_, err := f.catalog.UpdateSetting(ctx, domain.SettingInboxChatID, "@inbox")
	require.NoError(t, err)

	sent := f.bridge.AlertSuspicious(ctx, domain.TelegramProfile{ID: 5}, 3)
	assert.Equal(t, 1, sent)
	texts := f.messenger.Texts(domain.ChatID(100))
	require.Len(t, texts, 1)
	assert.Equal(t, "Shubhali holat kuzatildi.\n\nUser ID: <code>5</code>\nUser: NoName\nUsername: (yo'q)\nTo'lovsiz urinishlar: 3", texts[0])
}
