package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-gate-bot/internal/adapters/repo"
	"tg-gate-bot/internal/adapters/telegram/telegramtest"
	"tg-gate-bot/internal/domain"
	"tg-gate-bot/internal/infra/cache"
	"tg-gate-bot/internal/usecase/catalog"
	"tg-gate-bot/internal/usecase/gate"
	"tg-gate-bot/internal/usecase/ledger"
	"tg-gate-bot/internal/usecase/moderation"
)

type fakeOracle map[domain.ChatRef]domain.MemberStatus

func (f fakeOracle) MemberStatus(_ context.Context, chat domain.ChatRef, _ int64) (domain.MemberStatus, error) {
	if status, ok := f[chat]; ok {
		return status, nil
	}
	return "member", nil
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	store    *repo.Memory
	msg      *telegramtest.Messenger
	oracle   fakeOracle
	sessions *cache.MemorySessions
	coord    *Coordinator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()
	store := repo.NewMemory()
	msg := telegramtest.New()
	oracle := fakeOracle{}
	sessions := cache.NewMemorySessions()

	cat := catalog.NewService(store, msg, domain.ProtectedAdmins{100, 200}, logger)
	require.NoError(t, cat.EnsureAdmins(ctx))
	led := ledger.NewService(store, store, nil, logger)
	bridge := moderation.NewBridge(msg, store, store, cat, cat, led, logger)
	exec := NewExecutor(msg, store, led, bridge, cat, logger)
	coord := NewCoordinator(Deps{
		Users:    store,
		Sessions: sessions,
		Catalog:  cat,
		Gate:     gate.New(store, oracle, logger),
		Ledger:   led,
		Executor: exec,
		Logger:   logger,
		Now:      func() time.Time { return testNow },
	})

	_, err := store.AddCard(ctx, "Ali Valiyev", "8600 1234 5678 9012")
	require.NoError(t, err)
	return &harness{t: t, ctx: ctx, store: store, msg: msg, oracle: oracle, sessions: sessions, coord: coord}
}

func (h *harness) handle(ev Event) {
	h.t.Helper()
	require.NoError(h.t, h.coord.Handle(h.ctx, ev))
}

func (h *harness) register(id int64) {
	h.t.Helper()
	_, err := h.store.UpsertUser(h.ctx, domain.TelegramProfile{ID: id})
	require.NoError(h.t, err)
	require.NoError(h.t, h.store.SetLanguage(h.ctx, id, domain.LangLotin))
	require.NoError(h.t, h.store.SaveRegistration(h.ctx, id, domain.Registration{
		FirstName: "Ali", LastName: "Valiyev", Phone: "+998901234567", BirthDate: "1990-03-15",
	}))
}

func (h *harness) lastText(id int64) string {
	h.t.Helper()
	texts := h.msg.Texts(domain.ChatID(id))
	require.NotEmpty(h.t, texts)
	return texts[len(texts)-1]
}

func (h *harness) state(id int64) domain.ConversationState {
	h.t.Helper()
	session, err := h.sessions.Load(h.ctx, id)
	require.NoError(h.t, err)
	return session.State
}

func TestRegistrationScenario(t *testing.T) {
	h := newHarness(t)

	h.handle(command(testUser, CommandStart))
	assert.Equal(t, "Tilni tanlang:", h.lastText(testUser.ID))

	h.handle(callback(testUser, CallbackLangPrefix+"lotin", 10))
	assert.Equal(t, "Registratsiya boshlanadi.\nIsmingizni yuboring.", h.lastText(testUser.ID))
	assert.Equal(t, domain.StateRegFirstName, h.state(testUser.ID))
	answer, ok := h.msg.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "Til saqlandi.", answer.Text)

	h.handle(message(testUser, "A", 11))
	assert.Equal(t, "Ismni to'g'ri kiriting.", h.lastText(testUser.ID))
	assert.Equal(t, domain.StateRegFirstName, h.state(testUser.ID))

	h.handle(message(testUser, "Ali", 12))
	h.handle(message(testUser, "Valiyev", 13))
	assert.Equal(t, domain.StateRegPhone, h.state(testUser.ID))

	foreign := message(testUser, "", 14)
	foreign.Contact = &Contact{UserID: 99, Phone: "+998901111111"}
	h.handle(foreign)
	assert.Equal(t, "Faqat o'zingizning raqamingizni yuboring.", h.lastText(testUser.ID))

	own := message(testUser, "", 15)
	own.Contact = &Contact{UserID: testUser.ID, Phone: "998 90 123 45 67"}
	h.handle(own)
	assert.Equal(t, domain.StateRegBirthDate, h.state(testUser.ID))

	h.handle(message(testUser, "15.03.1990", 16))
	assert.Equal(t, domain.StateIdle, h.state(testUser.ID))

	user, err := h.store.GetUser(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.True(t, user.IsRegistered())
	assert.Equal(t, "+998901234567", user.Phone)
	assert.Equal(t, "1990-03-15", user.BirthDate)
	assert.Contains(t, h.lastText(testUser.ID), "8600 1234 5678 9012")
}

func TestPaymentScenario(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)
	admin2 := domain.TelegramProfile{ID: 200}

	h.handle(message(testUser, "salom", 20))
	assert.Contains(t, h.lastText(testUser.ID), "Karta egasi: <b>Ali Valiyev</b>")

	photo := message(testUser, "", 21)
	photo.Receipt = &domain.Receipt{Kind: domain.ReceiptPhoto, FileID: "file-1"}
	photo.Caption = "chek"
	h.handle(photo)
	assert.Contains(t, h.lastText(testUser.ID), "Payment ID")

	payment, ok, err := h.store.PendingPayment(h.ctx, testUser.ID)
	require.NoError(t, err)
	require.True(t, ok)
	for _, admin := range []int64{100, 200} {
		sent := h.msg.To(domain.ChatID(admin))
		require.Len(t, sent, 1)
		assert.Equal(t, "receipt", sent[0].Kind)
		assert.Equal(t, "file-1", sent[0].Receipt.FileID)
		assert.Equal(t, moderation.ReviewKeyboard(payment.ID), sent[0].Opts.Keyboard)
	}

	h.handle(message(testUser, "qachon?", 22))
	assert.Equal(t, "Chekingiz tekshiruvda. Iltimos kuting.", h.lastText(testUser.ID))

	approve := callback(testAdmin, fmt.Sprintf("pay:approve:%d", payment.ID), 555)
	h.handle(approve)
	answer, _ := h.msg.LastAnswer()
	assert.Equal(t, "Tasdiqlandi", answer.Text)
	assert.Equal(t, "To'lovingiz tasdiqlandi.\nHabaringizni yuboring.", h.lastText(testUser.ID))
	assert.Equal(t, fmt.Sprintf("Payment <code>%d</code> holati: <b>approved</b>", payment.ID), h.lastText(testAdmin.ID))
	assert.Contains(t, h.msg.Cleared, telegramtest.Cleared{ChatID: testAdmin.ID, MessageID: 555})

	balance, err := h.store.Balance(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, balance)

	h.handle(callback(admin2, fmt.Sprintf("pay:reject:%d", payment.ID), 556))
	answer, _ = h.msg.LastAnswer()
	assert.Equal(t, telegramtest.Answer{CallbackID: "cb", Text: "Bu payment allaqachon ko'rilgan", Alert: true}, answer)

	h.handle(callback(admin2, "pay:approve:999999", 557))
	answer, _ = h.msg.LastAnswer()
	assert.Equal(t, "Payment topilmadi", answer.Text)
}

func TestRelayScenario(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)
	require.NoError(t, h.store.AddCredits(h.ctx, testUser.ID, 2))

	h.handle(message(testUser, "savol", 42))
	assert.Equal(t, "Xabaringiz yuborildi.\nQolgan limit: <b>1</b>.\nYana xabar yuborishingiz mumkin.", h.lastText(testUser.ID))

	var copied int
	for _, out := range h.msg.To(domain.ChatID(testAdmin.ID)) {
		if out.Kind == "copy" {
			copied = out.ResultID
			assert.Equal(t, testUser.ID, out.FromChat)
			assert.Equal(t, 42, out.MessageID)
		}
	}
	require.NotZero(t, copied)
	assert.Contains(t, h.msg.Texts(domain.ChatID(200))[0], "Yangi user xabari.")

	reply := message(testAdmin, "javob", 77)
	reply.QuotedMessageID = copied
	h.handle(reply)
	toUser := h.msg.To(domain.ChatID(testUser.ID))
	last := toUser[len(toUser)-1]
	assert.Equal(t, "copy", last.Kind)
	assert.Equal(t, testAdmin.ID, last.FromChat)
	assert.Equal(t, 77, last.MessageID)
	assert.Equal(t, 42, last.ReplyTo)

	h.msg.Fail[domain.ChatID(100)] = domain.ErrRecipientUnreachable
	h.msg.Fail[domain.ChatID(200)] = domain.ErrRecipientUnreachable
	h.handle(message(testUser, "yana", 43))
	assert.Equal(t, "Adminlarga xabar yuborib bo'lmadi. Keyinroq qayta urinib ko'ring.", h.lastText(testUser.ID))
	balance, err := h.store.Balance(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, balance)
}

func TestLastCreditAsksToPayAgain(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)
	require.NoError(t, h.store.AddCredits(h.ctx, testUser.ID, 1))

	h.handle(message(testUser, "savol", 42))
	texts := h.msg.Texts(domain.ChatID(testUser.ID))
	require.Len(t, texts, 2)
	assert.Equal(t, "Xabaringiz yuborildi.\nKeyingi xabar uchun qayta to'lov qiling.", texts[0])
	assert.Contains(t, texts[1], "8600 1234 5678 9012")
}

func TestGateScenario(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)
	_, err := h.store.UpsertChannel(h.ctx, domain.Channel{ChatRef: "@news"})
	require.NoError(t, err)
	h.oracle["@news"] = domain.MemberLeft

	h.handle(message(testUser, "salom", 30))
	sent := h.msg.To(domain.ChatID(testUser.ID))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "@news")
	assert.Equal(t, "https://t.me/news", sent[0].Opts.Keyboard.Rows[0][0].URL)

	h.handle(callback(testUser, CallbackCheckSubs, 31))
	answer, _ := h.msg.LastAnswer()
	assert.Equal(t, telegramtest.Answer{CallbackID: "cb", Text: "Obuna hali to'liq emas", Alert: true}, answer)

	h.oracle["@news"] = "member"
	h.handle(callback(testUser, CallbackCheckSubs, 32))
	answer, _ = h.msg.LastAnswer()
	assert.Equal(t, "Obuna tasdiqlandi", answer.Text)
	assert.Contains(t, h.lastText(testUser.ID), "8600 1234 5678 9012")
}

func TestCancelScenario(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.UpsertUser(h.ctx, testUser)
	require.NoError(t, err)
	require.NoError(t, h.store.SetLanguage(h.ctx, testUser.ID, domain.LangLotin))

	h.handle(command(testUser, CommandStart))
	h.handle(message(testUser, "Ali", 2))
	assert.Equal(t, domain.StateRegLastName, h.state(testUser.ID))

	h.handle(command(testUser, CommandCancel))
	assert.Equal(t, domain.StateIdle, h.state(testUser.ID))
	assert.Equal(t, "Bekor qilindi.", h.lastText(testUser.ID))
}

func TestSuspiciousThreshold(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)
	require.NoError(t, h.store.SetSetting(h.ctx, domain.SettingSuspiciousThreshold, "2"))

	h.handle(message(testUser, "bir", 1))
	assert.Empty(t, h.msg.To(domain.ChatID(testAdmin.ID)))

	h.handle(message(testUser, "ikki", 2))
	alerts := h.msg.Texts(domain.ChatID(testAdmin.ID))
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "To'lovsiz urinishlar: 2")

	user, err := h.store.GetUser(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.Zero(t, user.NoPaymentAttempts)
}

func TestAdminAddsCard(t *testing.T) {
	h := newHarness(t)

	h.handle(message(testAdmin, BtnCards, 1))
	assert.Contains(t, h.lastText(testAdmin.ID), "Ali Valiyev")

	h.handle(message(testAdmin, BtnCardAdd, 2))
	assert.Equal(t, domain.StateAdminCardOwner, h.state(testAdmin.ID))
	h.handle(message(testAdmin, "V", 3))
	assert.Equal(t, "Karta egasi juda qisqa. Qayta kiriting.", h.lastText(testAdmin.ID))
	h.handle(message(testAdmin, "Vali Aliyev", 4))
	assert.Equal(t, domain.StateAdminCardNumber, h.state(testAdmin.ID))
	h.handle(message(testAdmin, "8600 0000 0000 0001", 5))

	assert.Equal(t, domain.StateIdle, h.state(testAdmin.ID))
	assert.True(t, strings.HasPrefix(h.lastText(testAdmin.ID), "Karta saqlandi.\n\n"))
	cards, err := h.store.ListCards(h.ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestAdminManagesAdmins(t *testing.T) {
	h := newHarness(t)

	h.handle(message(testAdmin, BtnAdminRemove, 1))
	h.handle(message(testAdmin, "200", 2))
	assert.Equal(t, "ADMIN2_ID ni o'chirib bo'lmaydi.", h.lastText(testAdmin.ID))
	assert.Equal(t, domain.StateAdminRemove, h.state(testAdmin.ID))
	isAdmin, err := h.store.IsAdmin(h.ctx, 200)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	h.handle(message(testAdmin, BtnAdminAdd, 3))
	h.handle(message(testAdmin, "300", 4))
	assert.True(t, strings.HasPrefix(h.lastText(testAdmin.ID), "Admin qo'shildi.\n\n"))

	h.handle(message(testAdmin, BtnAdminRemove, 5))
	h.handle(message(testAdmin, "300", 6))
	assert.True(t, strings.HasPrefix(h.lastText(testAdmin.ID), "Admin o'chirildi.\n\n"))

	h.handle(message(testAdmin, BtnAdminRemove, 7))
	h.handle(message(testAdmin, "300", 8))
	assert.Equal(t, "Admin topilmadi.", h.lastText(testAdmin.ID))
	assert.Equal(t, domain.StateIdle, h.state(testAdmin.ID))
}

func TestUserCannotResolvePayments(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)

	h.handle(callback(testUser, "pay:approve:1", 5))
	answer, ok := h.msg.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, telegramtest.Answer{CallbackID: "cb", Text: "Faqat admin", Alert: true}, answer)
}

func TestUserGroupMessagesIgnored(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)

	ev := message(testUser, "salom", 5)
	ev.Private, ev.ChatID = false, -100500
	h.handle(ev)
	assert.Empty(t, h.msg.Sent)
}

func TestEditFlowsUpdateEveryField(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)

	edits := []struct {
		field domain.ProfileField
		input string
	}{
		{domain.ProfileFirstName, "Bobur"},
		{domain.ProfileLastName, "Karimov"},
		{domain.ProfilePhone, "+998 90 111 22 33"},
		{domain.ProfileBirthDate, "01.02.1985"},
	}
	msgID := 20
	for _, edit := range edits {
		msgID++
		h.handle(callback(testUser, CallbackEditPrefix+string(edit.field), msgID))
		assert.Equal(t, domain.EditState(edit.field), h.state(testUser.ID), edit.field)

		msgID++
		h.handle(message(testUser, edit.input, msgID))
		assert.Equal(t, domain.StateIdle, h.state(testUser.ID), edit.field)
		assert.Contains(t, h.msg.Texts(domain.ChatID(testUser.ID)), "Profil ma'lumoti yangilandi.")
	}

	user, err := h.store.GetUser(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.True(t, user.IsRegistered())
	assert.Equal(t, "Bobur", user.FirstName)
	assert.Equal(t, "Karimov", user.LastName)
	assert.Equal(t, "+998901112233", user.Phone)
	assert.Equal(t, "1985-02-01", user.BirthDate)
}

func TestEditFlowRejectsInvalidInput(t *testing.T) {
	h := newHarness(t)
	h.register(testUser.ID)

	h.handle(callback(testUser, CallbackEditPrefix+string(domain.ProfileBirthDate), 30))
	h.handle(message(testUser, "31.02.1985", 31))
	assert.Equal(t, domain.EditState(domain.ProfileBirthDate), h.state(testUser.ID))

	user, err := h.store.GetUser(h.ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "1990-03-15", user.BirthDate)
}
