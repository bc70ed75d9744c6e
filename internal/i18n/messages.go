package i18n

import "tg-gate-bot/internal/domain"

// Key — ключ локализованной строки.
type Key string

const (
	KeyLangPrompt             Key = "lang_prompt"
	KeyLangSaved              Key = "lang_saved"
	KeySubRequired            Key = "sub_required"
	KeySubMissing             Key = "sub_missing"
	KeySubCheckBtn            Key = "sub_check_btn"
	KeySubNotFull             Key = "sub_not_full"
	KeySubOk                  Key = "sub_ok"
	KeyRegStart               Key = "reg_start"
	KeyRegFirstInvalid        Key = "reg_first_invalid"
	KeyRegLastPrompt          Key = "reg_last_prompt"
	KeyRegLastInvalid         Key = "reg_last_invalid"
	KeyRegPhonePrompt         Key = "reg_phone_prompt"
	KeyRegPhoneButton         Key = "reg_phone_button"
	KeyRegPhoneSelfOnly       Key = "reg_phone_self_only"
	KeyRegPhoneInvalid        Key = "reg_phone_invalid"
	KeyRegBirthPrompt         Key = "reg_birth_prompt"
	KeyRegBirthInvalid        Key = "reg_birth_invalid"
	KeyRegDataLost            Key = "reg_data_lost"
	KeyRegDonePaid            Key = "reg_done_paid"
	KeyMustRegister           Key = "must_register"
	KeyCardNotSet             Key = "card_not_set"
	KeyPaymentPrompt          Key = "payment_prompt"
	KeyReadyWithCredits       Key = "ready_with_credits"
	KeyReceiptPending         Key = "receipt_pending"
	KeyReceiptAccepted        Key = "receipt_accepted"
	KeyPaymentApproved        Key = "payment_approved"
	KeyPaymentRejected        Key = "payment_rejected"
	KeySendErrorRestart       Key = "send_error_restart"
	KeyAdminSendFailed        Key = "admin_send_failed"
	KeyMsgSentRemaining       Key = "msg_sent_remaining"
	KeyMsgSentPayAgain        Key = "msg_sent_pay_again"
	KeyReceiptWait            Key = "receipt_wait"
	KeyMenuProfileBtn         Key = "menu_profile_btn"
	KeyMenuDeleteBtn          Key = "menu_delete_btn"
	KeyProfileText            Key = "profile_text"
	KeyProfileNotFound        Key = "profile_not_found"
	KeyProfileEditFirstBtn    Key = "profile_edit_first_btn"
	KeyProfileEditLastBtn     Key = "profile_edit_last_btn"
	KeyProfileEditPhoneBtn    Key = "profile_edit_phone_btn"
	KeyProfileEditBirthBtn    Key = "profile_edit_birth_btn"
	KeyProfileCloseBtn        Key = "profile_close_btn"
	KeyProfileEditFirstPrompt Key = "profile_edit_first_prompt"
	KeyProfileEditLastPrompt  Key = "profile_edit_last_prompt"
	KeyProfileEditPhonePrompt Key = "profile_edit_phone_prompt"
	KeyProfileEditBirthPrompt Key = "profile_edit_birth_prompt"
	KeyProfileUpdated         Key = "profile_updated"
	KeyProfileDeleted         Key = "profile_deleted"
	KeyCancelled              Key = "cancelled"
	KeyLangInvalid            Key = "lang_invalid"
)

var messages = map[domain.Language]map[Key]string{
	domain.LangLotin: {
		KeyLangPrompt:             "Tilni tanlang:",
		KeyLangSaved:              "Til saqlandi.",
		KeySubRequired:            "Botdan foydalanish uchun avval majburiy obunalardan o'ting.",
		KeySubMissing:             "Obuna bo'lmagan kanallar: <b>{channels}</b>",
		KeySubCheckBtn:            "Obunani tekshirish",
		KeySubNotFull:             "Obuna hali to'liq emas",
		KeySubOk:                  "Obuna tasdiqlandi",
		KeyRegStart:               "Registratsiya boshlanadi.\nIsmingizni yuboring.",
		KeyRegFirstInvalid:        "Ismni to'g'ri kiriting.",
		KeyRegLastPrompt:          "Familiyangizni yuboring.",
		KeyRegLastInvalid:         "Familiyani to'g'ri kiriting.",
		KeyRegPhonePrompt:         "Telefon raqamingizni yuboring.",
		KeyRegPhoneButton:         "Telefon raqam yuborish",
		KeyRegPhoneSelfOnly:       "Faqat o'zingizning raqamingizni yuboring.",
		KeyRegPhoneInvalid:        "Telefon raqam noto'g'ri. Masalan: +998901234567",
		KeyRegBirthPrompt:         "Tug'ilgan sanangizni yuboring.\nFormat: <code>DD.MM.YYYY</code>",
		KeyRegBirthInvalid:        "Sana xato. Format: <code>DD.MM.YYYY</code>",
		KeyRegDataLost:            "Registratsiya ma'lumotlari yo'qoldi. /start ni bosing.",
		KeyRegDonePaid:            "Registratsiya tugadi.\nBizning xizmatimiz pullik, foydalanish uchun to'lov qiling.",
		KeyMustRegister:           "Avval registratsiyadan o'ting. /start",
		KeyCardNotSet:             "To'lov kartasi hali sozlanmagan.\nAdmin bilan bog'laning yoki keyinroq qayta urinib ko'ring.",
		KeyPaymentPrompt:          "Xabar yuborish uchun avval to'lov qiling.\n\nKarta egasi: <b>{owner}</b>\nKarta raqami: <code>{card}</code>\n\nTo'lov qilgach chek rasmini yoki faylini shu chatga yuboring.",
		KeyReadyWithCredits:       "To'lov tasdiqlangan. Sizda <b>{credits}</b> ta xabar limiti bor.\nHabaringizni yuboring.",
		KeyReceiptPending:         "Chekingiz tekshiruvda. Admin tasdiqlashini kuting.",
		KeyReceiptAccepted:        "Chek qabul qilindi. Tekshiruvga yuborildi.\nPayment ID: <code>{payment_id}</code>",
		KeyPaymentApproved:        "To'lovingiz tasdiqlandi.\nHabaringizni yuboring.",
		KeyPaymentRejected:        "To'lovingiz rad etildi.\nIltimos qayta to'lov qilib chek yuboring.",
		KeySendErrorRestart:       "Xatolik yuz berdi. /start ni qayta bosing.",
		KeyAdminSendFailed:        "Adminlarga xabar yuborib bo'lmadi. Keyinroq qayta urinib ko'ring.",
		KeyMsgSentRemaining:       "Xabaringiz yuborildi.\nQolgan limit: <b>{remaining}</b>.\nYana xabar yuborishingiz mumkin.",
		KeyMsgSentPayAgain:        "Xabaringiz yuborildi.\nKeyingi xabar uchun qayta to'lov qiling.",
		KeyReceiptWait:            "Chekingiz tekshiruvda. Iltimos kuting.",
		KeyMenuProfileBtn:         "Profil",
		KeyMenuDeleteBtn:          "Ma'lumotlarni o'chirish",
		KeyProfileText:            "Profil:\nIsm: <b>{first_name}</b>\nFamiliya: <b>{last_name}</b>\nTelefon: <code>{phone}</code>\nTug'ilgan sana: <code>{birth_date}</code>",
		KeyProfileNotFound:        "Profil topilmadi. /start ni bosing.",
		KeyProfileEditFirstBtn:    "Ismni tahrirlash",
		KeyProfileEditLastBtn:     "Familiyani tahrirlash",
		KeyProfileEditPhoneBtn:    "Telefonni tahrirlash",
		KeyProfileEditBirthBtn:    "Sanani tahrirlash",
		KeyProfileCloseBtn:        "Yopish",
		KeyProfileEditFirstPrompt: "Yangi ismingizni yuboring.",
		KeyProfileEditLastPrompt:  "Yangi familiyangizni yuboring.",
		KeyProfileEditPhonePrompt: "Yangi telefon raqamingizni yuboring.",
		KeyProfileEditBirthPrompt: "Yangi tug'ilgan sanani yuboring.\nFormat: <code>DD.MM.YYYY</code>",
		KeyProfileUpdated:         "Profil ma'lumoti yangilandi.",
		KeyProfileDeleted:         "Ma'lumotlaringiz bazadan butunlay o'chirildi.\n/start ni bosing.",
		KeyCancelled:              "Bekor qilindi.",
		KeyLangInvalid:            "Xato til",
	},
	domain.LangKril: {
		KeyLangPrompt:             "Тилни танланг:",
		KeyLangSaved:              "Тил сақланди.",
		KeySubRequired:            "Ботдан фойдаланиш учун аввал мажбурий обуналардан ўтинг.",
		KeySubMissing:             "Обуна бўлмаган каналлар: <b>{channels}</b>",
		KeySubCheckBtn:            "Обунани текшириш",
		KeySubNotFull:             "Обуна ҳали тўлиқ эмас",
		KeySubOk:                  "Обуна тасдиқланди",
		KeyRegStart:               "Рўйхатдан ўтиш бошланади.\nИсмингизни юборинг.",
		KeyRegFirstInvalid:        "Исмни тўғри киритинг.",
		KeyRegLastPrompt:          "Фамилиянгизни юборинг.",
		KeyRegLastInvalid:         "Фамилияни тўғри киритинг.",
		KeyRegPhonePrompt:         "Телефон рақамингизни юборинг.",
		KeyRegPhoneButton:         "Телефон рақам юбориш",
		KeyRegPhoneSelfOnly:       "Фақат ўзингизнинг рақамини юборинг.",
		KeyRegPhoneInvalid:        "Телефон рақам нотўғри. Масалан: +998901234567",
		KeyRegBirthPrompt:         "Туғилган санангизни юборинг.\nФормат: <code>DD.MM.YYYY</code>",
		KeyRegBirthInvalid:        "Сана хато. Формат: <code>DD.MM.YYYY</code>",
		KeyRegDataLost:            "Рўйхат маълумотлари йўқолди. /start ни босинг.",
		KeyRegDonePaid:            "Рўйхат тугади.\nХизматимиз пуллик, фойдаланиш учун тўлов қилинг.",
		KeyMustRegister:           "Аввал рўйхатдан ўтинг. /start",
		KeyCardNotSet:             "Тўлов картаси ҳали созланмаган.\nАдмин билан боғланинг ёки кейинроқ қайта уриниб кўринг.",
		KeyPaymentPrompt:          "Хабар юбориш учун аввал тўлов қилинг.\n\nКарта эгаси: <b>{owner}</b>\nКарта рақами: <code>{card}</code>\n\nТўлов қилгач чек расмини ёки файлини шу чатга юборинг.",
		KeyReadyWithCredits:       "Тўлов тасдиқланди. Сизда <b>{credits}</b> та хабар лимити бор.\nХабарингизни юборинг.",
		KeyReceiptPending:         "Чекингиз текширувда. Админ тасдиқлашини кутинг.",
		KeyReceiptAccepted:        "Чек қабул қилинди. Текширувга юборилди.\nPayment ID: <code>{payment_id}</code>",
		KeyPaymentApproved:        "Тўловингиз тасдиқланди.\nХабарингизни юборинг.",
		KeyPaymentRejected:        "Тўловингиз рад этилди.\nИлтимос қайта тўлов қилиб чек юборинг.",
		KeySendErrorRestart:       "Хатолик юз берди. /start ни қайта босинг.",
		KeyAdminSendFailed:        "Админларга хабар юбориб бўлмади. Кейинроқ қайта уриниб кўринг.",
		KeyMsgSentRemaining:       "Хабарингиз юборилди.\nҚолган лимит: <b>{remaining}</b>.\nЯна хабар юборишингиз мумкин.",
		KeyMsgSentPayAgain:        "Хабарингиз юборилди.\nКейинги хабар учун қайта тўлов қилинг.",
		KeyReceiptWait:            "Чекингиз текширувда. Илтимос кутинг.",
		KeyMenuProfileBtn:         "Профил",
		KeyMenuDeleteBtn:          "Маълумотларни ўчириш",
		KeyProfileText:            "Профил:\nИсм: <b>{first_name}</b>\nФамилия: <b>{last_name}</b>\nТелефон: <code>{phone}</code>\nТуғилган сана: <code>{birth_date}</code>",
		KeyProfileNotFound:        "Профил топилмади. /start ни босинг.",
		KeyProfileEditFirstBtn:    "Исмни таҳрирлаш",
		KeyProfileEditLastBtn:     "Фамилияни таҳрирлаш",
		KeyProfileEditPhoneBtn:    "Телефонни таҳрирлаш",
		KeyProfileEditBirthBtn:    "Санани таҳрирлаш",
		KeyProfileCloseBtn:        "Ёпиш",
		KeyProfileEditFirstPrompt: "Янги исмингизни юборинг.",
		KeyProfileEditLastPrompt:  "Янги фамилиянгизни юборинг.",
		KeyProfileEditPhonePrompt: "Янги телефон рақамингизни юборинг.",
		KeyProfileEditBirthPrompt: "Янги туғилган санани юборинг.\nФормат: <code>DD.MM.YYYY</code>",
		KeyProfileUpdated:         "Профил маълумоти янгиланди.",
		KeyProfileDeleted:         "Маълумотларингиз базадан бутунлай ўчирилди.\n/start ни босинг.",
		KeyCancelled:              "Бекор қилинди.",
		KeyLangInvalid:            "Хато тил",
	},
	domain.LangRuss: {
		KeyLangPrompt:             "Выберите язык:",
		KeyLangSaved:              "Язык сохранен.",
		KeySubRequired:            "Чтобы пользоваться ботом, сначала выполните обязательные подписки.",
		KeySubMissing:             "Не подписаны на каналы: <b>{channels}</b>",
		KeySubCheckBtn:            "Проверить подписку",
		KeySubNotFull:             "Подписка еще не завершена",
		KeySubOk:                  "Подписка подтверждена",
		KeyRegStart:               "Начнем регистрацию.\nОтправьте имя.",
		KeyRegFirstInvalid:        "Введите корректное имя.",
		KeyRegLastPrompt:          "Отправьте фамилию.",
		KeyRegLastInvalid:         "Введите корректную фамилию.",
		KeyRegPhonePrompt:         "Отправьте номер телефона.",
		KeyRegPhoneButton:         "Отправить номер телефона",
		KeyRegPhoneSelfOnly:       "Отправьте только свой номер телефона.",
		KeyRegPhoneInvalid:        "Неверный номер телефона. Пример: +998901234567",
		KeyRegBirthPrompt:         "Отправьте дату рождения.\nФормат: <code>DD.MM.YYYY</code>",
		KeyRegBirthInvalid:        "Неверная дата. Формат: <code>DD.MM.YYYY</code>",
		KeyRegDataLost:            "Данные регистрации потеряны. Нажмите /start.",
		KeyRegDonePaid:            "Регистрация завершена.\nНаш сервис платный, выполните оплату.",
		KeyMustRegister:           "Сначала пройдите регистрацию. /start",
		KeyCardNotSet:             "Платежная карта еще не настроена.\nСвяжитесь с админом или попробуйте позже.",
		KeyPaymentPrompt:          "Чтобы отправить сообщение, сначала оплатите.\n\nВладелец карты: <b>{owner}</b>\nНомер карты: <code>{card}</code>\n\nПосле оплаты отправьте фото или файл чека в этот чат.",
		KeyReadyWithCredits:       "Оплата подтверждена. У вас <b>{credits}</b> кредит(ов) сообщения.\nОтправьте сообщение.",
		KeyReceiptPending:         "Ваш чек на проверке. Ожидайте подтверждения администратора.",
		KeyReceiptAccepted:        "Чек принят и отправлен на проверку.\nPayment ID: <code>{payment_id}</code>",
		KeyPaymentApproved:        "Ваш платеж подтвержден.\nТеперь отправьте сообщение.",
		KeyPaymentRejected:        "Ваш платеж отклонен.\nОплатите повторно и отправьте новый чек.",
		KeySendErrorRestart:       "Произошла ошибка. Нажмите /start еще раз.",
		KeyAdminSendFailed:        "Не удалось доставить администраторам. Попробуйте позже.",
		KeyMsgSentRemaining:       "Ваше сообщение отправлено.\nОстаток кредита: <b>{remaining}</b>.\nВы можете отправить еще сообщение.",
		KeyMsgSentPayAgain:        "Ваше сообщение отправлено.\nДля следующего сообщения снова оплатите.",
		KeyReceiptWait:            "Ваш чек на проверке. Пожалуйста, подождите.",
		KeyMenuProfileBtn:         "Профиль",
		KeyMenuDeleteBtn:          "Удалить данные",
		KeyProfileText:            "Профиль:\nИмя: <b>{first_name}</b>\nФамилия: <b>{last_name}</b>\nТелефон: <code>{phone}</code>\nДата рождения: <code>{birth_date}</code>",
		KeyProfileNotFound:        "Профиль не найден. Нажмите /start.",
		KeyProfileEditFirstBtn:    "Изменить имя",
		KeyProfileEditLastBtn:     "Изменить фамилию",
		KeyProfileEditPhoneBtn:    "Изменить телефон",
		KeyProfileEditBirthBtn:    "Изменить дату",
		KeyProfileCloseBtn:        "Закрыть",
		KeyProfileEditFirstPrompt: "Отправьте новое имя.",
		KeyProfileEditLastPrompt:  "Отправьте новую фамилию.",
		KeyProfileEditPhonePrompt: "Отправьте новый номер телефона.",
		KeyProfileEditBirthPrompt: "Отправьте новую дату рождения.\nФормат: <code>DD.MM.YYYY</code>",
		KeyProfileUpdated:         "Профиль обновлен.",
		KeyProfileDeleted:         "Ваши данные полностью удалены из базы.\nНажмите /start.",
		KeyCancelled:              "Отменено.",
		KeyLangInvalid:            "Неверный язык",
	},
}
