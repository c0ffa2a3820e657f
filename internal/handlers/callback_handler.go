package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"priemka/internal/catalog"
	"priemka/internal/constants"
	"priemka/internal/session"
	"priemka/internal/telegram_api"
)

// HandleCallback обрабатывает входящие callback query от Telegram.
func (bh *BotHandler) HandleCallback(update tgbotapi.Update) {
	query := update.CallbackQuery
	if query == nil {
		log.Println("[CALLBACK_HANDLER] Получен пустой CallbackQuery.")
		return
	}

	chatID := query.Message.Chat.ID
	data := query.Data

	log.Printf("[CALLBACK_HANDLER] START: ChatID=%d, User=%s, Data='%s'", chatID, query.From.UserName, data)

	telegram_api.AnswerCallback(bh.Deps.BotClient, query.ID, "")

	if !bh.Deps.Config.IsAllowed(chatID) {
		log.Printf("[CALLBACK_HANDLER] ChatID=%d не входит в белый список, коллбэк '%s' проигнорирован.", chatID, data)
		bh.sendMessage(chatID, "Доступ к боту ограничен. Обратитесь к администратору.")
		return
	}

	switch {
	case data == constants.CALLBACK_NEW_RECEPTION:
		bh.handleNewReception(chatID)
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_FAMILY):
		bh.handleChooseFamily(chatID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_FAMILY))
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_PRODUCT):
		bh.handleChooseProduct(chatID, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_PRODUCT))
	case data == constants.CALLBACK_BACK_FAMILIES:
		bh.handleBackToFamilies(chatID)
	case data == constants.CALLBACK_FINISH:
		bh.handleFinish(chatID)
	case data == constants.CALLBACK_RESET_CONFIRM:
		bh.handleResetConfirm(chatID)
	case data == constants.CALLBACK_RESET_YES:
		bh.hardReset(chatID)
	case data == constants.CALLBACK_RESET_NO:
		bh.handleResetNo(chatID)
	case data == constants.CALLBACK_PHOTOS_DONE:
		bh.handlePhotosDone(chatID, authorName(query.From))
	case data == constants.CALLBACK_DRAFT_EDIT:
		bh.handleDraftEdit(chatID)
	case data == constants.CALLBACK_DRAFT_FINALIZE:
		bh.handleDraftFinalize(chatID)
	default:
		log.Printf("[CALLBACK_HANDLER] Неизвестный коллбэк '%s' от chatID %d.", data, chatID)
	}
}

// handleNewReception начинает новую приёмку, жёстко сбрасывая прежнюю
// сессию и черновик пользователя.
func (bh *BotHandler) handleNewReception(chatID int64) {
	bh.Deps.SessionManager.ResetUser(chatID)
	bh.Deps.Drafts.Delete(chatID)

	bh.Deps.SessionManager.UpdateReception(chatID, session.NewReception(chatID))
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_AWAIT_SHOP)

	bh.sendMessage(chatID, "Введите магазин (любой текст):")
}

// guardShopEntered проверяет, что магазин уже введён. Возвращает false и
// шлёт подсказку, если пользователь ещё на шаге магазина; состояние при
// этом не меняется.
func (bh *BotHandler) guardShopEntered(chatID int64) bool {
	if bh.Deps.SessionManager.GetState(chatID) == constants.STATE_AWAIT_SHOP {
		bh.sendMessage(chatID, "Сначала введите магазин текстом.")
		return false
	}
	return true
}

func (bh *BotHandler) handleChooseFamily(chatID int64, rawID string) {
	if !bh.guardShopEntered(chatID) {
		return
	}

	famID, err := strconv.Atoi(rawID)
	if err != nil {
		log.Printf("handleChooseFamily: Некорректный ID категории '%s' от chatID %d.", rawID, chatID)
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	if rd.Catalog == nil {
		bh.sendMessage(chatID, "Ошибка состояния. Начните заново: /start")
		return
	}
	if _, ok := rd.Catalog.FamilyByID(famID); !ok {
		bh.sendMessage(chatID, "Категория не найдена. Сбросьте приёмку: /reset")
		return
	}

	rd.CurrentFamilyID = famID
	rd.CurrentProductID = 0
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CHOOSE_PRODUCT)

	keyboard := productsKeyboard(rd, famID)
	msg := tgbotapi.NewMessage(chatID, "Выберите продукт и укажите количество:")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleChooseFamily: Ошибка отправки продуктов chatID %d: %v", chatID, err)
	}
}

func (bh *BotHandler) handleChooseProduct(chatID int64, rawID string) {
	if !bh.guardShopEntered(chatID) {
		return
	}

	prodID, err := strconv.Atoi(rawID)
	if err != nil {
		log.Printf("handleChooseProduct: Некорректный ID продукта '%s' от chatID %d.", rawID, chatID)
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	if rd.Catalog == nil {
		bh.sendMessage(chatID, "Ошибка состояния. Начните заново: /start")
		return
	}
	p, ok := rd.Catalog.ProductByID(prodID)
	if !ok {
		// Устаревшая ссылка на продукт — в рамках одной сессии снимок
		// неизменен, так что сюда можно попасть только по старой кнопке.
		bh.sendMessage(chatID, "Продукт не найден. Начните заново: /start")
		return
	}

	// Запоминаем текущую категорию, чтобы после ввода количества вернуться в неё.
	rd.CurrentFamilyID = p.FamilyID
	rd.CurrentProductID = prodID
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_AWAIT_QTY)

	bh.sendMessage(chatID, fmt.Sprintf("📦 %s\nВведите количество:", p.Name))
}

func (bh *BotHandler) handleBackToFamilies(chatID int64) {
	if !bh.guardShopEntered(chatID) {
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	rd.CurrentFamilyID = 0
	rd.CurrentProductID = 0
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CHOOSE_FAMILY)

	keyboard := familiesKeyboard(rd)
	msg := tgbotapi.NewMessage(chatID, "Выберите категорию:")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleBackToFamilies: Ошибка отправки категорий chatID %d: %v", chatID, err)
	}
}

// handleFinish переводит к вводу дополнительной суммы. Если магазин ещё не
// введён — только подсказка, без перехода.
func (bh *BotHandler) handleFinish(chatID int64) {
	state := bh.Deps.SessionManager.GetState(chatID)
	if state == constants.STATE_AWAIT_SHOP {
		bh.sendMessage(chatID, "Сначала введите магазин, потом завершайте приёмку.")
		return
	}
	if state != constants.STATE_CHOOSE_FAMILY && state != constants.STATE_CHOOSE_PRODUCT {
		log.Printf("handleFinish: Неожиданное состояние '%s' для chatID %d, завершение проигнорировано.", state, chatID)
		return
	}

	bh.Deps.SessionManager.SetState(chatID, constants.STATE_AWAIT_EXTRA)

	keyboard := resetOnlyKeyboard()
	msg := tgbotapi.NewMessage(chatID, "Введите дополнительную сумму.\nЕсли доплаты нет — введите 0")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleFinish: Ошибка отправки запроса доп. суммы chatID %d: %v", chatID, err)
	}
}

func (bh *BotHandler) handleResetConfirm(chatID int64) {
	keyboard := resetConfirmKeyboard()
	msg := tgbotapi.NewMessage(chatID, "⚠️ Точно сбросить приёмку?\nВсе введённые данные будут удалены.")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleResetConfirm: Ошибка отправки подтверждения chatID %d: %v", chatID, err)
	}
}

func (bh *BotHandler) handleResetNo(chatID int64) {
	rd := bh.Deps.SessionManager.GetReception(chatID)
	keyboard := familiesKeyboard(rd)
	msg := tgbotapi.NewMessage(chatID, "Ок, продолжаем приёмку 👌")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleResetNo: Ошибка отправки категорий chatID %d: %v", chatID, err)
	}
}

// handleDraftEdit возвращает пользователя в редактирование из черновика:
// сессия пересобирается из данных черновика со свежим снимком каталога,
// сам черновик при этом не трогается до следующего «Готово».
func (bh *BotHandler) handleDraftEdit(chatID int64) {
	draft, err := bh.Deps.Drafts.Get(chatID)
	if err != nil {
		bh.sendMessage(chatID, "Черновик не найден. Начните новую приёмку: /start")
		return
	}
	if draft.Finalized {
		bh.sendMessage(chatID, "Черновик уже фиксируется, редактирование недоступно.")
		return
	}

	_, rows, err := bh.Deps.Catalog.Get(context.Background())
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			bh.sendMessage(chatID, "Прайс-лист сейчас недоступен. Попробуйте ещё раз через минуту.")
			return
		}
		log.Printf("handleDraftEdit: Неожиданная ошибка каталога для chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}

	snap := catalog.BuildSnapshot(rows)
	rd := session.ReplayFromDraft(chatID, draft.Data, snap)
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CHOOSE_FAMILY)

	bh.publishSummary(draft, statusEdit)

	keyboard := familiesKeyboard(rd)
	msg := tgbotapi.NewMessage(chatID, "Редактирование приёмки. Выберите категорию:")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleDraftEdit: Ошибка отправки категорий chatID %d: %v", chatID, err)
	}
}
