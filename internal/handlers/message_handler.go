// Файл: internal/handlers/message_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"priemka/internal/catalog"
	"priemka/internal/constants"
	"priemka/internal/telegram_api"
	"priemka/internal/utils"
)

// HandleMessage обрабатывает входящие сообщения от Telegram.
func (bh *BotHandler) HandleMessage(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	message := update.Message
	if message.Chat.Type != "private" {
		return
	}
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	log.Printf("HandleMessage: ChatID=%d, Text='%s', Photo: %v", chatID, text, message.Photo != nil)

	if !bh.Deps.Config.IsAllowed(chatID) {
		log.Printf("HandleMessage: ChatID=%d не входит в белый список, сообщение проигнорировано.", chatID)
		bh.sendMessage(chatID, "Доступ к боту ограничен. Обратитесь к администратору.")
		return
	}

	if message.IsCommand() {
		bh.handleCommand(message)
		return
	}

	if len(message.Photo) > 0 {
		bh.handlePhoto(message)
		return
	}

	currentState := bh.Deps.SessionManager.GetState(chatID)
	log.Printf("HandleMessage: Текущее состояние для chatID %d: %s", chatID, currentState)

	switch currentState {
	case constants.STATE_AWAIT_SHOP:
		bh.handleShopInput(chatID, text)
	case constants.STATE_AWAIT_QTY:
		bh.handleQuantityInput(chatID, text)
	case constants.STATE_AWAIT_EXTRA:
		bh.handleExtraInput(chatID, text)
	default:
		// Текст вне диалога приёмки — подсказываем, с чего начать.
		msg := tgbotapi.NewMessage(chatID, "Запустите приёмку товара:")
		msg.ReplyMarkup = newReceptionKeyboard()
		if _, err := bh.Deps.BotClient.Send(msg); err != nil {
			log.Printf("HandleMessage: Ошибка отправки подсказки chatID %d: %v", chatID, err)
		}
	}
}

// handleCommand обрабатывает команды /start, /reset и /id.
func (bh *BotHandler) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		msg := tgbotapi.NewMessage(chatID, "Привет! Запусти приёмку товара:")
		msg.ReplyMarkup = newReceptionKeyboard()
		if _, err := bh.Deps.BotClient.Send(msg); err != nil {
			log.Printf("handleCommand: Ошибка отправки /start chatID %d: %v", chatID, err)
		}
	case "reset":
		bh.hardReset(chatID)
	case "id":
		bh.sendMessage(chatID, fmt.Sprintf("chat_id = %d", chatID))
	default:
		log.Printf("handleCommand: Неизвестная команда '%s' от chatID %d", message.Command(), chatID)
		bh.sendMessage(chatID, "Неизвестная команда.")
	}
}

// hardReset полностью сбрасывает пользователя: сессию, черновик и состояние.
func (bh *BotHandler) hardReset(chatID int64) {
	bh.Deps.SessionManager.ResetUser(chatID)
	bh.Deps.Drafts.Delete(chatID)

	msg := tgbotapi.NewMessage(chatID, "♻️ Приёмка сброшена.\nМожно начать заново.")
	msg.ReplyMarkup = newReceptionKeyboard()
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("hardReset: Ошибка отправки сообщения chatID %d: %v", chatID, err)
	}
}

// handleShopInput принимает название магазина и фиксирует снимок каталога
// на момент начала приёмки, чтобы ID категорий и продуктов не «прыгали»
// при обновлении прайса посреди диалога.
func (bh *BotHandler) handleShopInput(chatID int64, text string) {
	if text == "" {
		bh.sendMessage(chatID, "Введите магазин текстом.")
		return
	}

	_, rows, err := bh.Deps.Catalog.Get(context.Background())
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			bh.sendMessage(chatID, "Прайс-лист сейчас недоступен. Попробуйте отправить магазин ещё раз через минуту.")
			return
		}
		log.Printf("handleShopInput: Неожиданная ошибка каталога для chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	rd.Shop = text
	rd.Catalog = catalog.BuildSnapshot(rows)
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CHOOSE_FAMILY)

	keyboard := familiesKeyboard(rd)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Магазин: %s\nВыберите категорию:", text))
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleShopInput: Ошибка отправки категорий chatID %d: %v", chatID, err)
	}
}

// handleQuantityInput принимает количество для выбранного продукта.
// Некорректный ввод переспрашивается без смены состояния; корректный
// перезаписывает прежнее количество продукта (последний ввод побеждает).
func (bh *BotHandler) handleQuantityInput(chatID int64, text string) {
	qty, err := utils.ParseAmount(text)
	if err != nil {
		log.Printf("handleQuantityInput: Некорректное количество '%s' от chatID %d: %v", text, chatID, err)
		bh.sendMessage(chatID, "Введите количество числом, например: 1,5. Отрицательные значения не принимаются.")
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	if rd.Catalog == nil || rd.CurrentProductID == 0 {
		log.Printf("handleQuantityInput: Потеряно состояние выбора продукта для chatID %d.", chatID)
		bh.sendMessage(chatID, "Ошибка состояния. Начните заново: /start")
		return
	}
	if _, ok := rd.Catalog.ProductByID(rd.CurrentProductID); !ok {
		// В рамках одной сессии такого быть не должно: снимок неизменен.
		log.Printf("handleQuantityInput: Продукт %d не найден в снимке каталога chatID %d.", rd.CurrentProductID, chatID)
		bh.sendMessage(chatID, "Продукт не найден. Сбросьте приёмку: /reset")
		return
	}

	bh.Deps.SessionManager.SetQuantity(chatID, rd.CurrentProductID, qty)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CHOOSE_PRODUCT)

	rd = bh.Deps.SessionManager.GetReception(chatID)
	keyboard := productsKeyboard(rd, rd.CurrentFamilyID)
	msg := tgbotapi.NewMessage(chatID, "Количество сохранено")
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleQuantityInput: Ошибка отправки списка продуктов chatID %d: %v", chatID, err)
	}
}

// handleExtraInput принимает дополнительную сумму и переводит к шагу фото.
func (bh *BotHandler) handleExtraInput(chatID int64, text string) {
	extra, err := utils.ParseAmount(text)
	if err != nil {
		log.Printf("handleExtraInput: Некорректная сумма '%s' от chatID %d: %v", text, chatID, err)
		bh.sendMessage(chatID, "Введите сумму числом, например: 1500 или 0. Отрицательные значения не принимаются.")
		return
	}

	rd := bh.Deps.SessionManager.GetReception(chatID)
	rd.Extra = extra
	bh.Deps.SessionManager.UpdateReception(chatID, rd)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_AWAIT_PHOTOS)

	keyboard := photosDoneKeyboard()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Дополнительная сумма принята: %s\n\nТеперь пришлите фото принятого товара.\nКогда закончите — нажмите «Готово».",
		text))
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handleExtraInput: Ошибка отправки запроса фото chatID %d: %v", chatID, err)
	}
}

// handlePhoto принимает фото на шаге фото: добавляет в сессию и
// пересылает в группу с подписью. Фото вне шага фото игнорируются.
func (bh *BotHandler) handlePhoto(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_AWAIT_PHOTOS {
		return
	}

	fileID := message.Photo[len(message.Photo)-1].FileID
	count := bh.Deps.SessionManager.AddPhoto(chatID, fileID)

	rd := bh.Deps.SessionManager.GetReception(chatID)
	caption := fmt.Sprintf("Фото приёмки\nМагазин: %s\nОт: %s", rd.Shop, authorName(message.From))
	if err := telegram_api.RelayPhoto(bh.Deps.BotClient, bh.Deps.Config.TargetGroupID, fileID, caption); err != nil {
		// Пересылка в группу — best-effort; приёмку не прерываем.
		log.Printf("handlePhoto: Ошибка пересылки фото в группу для chatID %d: %v", chatID, err)
	}

	bh.sendMessage(chatID, fmt.Sprintf("Фото добавлено (%d)", count))
}

// authorName собирает отображаемое имя пользователя Telegram.
func authorName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.UserName
	}
	return name
}
