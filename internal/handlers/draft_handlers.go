// Файл: internal/handlers/draft_handlers.go
//
// Жизненный цикл черновика: создание/перезапись по «Готово», публикация
// итога в группе со статусом, ручная фиксация. Редактирование — в
// callback_handler.go, автофиксация — в internal/drafts/sweeper.go; обе
// фиксации проходят через один Coordinator.Commit.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"priemka/internal/catalog"
	"priemka/internal/drafts"
	"priemka/internal/models"
	"priemka/internal/report"
	"priemka/internal/telegram_api"
)

const (
	statusDraft = report.StatusDraft
	statusEdit  = report.StatusEdit
	statusFinal = report.StatusFinal
)

// handlePhotosDone завершает шаг фото: собирает черновик из текущей сессии.
// Повторное «Готово» после редактирования перезаписывает данные черновика,
// сохраняя момент первой отправки (от него считается окно автофиксации).
func (bh *BotHandler) handlePhotosDone(chatID int64, author string) {
	rd := bh.Deps.SessionManager.GetReception(chatID)
	if rd.Catalog == nil {
		bh.sendMessage(chatID, "Нет активной приёмки. Начните заново: /start")
		return
	}

	data := models.DraftData{
		Shop:         rd.Shop,
		Extra:        rd.Extra,
		Author:       author,
		AuthorChatID: chatID,
		Items:        drafts.BuildItems(rd),
		Photos:       append([]string(nil), rd.Photos...),
	}

	draft, err := bh.Deps.Drafts.Upsert(chatID, data)
	if err != nil {
		if errors.Is(err, drafts.ErrFinalizing) {
			// «Готово» наперегонки с автофиксацией: журнал пишется прямо
			// сейчас, правки этой сессии в черновик уже не попадут.
			bh.sendMessage(chatID, "Черновик уже фиксируется, изменения не приняты. Дождитесь итога в группе.")
			return
		}
		log.Printf("handlePhotosDone: Ошибка сохранения черновика для chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}

	// Сессия своё отработала: черновик живёт отдельно, редактирование
	// пересоберёт её заново из данных черновика.
	bh.Deps.SessionManager.ResetUser(chatID)

	bh.publishSummary(draft, statusDraft)

	keyboard := draftActionsKeyboard()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Приёмка отправлена как черновик ✅\nМагазин: %s, позиций: %d.\n\n"+
			"Можно отредактировать или зафиксировать сразу. Без действий черновик зафиксируется автоматически.",
		data.Shop, len(data.Items)))
	msg.ReplyMarkup = keyboard
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		log.Printf("handlePhotosDone: Ошибка отправки подтверждения chatID %d: %v", chatID, err)
	}
}

// handleDraftFinalize — ручная фиксация черновика. Гонка с автофиксацией
// разрешается внутри Coordinator.Commit атомарным захватом флага.
func (bh *BotHandler) handleDraftFinalize(chatID int64) {
	if bh.Deps.Coordinator == nil {
		log.Printf("handleDraftFinalize: Координатор не подключён, фиксация для chatID %d невозможна.", chatID)
		bh.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	result, err := bh.Deps.Coordinator.Commit(context.Background(), chatID)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			bh.sendMessage(chatID, "Черновик не найден. Начните новую приёмку: /start")
			return
		}
		log.Printf("handleDraftFinalize: Неожиданная ошибка фиксации для chatID %d: %v", chatID, err)
		bh.sendMessage(chatID, "Произошла ошибка. Попробуйте ещё раз.")
		return
	}

	switch result.Outcome {
	case models.CommitSuccess:
		msg := tgbotapi.NewMessage(chatID, "Приёмка зафиксирована ✅\nЖурнал записан. Итог отправлен в группу.")
		msg.ReplyMarkup = newReceptionKeyboard()
		if _, err := bh.Deps.BotClient.Send(msg); err != nil {
			log.Printf("handleDraftFinalize: Ошибка отправки подтверждения chatID %d: %v", chatID, err)
		}
	case models.CommitAlreadyFinalized:
		bh.sendMessage(chatID, "Черновик уже зафиксирован.")
	case models.CommitTransientFailure:
		bh.sendMessage(chatID, fmt.Sprintf(
			"Ошибка записи в журнал: %s\nПопробуйте ещё раз — или черновик зафиксируется автоматически при следующей попытке.",
			result.Reason))
	}
}

// publishSummary отправляет или обновляет на месте итог приёмки в группе
// со статусом «черновик»/«редактируется». Ошибки публикации логируются и
// не прерывают поток: итог — уведомление, а не источник истины.
func (bh *BotHandler) publishSummary(draft drafts.Draft, status report.Status) {
	prices := bh.pricesBestEffort()

	remaining := bh.Deps.Config.AutoFinalizeAfter - draft.Age(time.Now())
	text := report.Summary(draft.Data, prices, status, remaining)

	messageID, err := telegram_api.SendOrEditMessage(
		bh.Deps.BotClient, bh.Deps.Config.TargetGroupID, draft.GroupMessage, text, nil)
	if err != nil {
		log.Printf("publishSummary: Ошибка публикации итога для chatID %d: %v", draft.ChatID, err)
		return
	}
	if messageID != draft.GroupMessage {
		bh.Deps.Drafts.SetGroupMessage(draft.ChatID, messageID)
	}
}

// PublishFinal реализует drafts.FinalPublisher: переводит итог в группе в
// статус «финал» и прикладывает печатную версию xlsx-документом.
func (bh *BotHandler) PublishFinal(draft drafts.Draft) error {
	prices := bh.pricesBestEffort()

	text := report.Summary(draft.Data, prices, statusFinal, 0)
	if _, err := telegram_api.SendOrEditMessage(
		bh.Deps.BotClient, bh.Deps.Config.TargetGroupID, draft.GroupMessage, text, nil); err != nil {
		return fmt.Errorf("ошибка публикации финального итога: %w", err)
	}

	workbook, err := report.WorkbookBytes(draft.Data, prices)
	if err != nil {
		return fmt.Errorf("ошибка сборки xlsx-итога: %w", err)
	}
	caption := fmt.Sprintf("Итог приёмки\nМагазин: %s", draft.Data.Shop)
	if err := telegram_api.SendDocumentBytes(
		bh.Deps.BotClient, bh.Deps.Config.TargetGroupID, "priemka.xlsx", workbook, caption); err != nil {
		return fmt.Errorf("ошибка отправки xlsx-итога: %w", err)
	}
	return nil
}

// pricesBestEffort возвращает актуальный индекс цен; при недоступном
// прайсе — пустой индекс (все цены нули), итог всё равно публикуется.
func (bh *BotHandler) pricesBestEffort() catalog.PriceIndex {
	prices, _, err := bh.Deps.Catalog.Get(context.Background())
	if err != nil {
		log.Printf("pricesBestEffort: Прайс-лист недоступен, итог будет с нулевыми ценами: %v", err)
		return catalog.PriceIndex{}
	}
	return prices
}
