// Файл: internal/handlers/keyboards.go
package handlers

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"priemka/internal/constants"
	"priemka/internal/report"
	"priemka/internal/session"
)

// newReceptionKeyboard — единственная кнопка запуска новой приёмки.
func newReceptionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Новая приёмка", constants.CALLBACK_NEW_RECEPTION),
		),
	)
}

// familiesKeyboard строит список категорий из снимка каталога сессии.
// На каждой кнопке — суммарное количество, уже введённое по категории.
func familiesKeyboard(rd session.ReceptionData) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if rd.Catalog != nil {
		for idx, f := range rd.Catalog.Families {
			text := fmt.Sprintf("%d. %s — %s", idx+1, f.Name, report.FormatQty(rd.FamilyQtyTotal(f.ID)))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("%s%d", constants.CALLBACK_PREFIX_FAMILY, f.ID)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Завершить приёмку", constants.CALLBACK_FINISH),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Сбросить приёмку", constants.CALLBACK_RESET_CONFIRM),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// productsKeyboard строит список продуктов категории с текущими количествами.
func productsKeyboard(rd session.ReceptionData, famID int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if rd.Catalog != nil {
		for idx, pid := range rd.Catalog.FamilyProducts[famID] {
			p, ok := rd.Catalog.ProductByID(pid)
			if !ok {
				continue
			}
			text := fmt.Sprintf("%d. %s — %s", idx+1, p.Name, report.FormatQty(rd.Quantities[pid]))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("%s%d", constants.CALLBACK_PREFIX_PRODUCT, pid)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад к категориям", constants.CALLBACK_BACK_FAMILIES),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Завершить приёмку", constants.CALLBACK_FINISH),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Сбросить приёмку", constants.CALLBACK_RESET_CONFIRM),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// resetConfirmKeyboard — подтверждение сброса приёмки.
func resetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, сбросить", constants.CALLBACK_RESET_YES),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет, продолжить", constants.CALLBACK_RESET_NO),
		),
	)
}

// resetOnlyKeyboard — одна кнопка сброса (шаг доп. суммы).
func resetOnlyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Сбросить приёмку", constants.CALLBACK_RESET_CONFIRM),
		),
	)
}

// photosDoneKeyboard — завершение шага фото.
func photosDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Готово", constants.CALLBACK_PHOTOS_DONE),
		),
	)
}

// draftActionsKeyboard — действия над ожидающим черновиком.
func draftActionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать", constants.CALLBACK_DRAFT_EDIT),
			tgbotapi.NewInlineKeyboardButtonData("✅ Зафиксировать", constants.CALLBACK_DRAFT_FINALIZE),
		),
	)
}
