// Файл: internal/session/reception.go
package session

import (
	"priemka/internal/models"
)

// ReceptionData — временное состояние приёмки в сессии пользователя.
// Снимок каталога захватывается при вводе магазина и не меняется до конца
// сессии. Доступ синхронизирует SessionManager.
type ReceptionData struct {
	UserChatID int64

	Shop  string
	Extra float64

	// Количества по ID продукта из снимка. Отсутствие ключа — ноль.
	// Повторный ввод по тому же продукту перезаписывает значение.
	Quantities map[int]float64

	Catalog *models.CatalogSnapshot

	// FileID фотографий, принятых на шаге фото.
	Photos []string

	// Текущая позиция навигации по каталогу.
	CurrentFamilyID  int
	CurrentProductID int
}

// NewReception создает пустую сессию приёмки для указанного chatID.
func NewReception(chatID int64) ReceptionData {
	return ReceptionData{
		UserChatID: chatID,
		Quantities: make(map[int]float64),
		Photos:     make([]string, 0),
	}
}

// clone возвращает копию с собственными экземплярами изменяемых полей.
// Снимок каталога неизменен после захвата и разделяется по указателю.
func (rd ReceptionData) clone() ReceptionData {
	out := rd
	out.Quantities = make(map[int]float64, len(rd.Quantities))
	for id, qty := range rd.Quantities {
		out.Quantities[id] = qty
	}
	out.Photos = append([]string(nil), rd.Photos...)
	return out
}

// ReplayFromDraft восстанавливает сессию из данных черновика для
// редактирования: количества переигрываются по ID продукта из строк
// черновика, магазин и доп. сумма возвращаются как были. Снимок каталога
// захватывается заново вызывающей стороной и передаётся сюда.
func ReplayFromDraft(chatID int64, data models.DraftData, snap *models.CatalogSnapshot) ReceptionData {
	rd := NewReception(chatID)
	rd.Shop = data.Shop
	rd.Extra = data.Extra
	rd.Catalog = snap
	rd.Photos = append(rd.Photos, data.Photos...)
	for _, it := range data.Items {
		rd.Quantities[it.ProductID] = it.Qty
	}
	return rd
}

// FamilyQtyTotal возвращает суммарное количество по всем продуктам категории.
// Используется для бейджей на кнопках категорий.
func (rd ReceptionData) FamilyQtyTotal(famID int) float64 {
	if rd.Catalog == nil {
		return 0
	}
	var total float64
	for _, pid := range rd.Catalog.FamilyProducts[famID] {
		total += rd.Quantities[pid]
	}
	return total
}
