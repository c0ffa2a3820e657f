package drafts

import (
	"priemka/internal/models"
	"priemka/internal/session"
)

// BuildItems собирает строки черновика из количеств сессии и её снимка
// каталога. Берутся только позиции с положительным количеством, в порядке
// продуктов снимка; имена категории и продукта фиксируются из снимка.
func BuildItems(rd session.ReceptionData) []models.LineItem {
	if rd.Catalog == nil {
		return nil
	}
	var items []models.LineItem
	for _, p := range rd.Catalog.Products {
		qty := rd.Quantities[p.ID]
		if qty <= 0 {
			continue
		}
		fam, _ := rd.Catalog.FamilyByID(p.FamilyID)
		items = append(items, models.LineItem{
			ProductID: p.ID,
			Family:    fam.Name,
			Name:      p.Name,
			Qty:       qty,
		})
	}
	return items
}
