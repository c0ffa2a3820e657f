package models

// Family — категория товаров ("Продукт общий" в прайс-листе).
// ID присваивается в порядке первого появления, начиная с 1.
type Family struct {
	ID   int    `json:"fam_id"`
	Name string `json:"family"`
}

// Product — позиция прайс-листа. ID глобально уникален и присваивается
// по порядку строк всего прайса.
type Product struct {
	ID       int    `json:"prod_id"`
	FamilyID int    `json:"fam_id"`
	Name     string `json:"name"`
}

// CatalogSnapshot — каталог, зафиксированный на момент начала приёмки.
// После захвата снимка ID категорий и продуктов не меняются до конца сессии,
// даже если исходная таблица обновилась.
// CatalogSnapshot is the catalog frozen at the start of a reception.
// Once captured, family and product IDs stay stable for the session's
// lifetime, even if the source sheet changes underneath.
type CatalogSnapshot struct {
	Families       []Family      `json:"families"`
	Products       []Product     `json:"products"`
	FamilyProducts map[int][]int `json:"fam_to_prod_ids"`
}

// ProductByID возвращает продукт по его ID из снимка.
func (c *CatalogSnapshot) ProductByID(prodID int) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == prodID {
			return p, true
		}
	}
	return Product{}, false
}

// FamilyByID возвращает категорию по её ID из снимка.
func (c *CatalogSnapshot) FamilyByID(famID int) (Family, bool) {
	for _, f := range c.Families {
		if f.ID == famID {
			return f, true
		}
	}
	return Family{}, false
}
