package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"priemka/internal/catalog"
	"priemka/internal/models"
)

const sheetName = "Итог"

// WorkbookBytes строит печатную версию итога приёмки как xlsx-документ:
// шапка с магазином, таблица Продукт | Шт | Цена | Сумма, доп. сумма и итого.
// Документ отправляется в группу при финальной фиксации.
func WorkbookBytes(data models.DraftData, prices catalog.PriceIndex) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания листа: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("ошибка удаления листа по умолчанию: %w", err)
	}

	set := func(cell string, value interface{}) error {
		return f.SetCellValue(sheetName, cell, value)
	}

	if err := set("A1", "Итог приёмки"); err != nil {
		return nil, err
	}
	if err := set("A2", fmt.Sprintf("Магазин: %s", data.Shop)); err != nil {
		return nil, err
	}
	if err := set("A3", fmt.Sprintf("От: %s", data.Author)); err != nil {
		return nil, err
	}

	headers := []string{"Продукт", "Шт", "Цена", "Сумма"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		if err := set(cell, h); err != nil {
			return nil, err
		}
	}

	row := 6
	total := 0.0
	for _, it := range data.Items {
		price := prices.Lookup(it.Family, it.Name)
		sum := it.Qty * price
		total += sum

		values := []interface{}{it.Name, it.Qty, price, sum}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := set(cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	row++
	if data.Extra > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := set(cell, fmt.Sprintf("Доп. сумма: %s", FormatMoney(data.Extra))); err != nil {
			return nil, err
		}
		total += data.Extra
		row++
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := set(cell, fmt.Sprintf("Итого: %s", FormatMoney(total))); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
