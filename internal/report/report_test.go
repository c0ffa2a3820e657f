package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"priemka/internal/catalog"
	"priemka/internal/models"
)

func testPrices() catalog.PriceIndex {
	return catalog.PriceIndex{
		{Family: "Молочка", Name: "Молоко"}: 100,
		{Family: "Хлеб", Name: "Батон"}:    45.5,
	}
}

func TestSummarySingleItem(t *testing.T) {
	data := models.DraftData{
		Shop:   "Store1",
		Author: "Иван Петров",
		Items: []models.LineItem{
			{Family: "Молочка", Name: "Молоко", Qty: 2},
		},
	}

	text := Summary(data, testPrices(), StatusDraft, 10*time.Minute)
	assert.Contains(t, text, "[ЧЕРНОВИК]")
	assert.Contains(t, text, "Магазин: Store1")
	assert.Contains(t, text, "От: Иван Петров")
	assert.Contains(t, text, "Молоко — 2 × 100 = 200")
	assert.Contains(t, text, "Итого: 200")
	assert.NotContains(t, text, "Доп. сумма")
	assert.Contains(t, text, "Автофиксация через ~10 мин")
}

func TestSummaryWithExtra(t *testing.T) {
	data := models.DraftData{
		Shop:   "Store1",
		Author: "Иван Петров",
		Extra:  150,
		Items: []models.LineItem{
			{Family: "Молочка", Name: "Молоко", Qty: 2},
		},
	}

	text := Summary(data, testPrices(), StatusEdit, 20*time.Second)
	assert.Contains(t, text, "[РЕДАКТИРУЕТСЯ]")
	assert.Contains(t, text, "Доп. сумма: 150")
	assert.Contains(t, text, "Итого: 350")
	assert.Contains(t, text, "Автофиксация через ~менее минуты")
}

func TestSummaryFinalHasNoWindow(t *testing.T) {
	data := models.DraftData{Shop: "Store1", Author: "Иван"}
	text := Summary(data, testPrices(), StatusFinal, 0)
	assert.Contains(t, text, "[ФИНАЛ]")
	assert.NotContains(t, text, "Автофиксация")
}

func TestSummaryMissingPriceIsZero(t *testing.T) {
	data := models.DraftData{
		Shop:   "Store1",
		Author: "Иван",
		Items: []models.LineItem{
			{Family: "Молочка", Name: "Кефир", Qty: 3},
		},
	}
	text := Summary(data, testPrices(), StatusDraft, time.Minute)
	assert.Contains(t, text, "Кефир — 3 × 0 = 0")
	assert.Contains(t, text, "Итого: 0")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", FormatMoney(0))
	assert.Equal(t, "200", FormatMoney(200))
	assert.Equal(t, "1 500", FormatMoney(1500))
	assert.Equal(t, "12 345", FormatMoney(12345.4))
	assert.Equal(t, "1 234 568", FormatMoney(1234567.5))
	assert.Equal(t, "-12 345", FormatMoney(-12345))
}

func TestFormatQty(t *testing.T) {
	assert.Equal(t, "2", FormatQty(2))
	assert.Equal(t, "1,5", FormatQty(1.5))
	assert.Equal(t, "0,25", FormatQty(0.25))
}

func TestWorkbookBytes(t *testing.T) {
	data := models.DraftData{
		Shop:   "Store1",
		Author: "Иван Петров",
		Extra:  150,
		Items: []models.LineItem{
			{Family: "Молочка", Name: "Молоко", Qty: 2},
			{Family: "Хлеб", Name: "Батон", Qty: 1},
		},
	}

	raw, err := WorkbookBytes(data, testPrices())
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Итог"}, f.GetSheetList())

	cell := func(ref string) string {
		v, err := f.GetCellValue("Итог", ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Итог приёмки", cell("A1"))
	assert.Equal(t, "Магазин: Store1", cell("A2"))
	assert.Equal(t, "Продукт", cell("A5"))
	assert.Equal(t, "Молоко", cell("A6"))
	assert.Equal(t, "2", cell("B6"))
	assert.Equal(t, "Батон", cell("A7"))

	// Итого = 2×100 + 1×45.5 + 150 = 395.5 → 396 после округления.
	rows, err := f.GetRows("Итог")
	require.NoError(t, err)
	flat := strings.Join(flatten(rows), "\n")
	assert.Contains(t, flat, "Доп. сумма: 150")
	assert.Contains(t, flat, "Итого: 396")
}

func flatten(rows [][]string) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}
