// Пакет report формирует итог приёмки: текстовую сводку со статусом для
// общей группы и печатную версию в виде xlsx-документа.
package report

import (
	"fmt"
	"strings"
	"time"

	"priemka/internal/catalog"
	"priemka/internal/models"
)

// Status — статус итога в группе.
type Status string

const (
	StatusDraft Status = "draft"
	StatusEdit  Status = "edit"
	StatusFinal Status = "final"
)

// label возвращает русскую подпись статуса для заголовка.
func (s Status) label() string {
	switch s {
	case StatusDraft:
		return "ЧЕРНОВИК"
	case StatusEdit:
		return "РЕДАКТИРУЕТСЯ"
	case StatusFinal:
		return "ФИНАЛ"
	}
	return string(s)
}

// Summary строит текстовый итог приёмки: заголовок со статусом, магазин,
// строки «название — кол-во × цена = сумма», доп. сумма (если есть),
// итого и — для черновика/редактирования — заметку об оставшемся окне
// автофиксации. Отсутствующая цена считается нулём.
func Summary(data models.DraftData, prices catalog.PriceIndex, status Status, remaining time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Итог приёмки [%s]\n", status.label())
	fmt.Fprintf(&b, "Магазин: %s\n", data.Shop)
	fmt.Fprintf(&b, "От: %s\n", data.Author)

	total := 0.0
	for _, it := range data.Items {
		price := prices.Lookup(it.Family, it.Name)
		sum := it.Qty * price
		total += sum
		fmt.Fprintf(&b, "%s — %s × %s = %s\n", it.Name, FormatQty(it.Qty), FormatMoney(price), FormatMoney(sum))
	}

	if data.Extra > 0 {
		fmt.Fprintf(&b, "Доп. сумма: %s\n", FormatMoney(data.Extra))
		total += data.Extra
	}
	fmt.Fprintf(&b, "Итого: %s", FormatMoney(total))

	if status == StatusDraft || status == StatusEdit {
		fmt.Fprintf(&b, "\n\nАвтофиксация через ~%s", formatWindow(remaining))
	}
	return b.String()
}

// formatWindow переводит оставшееся окно в человекочитаемый вид.
func formatWindow(remaining time.Duration) string {
	if remaining <= 0 {
		return "менее минуты"
	}
	mins := int(remaining.Round(time.Minute) / time.Minute)
	if mins < 1 {
		return "менее минуты"
	}
	return fmt.Sprintf("%d мин", mins)
}
