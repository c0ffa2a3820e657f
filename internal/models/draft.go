package models

// LineItem — строка приёмки: продукт с ненулевым количеством.
// Имена категории и продукта фиксируются из снимка каталога сессии,
// чтобы запись в журнал не зависела от последующих изменений прайса.
type LineItem struct {
	ProductID int     `json:"-"`
	Family    string  `json:"family"`
	Name      string  `json:"name"`
	Qty       float64 `json:"qty"`
}

// DraftData — замороженная копия данных сессии на момент нажатия «Готово».
// Мутируется только через перезапись целиком, пока черновик не зафиксирован.
type DraftData struct {
	Shop         string     `json:"shop"`
	Extra        float64    `json:"extra"`
	Author       string     `json:"author"`
	AuthorChatID int64      `json:"author_chat_id"`
	Items        []LineItem `json:"items"`
	Photos       []string   `json:"photos"`
}

// Total возвращает сумму строк по заданным ценам плюс доп. сумму.
// Отсутствующая цена считается нулём и не является ошибкой.
func (d DraftData) Total(price func(family, name string) float64) float64 {
	total := d.Extra
	for _, it := range d.Items {
		total += it.Qty * price(it.Family, it.Name)
	}
	return total
}

// CommitOutcome — исход одной попытки фиксации черновика.
type CommitOutcome int

const (
	CommitSuccess CommitOutcome = iota
	CommitAlreadyFinalized
	CommitTransientFailure
)

// CommitResult — результат вызова Commit. Reason заполняется только
// для CommitTransientFailure.
type CommitResult struct {
	Outcome CommitOutcome
	Reason  string
}

func (r CommitResult) String() string {
	switch r.Outcome {
	case CommitSuccess:
		return "success"
	case CommitAlreadyFinalized:
		return "already_finalized"
	case CommitTransientFailure:
		return "transient_failure: " + r.Reason
	}
	return "unknown"
}
