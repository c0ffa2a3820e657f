package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount разбирает неотрицательное число из пользовательского ввода.
// Принимает запятую или точку как десятичный разделитель. Отрицательные
// и нечисловые значения — ошибка; вызывающая сторона переспрашивает,
// не меняя состояние сессии.
func ParseAmount(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, fmt.Errorf("пустой ввод")
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("не число: '%s'", raw)
	}
	if val < 0 {
		return 0, fmt.Errorf("отрицательное значение: %v", val)
	}
	return val, nil
}
