// Файл: internal/report/format.go
package report

import (
	"math"
	"strconv"
	"strings"
)

// FormatMoney форматирует сумму: округление до целого и разряды через
// пробел (12 345).
func FormatMoney(n float64) string {
	v := int64(math.Round(n))
	s := strconv.FormatInt(v, 10)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)

	out := strings.Join(groups, " ")
	if neg {
		out = "-" + out
	}
	return out
}

// FormatQty форматирует количество: целое без дробной части, иначе
// с запятой как десятичным разделителем ("1,5").
func FormatQty(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatInt(int64(q), 10)
	}
	return strings.ReplaceAll(strconv.FormatFloat(q, 'f', -1, 64), ".", ",")
}
