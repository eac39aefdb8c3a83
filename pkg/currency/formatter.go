package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultCode = "GBP"

// Format renders amount as "<CODE> 1,234.50". An empty code falls back to GBP.
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCode
	}

	cents := int64(math.Round(math.Abs(amount) * 100))
	sign := ""
	if amount < 0 && cents > 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s %s.%02d", sign, code, groupThousands(cents/100), cents%100)
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	for i := 0; i < len(digits); i++ {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}
