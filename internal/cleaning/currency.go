package cleaning

import (
	"strconv"
	"strings"
)

// ParseCurrency strips everything except digits, '.' and '-' and parses the
// rest. ok is false when nothing numeric remains or the remainder is
// malformed (for example "1.2.3" or a price range).
func ParseCurrency(text string) (value float64, ok bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, strings.TrimSpace(text))

	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeCurrency is ParseCurrency over an optional input. A nil input or an
// unparseable one yields nil.
func NormalizeCurrency(text *string) *float64 {
	if text == nil {
		return nil
	}
	v, ok := ParseCurrency(*text)
	if !ok {
		return nil
	}
	return &v
}

// FormatNumber renders v without trailing zeros; ParseCurrency reads it back
// unchanged.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
