package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInvestmentRange parses size labels such as "5M - 15M", "$500K-1.2M"
// or "2000000" into a low/high pair in USD. A single amount yields low == high.
func ParseInvestmentRange(s string) (low, high float64, err error) {
	parts := strings.Split(s, "-")
	switch len(parts) {
	case 1:
		v, err := parseAmount(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("parse investment range %q: %w", s, err)
		}
		return v, v, nil
	case 2:
		low, err = parseAmount(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("parse investment range %q: %w", s, err)
		}
		high, err = parseAmount(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("parse investment range %q: %w", s, err)
		}
		if low > high {
			return 0, 0, fmt.Errorf("parse investment range %q: low exceeds high", s)
		}
		return low, high, nil
	default:
		return 0, 0, fmt.Errorf("parse investment range %q: expected \"low - high\"", s)
	}
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1_000
	case 'm', 'M':
		mult = 1_000_000
	case 'b', 'B':
		mult = 1_000_000_000
	}
	if mult != 1 {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return v * mult, nil
}
