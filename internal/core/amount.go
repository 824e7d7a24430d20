// Amount parsing and formatting for monetary values entered by the user or
// round-tripped through the key-value store, which keeps income as a plain
// decimal string (e.g. "2500.5").
package core

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAmount rejects amounts that are empty, non-numeric, signed,
// non-finite or not strictly positive.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to a positive float64. Both dot
// (12.34) and comma (12,34) decimal separators are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !isFinite(v) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders a value the way the store and the UI expect it:
// plain decimal, two digits after the separator.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
