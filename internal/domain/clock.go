package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts "HH:MM" into minutes since midnight.
// Hours above 23 (up to three digits) are accepted so that values produced by
// FormatClock for trips running past midnight parse back. Signs are rejected.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("parse clock %q: expected HH:MM", s)
	}

	if len(h) == 0 || len(h) > 3 || !allDigits(h) {
		return 0, fmt.Errorf("parse clock %q: invalid hours", s)
	}
	if len(m) != 2 || !allDigits(m) {
		return 0, fmt.Errorf("parse clock %q: invalid minutes", s)
	}

	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	if minutes > 59 {
		return 0, fmt.Errorf("parse clock %q: invalid minutes", s)
	}

	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
// The hour component is not wrapped at 24.
func FormatClock(total int) (string, error) {
	if total < 0 {
		return "", fmt.Errorf("format clock: negative time %d", total)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
