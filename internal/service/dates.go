package service

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// addDays shifts a YYYY-MM-DD date by whole calendar days. All arithmetic
// stays on Y/M/D components: dates never carry a timezone, so there is no
// off-by-one-day drift around DST or UTC offsets.
func addDays(date string, days int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format(dateLayout), nil
}

// daysBetween returns the signed number of calendar days from a to b.
func daysBetween(a, b string) (int, error) {
	ta, err := time.Parse(dateLayout, a)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", a, err)
	}
	tb, err := time.Parse(dateLayout, b)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", b, err)
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
