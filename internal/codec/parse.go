// Package codec converts between canonical dates and the text forms used by
// the workbook, the database and the edit grid.
//
// Every parse call names its Direction. The same string can mean different
// days under different conventions (03.04.2025 is 3 April day-first and
// 4 March month-first), so the codec never guesses the producer.
package codec

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/core"
)

const displayLayout = "02.01.2006"

// Optional clock suffix written by older exports ("2025-11-01 00:00:00").
var dateText = regexp.MustCompile(
	`^(\d{1,4})[./-](\d{1,2})[./-](\d{1,4})` +
		`(?:[ T]\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?)?$`,
)

// FormatDisplay renders DD.MM.YYYY, or "" for an unset date.
func FormatDisplay(d core.Date) string {
	if !d.IsSet() {
		return ""
	}
	return d.Time().Format(displayLayout)
}

// FormatISO renders YYYY-MM-DD, or "" for an unset date.
func FormatISO(d core.Date) string {
	return d.ISO()
}

// ParseDate parses raw under the convention of its producer. Empty input is
// unset; anything else that is not a calendar date is a *core.DateFormatError.
func ParseDate(raw string, dir core.Direction) (core.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return core.Unset, nil
	}
	fail := &core.DateFormatError{Raw: raw, Direction: dir}

	m := dateText.FindStringSubmatch(s)
	if m == nil {
		return core.Unset, fail
	}
	a, b, c := m[1], m[2], m[3]

	var year, month, day int
	switch {
	case len(a) == 4:
		// Year-first is unambiguous in both directions.
		if len(c) > 2 {
			return core.Unset, fail
		}
		year, month, day = atoi(a), atoi(b), atoi(c)
	case len(c) == 4 && len(a) <= 2:
		switch dir {
		case core.DirectionDayFirst:
			day, month, year = atoi(a), atoi(b), atoi(c)
		case core.DirectionISO:
			// The bulk loader reads non-ISO text month-first and only swaps
			// when the leading number cannot be a month.
			month, day, year = atoi(a), atoi(b), atoi(c)
			if month > 12 && day <= 12 {
				month, day = day, month
			}
		default:
			return core.Unset, fail
		}
	default:
		return core.Unset, fail
	}

	d, ok := calendarDate(year, month, day)
	if !ok {
		return core.Unset, fail
	}
	return d, nil
}

func calendarDate(year, month, day int) (core.Date, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return core.Unset, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02. into March; reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return core.Unset, false
	}
	return core.NewDate(year, time.Month(month), day), true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
