package core

import (
	"encoding/json"
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

// Date is a calendar day without time-of-day. The zero value is "unset",
// which is a valid state and distinct from an unparsable input.
type Date struct {
	t time.Time // always midnight UTC when set
}

// Unset is the explicit unset date.
var Unset = Date{}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping t's calendar day in its own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Unset
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the local calendar day of now.
func Today(now time.Time) Date {
	return DateOf(now)
}

func (d Date) IsSet() bool {
	return !d.t.IsZero()
}

// Time returns midnight UTC of the day, or the zero time when unset.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Compare orders dates ascending with unset before every set date.
func (d Date) Compare(other Date) int {
	switch {
	case !d.IsSet() && !other.IsSet():
		return 0
	case !d.IsSet():
		return -1
	case !other.IsSet():
		return 1
	default:
		return d.t.Compare(other.t)
	}
}

func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// DaysSince returns d - other in whole days. Both dates must be set.
func (d Date) DaysSince(other Date) int {
	if !d.IsSet() || !other.IsSet() {
		return 0
	}
	// Both are midnight UTC. Duration would saturate beyond ~292 years.
	return int((d.t.Unix() - other.t.Unix()) / 86400)
}

func (d Date) AddDays(n int) Date {
	if !d.IsSet() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// ISO renders YYYY-MM-DD, or "" when unset.
func (d Date) ISO() string {
	if !d.IsSet() {
		return ""
	}
	return d.t.Format(isoLayout)
}

func (d Date) String() string {
	if !d.IsSet() {
		return "unset"
	}
	return d.ISO()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Unset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Unset
		return nil
	}
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	*d = DateOf(t)
	return nil
}
