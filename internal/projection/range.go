// Package projection filters the contribution dataset by publication date and
// derives the timeline and heat-map series drawn from it.
package projection

import (
	"fmt"
	"slices"

	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
)

// Range is an inclusive publication-date interval. An unset bound is open.
type Range struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

func (r Range) Bounded() bool {
	return r.Start.IsSet() || r.End.IsSet()
}

func (r Range) Contains(d core.Date) bool {
	if !d.IsSet() {
		return !r.Bounded()
	}
	if r.Start.IsSet() && d.Before(r.Start) {
		return false
	}
	if r.End.IsSet() && d.After(r.End) {
		return false
	}
	return true
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// ParseRange reads date-picker bounds (ISO direction). Empty strings leave
// that side open.
func ParseRange(start, end string) (Range, error) {
	s, err := codec.ParseDate(start, core.DirectionISO)
	if err != nil {
		return Range{}, fmt.Errorf("range start: %w", err)
	}
	e, err := codec.ParseDate(end, core.DirectionISO)
	if err != nil {
		return Range{}, fmt.Errorf("range end: %w", err)
	}
	r := Range{Start: s, End: e}
	if s.IsSet() && e.IsSet() && s.After(e) {
		return Range{}, fmt.Errorf("range start %s is after end %s", s.ISO(), e.ISO())
	}
	return r, nil
}

// Project returns the rows whose publication date lies in r, sorted by
// publication date with unset dates first. Equal dates keep their input
// order. rows is not modified.
func Project(rows []core.Contribution, r Range) []core.Contribution {
	out := make([]core.Contribution, 0, len(rows))
	for _, c := range rows {
		if r.Contains(c.PublicationDate) {
			out = append(out, c)
		}
	}
	SortByPublication(out)
	return out
}

// SortByPublication sorts in place: unset first, then ascending, stable.
func SortByPublication(rows []core.Contribution) {
	slices.SortStableFunc(rows, func(a, b core.Contribution) int {
		return a.PublicationDate.Compare(b.PublicationDate)
	})
}
