package projection

import (
	"slices"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/samber/lo"
)

// TimelinePoint places one contribution on the timeline. Topics repeat when
// several rows share one; each row is its own point.
type TimelinePoint struct {
	ID         int64     `json:"id"`
	Topic      string    `json:"topic"`
	Date       core.Date `json:"date"`
	Author     string    `json:"author"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
}

// HeatCell is one dated contribution valued by days until publication
// (negative in the past, zero today).
type HeatCell struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Date      core.Date `json:"date"`
	Status    string    `json:"status"`
	DaysUntil int       `json:"days_until"`
}

type Charts struct {
	Today    core.Date       `json:"today"`
	Timeline []TimelinePoint `json:"timeline"`
	Heat     []HeatCell      `json:"heat"`
}

// View is the query-boundary result: the projected rows plus both series.
type View struct {
	Range  Range               `json:"range"`
	Rows   []core.Contribution `json:"rows"`
	Charts Charts              `json:"charts"`
}

// NewView projects all onto r and derives the chart series. An empty dataset
// yields an empty but complete view.
func NewView(all []core.Contribution, r Range, today core.Date) View {
	rows := Project(all, r)
	return View{Range: r, Rows: rows, Charts: Build(rows, today)}
}

// WeekBucket counts dated publications in the ISO week starting at Start
// (a Monday).
type WeekBucket struct {
	Start core.Date `json:"start"`
	Count int       `json:"count"`
}

// Timeline keeps every row, including undated ones.
func Timeline(rows []core.Contribution) []TimelinePoint {
	return lo.Map(rows, func(c core.Contribution, _ int) TimelinePoint {
		return TimelinePoint{
			ID:         c.ID,
			Topic:      c.Topic,
			Date:       c.PublicationDate,
			Author:     c.Author,
			Department: c.Department,
			Status:     c.Status,
		}
	})
}

// Heat drops rows without a publication date; there is nothing to place.
func Heat(rows []core.Contribution, today core.Date) []HeatCell {
	return lo.FilterMap(rows, func(c core.Contribution, _ int) (HeatCell, bool) {
		if !c.PublicationDate.IsSet() {
			return HeatCell{}, false
		}
		return HeatCell{
			ID:        c.ID,
			Topic:     c.Topic,
			Date:      c.PublicationDate,
			Status:    c.Status,
			DaysUntil: c.PublicationDate.DaysSince(today),
		}, true
	})
}

// Build derives both series from an already projected dataset.
func Build(rows []core.Contribution, today core.Date) Charts {
	return Charts{
		Today:    today,
		Timeline: Timeline(rows),
		Heat:     Heat(rows, today),
	}
}

// maxFilledWeeks bounds gap filling; a wider span keeps only populated weeks.
const maxFilledWeeks = 520

// WeeklyCounts buckets heat cells by ISO week, filling empty weeks between
// the first and last one so the series is continuous. When the cells span
// more than maxFilledWeeks, only populated weeks are returned, in order.
func WeeklyCounts(cells []HeatCell) []WeekBucket {
	if len(cells) == 0 {
		return nil
	}
	counts := lo.CountValuesBy(cells, func(c HeatCell) core.Date { return weekStart(c.Date) })

	starts := lo.Keys(counts)
	slices.SortFunc(starts, core.Date.Compare)
	first, last := starts[0], starts[len(starts)-1]

	if last.DaysSince(first)/7+1 > maxFilledWeeks {
		return lo.Map(starts, func(w core.Date, _ int) WeekBucket {
			return WeekBucket{Start: w, Count: counts[w]}
		})
	}

	var out []WeekBucket
	for w := first; !w.After(last); w = w.AddDays(7) {
		out = append(out, WeekBucket{Start: w, Count: counts[w]})
	}
	return out
}

func weekStart(d core.Date) core.Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDays(-offset)
}

// Today is the reference date for heat values in the local calendar.
func Today(now func() time.Time) core.Date {
	if now == nil {
		now = time.Now
	}
	return core.Today(now())
}
