package projection

import (
	"testing"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(m time.Month, d int) core.Date { return core.NewDate(2025, m, d) }

func fixture() []core.Contribution {
	return []core.Contribution{
		{ID: 1, Topic: "Mensa", PublicationDate: day(time.November, 15)},
		{ID: 2, Topic: "Wahl"},
		{ID: 3, Topic: "Kino", PublicationDate: day(time.November, 1)},
		{ID: 4, Topic: "Mensa", PublicationDate: day(time.November, 15)},
		{ID: 5, Topic: "Sport", PublicationDate: day(time.December, 2)},
		{ID: 6, Topic: "Lesung"},
	}
}

func ids(rows []core.Contribution) []int64 {
	return lo.Map(rows, func(c core.Contribution, _ int) int64 { return c.ID })
}

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []int64
	}{
		{"unbounded keeps unset first", Range{}, []int64{2, 6, 3, 1, 4, 5}},
		{"inclusive bounds", Range{Start: day(time.November, 1), End: day(time.November, 15)}, []int64{3, 1, 4}},
		{"single day", Range{Start: day(time.November, 15), End: day(time.November, 15)}, []int64{1, 4}},
		{"open end", Range{Start: day(time.November, 2)}, []int64{1, 4, 5}},
		{"open start", Range{End: day(time.November, 1)}, []int64{3}},
		{"nothing in range", Range{Start: day(time.January, 1), End: day(time.January, 31)}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(fixture(), tt.r)
			assert.Equal(t, tt.want, ids(got))
			for _, c := range got {
				if tt.r.Bounded() {
					assert.True(t, c.PublicationDate.IsSet())
				}
			}
		})
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	rows := fixture()
	before := append([]core.Contribution(nil), rows...)
	_ = Project(rows, Range{})
	assert.Equal(t, before, rows)
}

func TestProject_EmptyDataset(t *testing.T) {
	got := Project(nil, Range{Start: day(time.October, 1)})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2025-10-01", "2027-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-01", r.Start.ISO())
	assert.Equal(t, "2027-12-31", r.End.ISO())

	open, err := ParseRange("", "")
	require.NoError(t, err)
	assert.False(t, open.Bounded())

	_, err = ParseRange("2025-12-01", "2025-11-01")
	assert.ErrorContains(t, err, "after end")

	_, err = ParseRange("morgen", "")
	assert.ErrorContains(t, err, "range start")
}

func TestHeat_DaysUntil(t *testing.T) {
	today := day(time.November, 10)
	rows := []core.Contribution{
		{ID: 1, Topic: "future", PublicationDate: today.AddDays(5)},
		{ID: 2, Topic: "past", PublicationDate: today.AddDays(-3)},
		{ID: 3, Topic: "today", PublicationDate: today},
		{ID: 4, Topic: "unset"},
	}

	cells := Heat(rows, today)
	require.Len(t, cells, 3)
	assert.Equal(t, 5, cells[0].DaysUntil)
	assert.Equal(t, -3, cells[1].DaysUntil)
	assert.Equal(t, 0, cells[2].DaysUntil)
}

func TestBuild(t *testing.T) {
	today := day(time.November, 10)
	rows := Project(fixture(), Range{})
	charts := Build(rows, today)

	assert.Equal(t, today, charts.Today)
	require.Len(t, charts.Timeline, 6, "timeline keeps duplicates and undated rows")
	assert.Equal(t, "Mensa", charts.Timeline[3].Topic)
	assert.Equal(t, "Mensa", charts.Timeline[4].Topic)
	assert.False(t, charts.Timeline[0].Date.IsSet())
	assert.Len(t, charts.Heat, 4)
}

func TestWeeklyCounts(t *testing.T) {
	today := day(time.November, 1)
	cells := Heat(fixture(), today)

	weeks := WeeklyCounts(cells)
	// 2025-11-01 is a Saturday: weeks of Oct 27, Nov 3, Nov 10, Nov 17, Nov 24, Dec 1.
	require.Len(t, weeks, 6)
	assert.Equal(t, "2025-10-27", weeks[0].Start.ISO())
	assert.Equal(t, []int{1, 0, 2, 0, 0, 1}, lo.Map(weeks, func(w WeekBucket, _ int) int { return w.Count }))

	assert.Nil(t, WeeklyCounts(nil))
}

func TestWeeklyCounts_OutlierSkipsFill(t *testing.T) {
	today := day(time.November, 10)
	rows := []core.Contribution{
		{ID: 1, Topic: "Mensa", PublicationDate: day(time.November, 15)},
		{ID: 2, Topic: "Tippfehler", PublicationDate: core.NewDate(9999, time.December, 31)},
		{ID: 3, Topic: "Wahl", PublicationDate: day(time.November, 11)},
	}

	weeks := WeeklyCounts(Heat(rows, today))
	require.Len(t, weeks, 2)
	assert.Equal(t, "2025-11-10", weeks[0].Start.ISO())
	assert.Equal(t, 2, weeks[0].Count)
	assert.Equal(t, "9999-12-27", weeks[1].Start.ISO())
	assert.Equal(t, 1, weeks[1].Count)
}

func TestHeat_FarDates(t *testing.T) {
	today := core.NewDate(2026, time.October, 19)
	rows := []core.Contribution{
		{ID: 1, Topic: "typo", PublicationDate: core.NewDate(225, time.January, 1)},
		{ID: 2, Topic: "far", PublicationDate: core.NewDate(9999, time.December, 31)},
	}

	cells := Heat(rows, today)
	require.Len(t, cells, 2)
	assert.Equal(t, -658093, cells[0].DaysUntil)
	assert.Equal(t, 2912151, cells[1].DaysUntil)
}

func TestToday(t *testing.T) {
	now := func() time.Time { return time.Date(2025, time.November, 10, 23, 30, 0, 0, time.UTC) }
	assert.Equal(t, "2025-11-10", Today(now).ISO())
}

func TestNewView_EmptyDatasetIsValid(t *testing.T) {
	view := NewView(nil, Range{Start: day(time.October, 1), End: day(time.December, 31)}, day(time.November, 1))

	assert.NotNil(t, view.Rows)
	assert.NotNil(t, view.Charts.Timeline)
	assert.NotNil(t, view.Charts.Heat)
	assert.Empty(t, view.Rows)
}
