package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/projection"
)

func day(s string) core.Date {
	d, err := codec.ParseDate(s, core.DirectionISO)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderTimelineEmpty(t *testing.T) {
	got := ansi.Strip(RenderTimeline(nil, day("2025-11-10"), 80))
	if !strings.Contains(got, "No contributions in range") {
		t.Fatalf("empty timeline = %q, want no-data text", got)
	}
}

func TestRenderTimelineMarksPointsAndToday(t *testing.T) {
	points := []projection.TimelinePoint{
		{ID: 1, Topic: "Wahl", Date: day("2025-11-07"), Status: "Sheet"},
		{ID: 2, Topic: "Mensa", Date: day("2025-11-15"), Status: "WP"},
		{ID: 3, Topic: "Interview"},
	}
	got := ansi.Strip(RenderTimeline(points, day("2025-11-10"), 90))

	for _, want := range []string{"Wahl", "Mensa", "07.11.2025", "15.11.2025", "Undated", "Interview"} {
		if !strings.Contains(got, want) {
			t.Fatalf("timeline missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "●") != 2 {
		t.Fatalf("point markers = %d, want 2:\n%s", strings.Count(got, "●"), got)
	}
	if !strings.Contains(got, "│") {
		t.Fatalf("timeline missing today marker:\n%s", got)
	}
}

func TestRenderTimelineTodayOutsideSpan(t *testing.T) {
	points := []projection.TimelinePoint{{Topic: "Wahl", Date: day("2025-11-07")}}
	got := ansi.Strip(RenderTimeline(points, day("2026-03-01"), 80))
	if strings.Contains(got, "│") {
		t.Fatalf("today marker drawn outside the axis span:\n%s", got)
	}
}

func TestRenderHeatLabels(t *testing.T) {
	cells := []projection.HeatCell{
		{Topic: "Mensa", Date: day("2025-11-15"), DaysUntil: 5},
		{Topic: "Wahl", Date: day("2025-11-07"), DaysUntil: -3},
		{Topic: "Kino", Date: day("2025-11-10"), DaysUntil: 0},
	}
	got := ansi.Strip(RenderHeat(cells, 80))
	for _, want := range []string{"+5d", "-3d", "today", "15.11.2025"} {
		if !strings.Contains(got, want) {
			t.Fatalf("heat missing %q:\n%s", want, got)
		}
	}
}

func TestHeatColorScale(t *testing.T) {
	if heatColor(0) != lipgloss.Color(heatToday.Hex()) {
		t.Fatalf("heatColor(0) = %v, want today color", heatColor(0))
	}
	if heatColor(30) != heatColor(90) {
		t.Fatalf("future scale does not saturate: %v vs %v", heatColor(30), heatColor(90))
	}
	if heatColor(-30) != heatColor(-90) {
		t.Fatalf("past scale does not saturate: %v vs %v", heatColor(-30), heatColor(-90))
	}
	if heatColor(10) == heatColor(-10) {
		t.Fatal("past and future share a color")
	}
}

func TestRenderWeekly(t *testing.T) {
	if got := RenderWeekly(nil, 80); got != "" {
		t.Fatalf("RenderWeekly(nil) = %q, want empty", got)
	}
	buckets := []projection.WeekBucket{
		{Start: day("2025-10-27"), Count: 1},
		{Start: day("2025-11-03"), Count: 0},
		{Start: day("2025-11-10"), Count: 2},
	}
	got := ansi.Strip(RenderWeekly(buckets, 80))
	if !strings.Contains(got, "3 weeks from 27.10.2025, peak 2/week") {
		t.Fatalf("weekly caption missing:\n%s", got)
	}
}

func TestRenderGrid(t *testing.T) {
	rows := codec.EncodeGrid([]core.Contribution{
		{ID: 7, Status: "Canva", Author: "Lea", Topic: "Mensa", Department: "Campus", PublicationDate: day("2025-11-15")},
	})
	got := ansi.Strip(RenderGrid(rows, 120))
	for _, want := range []string{"Beitragsthema", "Mensa", "Lea", "15.11.2025", "7"} {
		if !strings.Contains(got, want) {
			t.Fatalf("grid missing %q:\n%s", want, got)
		}
	}

	empty := ansi.Strip(RenderGrid(nil, 120))
	if !strings.Contains(empty, "Ressort") || !strings.Contains(empty, "No contributions") {
		t.Fatalf("empty grid = %q", empty)
	}
}

func TestPadTruncatesWide(t *testing.T) {
	if got := pad("Beitragsthema", 6); ansi.StringWidth(got) != 6 {
		t.Fatalf("pad width = %d, want 6 (%q)", ansi.StringWidth(got), got)
	}
	if got := pad("ab", 4); got != "ab  " {
		t.Fatalf("pad = %q, want %q", got, "ab  ")
	}
}
