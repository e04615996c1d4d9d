package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/core"
	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
)

const (
	noDataText  = "  No contributions in range"
	maxLabelW   = 28
	minAxisW    = 10
	heatHorizon = 30 // days at which the heat scale saturates
)

// Diverging red-white-blue scale: past is red, today white, future blue.
var (
	heatPast   = mustHex("#B2182B")
	heatToday  = mustHex("#F7F7F7")
	heatFuture = mustHex("#2166AC")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// heatColor maps a days-until value onto the diverging scale.
func heatColor(days int) lipgloss.Color {
	t := float64(days) / heatHorizon
	if t > 1 {
		t = 1
	}
	if t < -1 {
		t = -1
	}
	if t < 0 {
		return lipgloss.Color(heatToday.BlendLab(heatPast, -t).Clamped().Hex())
	}
	return lipgloss.Color(heatToday.BlendLab(heatFuture, t).Clamped().Hex())
}

// pad truncates s to w cells and right-pads it with spaces.
func pad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if gap := w - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

func labelWidth(w int) int {
	return lo.Clamp(w/3, 8, maxLabelW)
}

// RenderTimeline draws one row per dated point on a shared date axis with a
// today marker. Undated points are listed underneath.
func RenderTimeline(points []projection.TimelinePoint, today core.Date, w int) string {
	if len(points) == 0 {
		return dimStyle.Render(noDataText)
	}
	dated, undated := lo.FilterReject(points, func(p projection.TimelinePoint, _ int) bool {
		return p.Date.IsSet()
	})

	var lines []string
	if len(dated) > 0 {
		labelW := labelWidth(w)
		axisW := w - labelW - 16
		if axisW < minAxisW {
			axisW = minAxisW
		}

		first := lo.MinBy(dated, func(a, b projection.TimelinePoint) bool { return a.Date.Before(b.Date) }).Date
		last := lo.MaxBy(dated, func(a, b projection.TimelinePoint) bool { return a.Date.After(b.Date) }).Date
		span := last.DaysSince(first)
		position := func(d core.Date) int {
			if span == 0 {
				return axisW / 2
			}
			return d.DaysSince(first) * (axisW - 1) / span
		}
		todayPos := -1
		if !today.Before(first) && !today.After(last) {
			todayPos = position(today)
		}

		axisLabel := codec.FormatDisplay(first)
		if span > 0 {
			axisLabel += strings.Repeat(" ", max(1, axisW-2*len(axisLabel))) + codec.FormatDisplay(last)
		}
		lines = append(lines, "  "+strings.Repeat(" ", labelW)+" "+dimStyle.Render(axisLabel))

		for _, p := range dated {
			at := position(p.Date)
			var axis strings.Builder
			for i := 0; i < axisW; i++ {
				switch {
				case i == at:
					axis.WriteString(lipgloss.NewStyle().Foreground(statusColor(p.Status)).Render("●"))
				case i == todayPos:
					axis.WriteString(todayStyle.Render("│"))
				default:
					axis.WriteString(dimStyle.Render("·"))
				}
			}
			lines = append(lines, fmt.Sprintf("  %s %s %s",
				labelStyle.Render(pad(p.Topic, labelW)),
				axis.String(),
				valueStyle.Render(codec.FormatDisplay(p.Date)),
			))
		}
	}

	if len(undated) > 0 {
		topics := lo.Map(undated, func(p projection.TimelinePoint, _ int) string { return p.Topic })
		lines = append(lines, "", "  "+sectionHeaderStyle.Render("Undated")+"  "+
			dimStyle.Render(ansi.Truncate(strings.Join(topics, ", "), max(0, w-12), "…")))
	}
	return strings.Join(lines, "\n")
}

// RenderHeat lists every heat cell with a block colored by days until
// publication.
func RenderHeat(cells []projection.HeatCell, w int) string {
	if len(cells) == 0 {
		return dimStyle.Render(noDataText)
	}
	labelW := labelWidth(w)
	blockW := lo.Clamp(w-labelW-18, 6, 40)

	lines := make([]string, 0, len(cells))
	for _, c := range cells {
		days := fmt.Sprintf("%+dd", c.DaysUntil)
		if c.DaysUntil == 0 {
			days = "today"
		}
		block := lipgloss.NewStyle().
			Background(heatColor(c.DaysUntil)).
			Foreground(colorBase).
			Render(pad(" "+days, blockW))
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			labelStyle.Render(pad(c.Topic, labelW)),
			valueStyle.Render(codec.FormatDisplay(c.Date)),
			block,
		))
	}
	return strings.Join(lines, "\n")
}

// RenderWeekly draws publications per week as a sparkline.
func RenderWeekly(buckets []projection.WeekBucket, w int) string {
	if len(buckets) == 0 || w < 4 {
		return ""
	}
	values := lo.Map(buckets, func(b projection.WeekBucket, _ int) float64 { return float64(b.Count) })
	peak := lo.Max(values)

	width := lo.Clamp(len(values), 1, w-4)
	sl := sparkline.New(width, 2, sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorBlue)))
	sl.PushAll(values)
	sl.Draw()

	caption := fmt.Sprintf("%d weeks from %s, peak %.0f/week",
		len(buckets), codec.FormatDisplay(buckets[0].Start), peak)
	return sl.View() + "\n" + dimStyle.Render(caption)
}

var gridColumns = []struct {
	title string
	width int
}{
	{"ID", 5},
	{"Status", 16},
	{"Autor", 14},
	{"Beitragsthema", 0}, // takes the remaining width
	{"Ressort", 14},
	{"VÖ", 10},
	{"Start", 10},
	{"Ende", 10},
}

// RenderGrid draws the edit grid read-only, dates day-first.
func RenderGrid(rows []codec.GridRow, w int) string {
	fixed := 0
	for _, col := range gridColumns {
		fixed += col.width + 1
	}
	topicW := max(10, w-fixed-2)

	widthOf := func(i int) int {
		if gridColumns[i].width == 0 {
			return topicW
		}
		return gridColumns[i].width
	}

	header := make([]string, len(gridColumns))
	for i, col := range gridColumns {
		header[i] = pad(col.title, widthOf(i))
	}
	lines := []string{"  " + sectionHeaderStyle.Render(strings.Join(header, " "))}
	if len(rows) == 0 {
		return strings.Join(append(lines, dimStyle.Render(noDataText)), "\n")
	}

	for _, r := range rows {
		id := ""
		if r.ID > 0 {
			id = fmt.Sprintf("%d", r.ID)
		}
		cells := []string{
			dimStyle.Render(pad(id, widthOf(0))),
			lipgloss.NewStyle().Foreground(statusColor(r.Status)).Render(pad(r.Status, widthOf(1))),
			valueStyle.Render(pad(r.Author, widthOf(2))),
			valueStyle.Render(pad(r.Topic, widthOf(3))),
			labelStyle.Render(pad(r.Department, widthOf(4))),
			valueStyle.Render(pad(r.PublicationDate, widthOf(5))),
			labelStyle.Render(pad(r.WorkflowStart, widthOf(6))),
			labelStyle.Render(pad(r.WorkflowEnd, widthOf(7))),
		}
		lines = append(lines, "  "+strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}
