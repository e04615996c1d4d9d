package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/janekbaraniewski/wfdash/internal/codec"
	"github.com/janekbaraniewski/wfdash/internal/projection"
)

const (
	loadTimeout = 15 * time.Second
	// rangeStep is how far [ and ] move the date range.
	rangeStep = 30
)

type screenTab int

const (
	screenTimeline screenTab = iota
	screenHeat
	screenGrid
)

var screenLabels = []string{"Timeline", "Heat", "Grid"}

// Snapshot is what one refresh hands to the dashboard.
type Snapshot struct {
	View projection.View
	Grid []codec.GridRow
}

// Loader fetches a snapshot for a range, from the local store or a server.
type Loader func(ctx context.Context, r projection.Range) (Snapshot, error)

type snapshotMsg struct {
	snap Snapshot
	err  error
}

type rangeSavedMsg struct{ err error }

type refreshTickMsg struct{}

type Model struct {
	load     Loader
	changes  <-chan struct{}
	interval time.Duration

	onRangeChange func(projection.Range) error

	rng     projection.Range
	screen  screenTab
	snap    Snapshot
	loaded  bool
	loading bool
	err     error
	status  string

	width  int
	height int
	offset int
}

func NewModel(load Loader, initial projection.Range) Model {
	return Model{
		load:    load,
		rng:     initial,
		loading: true,
		width:   100,
		height:  30,
	}
}

// SetChanges makes the dashboard reload whenever the channel fires.
func (m *Model) SetChanges(ch <-chan struct{}) {
	m.changes = ch
}

// SetRefreshInterval enables periodic reloads, for sources that cannot be
// watched such as a remote server.
func (m *Model) SetRefreshInterval(d time.Duration) {
	m.interval = d
}

// SetOnRangeChange is called after [ or ] moves the range.
func (m *Model) SetOnRangeChange(fn func(projection.Range) error) {
	m.onRangeChange = fn
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), waitForChange(m.changes), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m Model) loadCmd() tea.Cmd {
	load, r := m.load, m.rng
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := load(ctx, r)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) persistRangeCmd() tea.Cmd {
	fn, r := m.onRangeChange, m.rng
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		return rangeSavedMsg{err: fn(r)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		m.loaded = true
		m.offset = 0
		return m, nil

	case storeChangedMsg:
		m.loading = true
		m.status = "store changed, reloading"
		return m, tea.Batch(m.loadCmd(), waitForChange(m.changes))

	case refreshTickMsg:
		if m.loading {
			return m, m.tickCmd()
		}
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.tickCmd())

	case rangeSavedMsg:
		if msg.err != nil {
			m.status = "range not saved: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "right", "l":
		m.screen = (m.screen + 1) % screenTab(len(screenLabels))
		m.offset = 0
	case "shift+tab", "left", "h":
		m.screen = (m.screen + screenTab(len(screenLabels)) - 1) % screenTab(len(screenLabels))
		m.offset = 0
	case "1", "2", "3":
		m.screen = screenTab(msg.String()[0] - '1')
		m.offset = 0
	case "down", "j":
		m.offset++
	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}
	case "r":
		m.loading = true
		m.status = ""
		return m, m.loadCmd()
	case "[", "]":
		step := rangeStep
		if msg.String() == "[" {
			step = -rangeStep
		}
		m.rng = shiftRange(m.rng, step)
		m.loading = true
		m.status = "range " + formatRange(m.rng)
		return m, tea.Batch(m.loadCmd(), m.persistRangeCmd())
	}
	return m, nil
}

func shiftRange(r projection.Range, days int) projection.Range {
	return projection.Range{Start: r.Start.AddDays(days), End: r.End.AddDays(days)}
}

func formatRange(r projection.Range) string {
	start, end := codec.FormatDisplay(r.Start), codec.FormatDisplay(r.End)
	if start == "" {
		start = "…"
	}
	if end == "" {
		end = "…"
	}
	return start + " – " + end
}

func (m Model) View() string {
	w := m.width
	if w <= 0 {
		w = 100
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(w))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	bodyH := m.height - 7
	if bodyH < 3 {
		bodyH = 3
	}
	b.WriteString(scroll(m.renderBody(w), m.offset, bodyH))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(w))
	return b.String()
}

func (m Model) renderHeader(w int) string {
	left := headerBrandStyle.Render("wfdash") + "  " + headerStyle.Render(formatRange(m.rng))
	right := ""
	if m.loaded {
		right = labelStyle.Render(fmt.Sprintf("%d rows  today %s",
			len(m.snap.View.Rows), codec.FormatDisplay(m.snap.View.Charts.Today)))
	}
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderTabs() string {
	parts := make([]string, len(screenLabels))
	for i, label := range screenLabels {
		tab := fmt.Sprintf("%d:%s", i+1, label)
		if screenTab(i) == m.screen {
			parts[i] = screenTabActiveStyle.Render(tab)
		} else {
			parts[i] = screenTabInactiveStyle.Render(tab)
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderBody(w int) string {
	if m.err != nil {
		return errorStyle.Render("  " + m.err.Error())
	}
	if !m.loaded {
		return dimStyle.Render("  Loading…")
	}

	charts := m.snap.View.Charts
	switch m.screen {
	case screenHeat:
		body := RenderHeat(charts.Heat, w)
		if weekly := RenderWeekly(projection.WeeklyCounts(charts.Heat), w); weekly != "" {
			body += "\n\n" + sectionHeaderStyle.Render("  Publications per week") + "\n" + weekly
		}
		return body
	case screenGrid:
		return RenderGrid(m.snap.Grid, w)
	default:
		return RenderTimeline(charts.Timeline, charts.Today, w)
	}
}

func (m Model) renderFooter(w int) string {
	sep := lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("─", w))
	keys := []string{"tab", "switch", "[ ]", "shift range", "r", "refresh", "q", "quit"}
	var parts []string
	for i := 0; i < len(keys); i += 2 {
		parts = append(parts, helpKeyStyle.Render(keys[i])+" "+helpStyle.Render(keys[i+1]))
	}
	line := strings.Join(parts, "  ")
	if m.loading {
		line += "  " + dimStyle.Render("loading…")
	} else if m.status != "" {
		line += "  " + dimStyle.Render(m.status)
	}
	return sep + "\n" + line
}

func scroll(s string, offset, h int) string {
	lines := strings.Split(s, "\n")
	if offset > len(lines)-1 {
		offset = max(0, len(lines)-1)
	}
	lines = lines[offset:]
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

// Run starts the full-screen dashboard.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
