package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/chronoline/internal/timeline"
)

const (
	headerHeight = 1

	// footerHeight is the status line plus the short help line.
	footerHeight = 2

	progressPrefixWidth = 12
)

// bodyHeight is the number of rows left for the timeline itself.
func (m TimelineModel) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if m.slides.enabled {
		h--
	}
	if m.state == ViewStateSearch {
		h--
	}
	if m.help.ShowAll {
		h -= fullHelpRows(m.keys) - 1
	}
	return max(h, minHeight)
}

// fullHelpRows is the height of the expanded help view.
func fullHelpRows(k KeyMap) int {
	rows := 1
	for _, col := range k.FullHelp() {
		rows = max(rows, len(col))
	}
	return rows
}

// View renders the current view (Bubble Tea interface).
func (m TimelineModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateIndex:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.index.View(),
			m.renderStatusBar(),
			SubtleStyle.Render("enter jump · esc back"),
		)
	}

	sections := []string{m.renderHeader(), m.renderBody()}
	if m.slides.enabled {
		sections = append(sections, m.renderProgress())
	}
	if m.state == ViewStateSearch {
		sections = append(sections, m.input.View())
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TimelineModel) renderHeader() string {
	parts := []string{HeaderStyle.Render(truncate(m.title, max(m.width/2, 8)))}
	parts = append(parts, SubtleStyle.Render(m.mode.String()))
	if len(m.items) > 0 {
		parts = append(parts, SubtleStyle.Render(fmt.Sprintf("%d/%d", m.list.Selected()+1, len(m.items))))
	}
	if span := renderSpan(m.items); span != "" {
		parts = append(parts, SubtleStyle.Render(span))
	}
	return truncateStyled(strings.Join(parts, SubtleStyle.Render(" · ")), m.width)
}

func renderSpan(items []timeline.Item) string {
	tl := timeline.Timeline{Items: items}
	first, last, ok := tl.Span()
	if !ok {
		return ""
	}
	if first.Equal(last) {
		return timeline.FormatDate(first)
	}
	return timeline.FormatDate(first) + " → " + timeline.FormatDate(last)
}

func (m TimelineModel) renderBody() string {
	if len(m.items) == 0 {
		return lipgloss.NewStyle().Height(m.bodyHeight()).Render(SubtleStyle.Render("No items."))
	}
	if m.mode == timeline.ModeHorizontal {
		body := renderHorizontal(m.strip, m.cards, m.items, m.list.Selected(), m.width, m.bodyHeight())
		return lipgloss.NewStyle().Height(m.bodyHeight()).Render(body)
	}
	return m.list.View()
}

func (m TimelineModel) renderProgress() string {
	snap := m.slides.snapshot()
	label := "▶ playing"
	if m.slides.paused() {
		label = "❚❚ paused"
	}
	prefix := lipgloss.NewStyle().Width(progressPrefixWidth).Render(InfoStyle.Render(label))
	return prefix + m.progress.ViewAs(snap.Progress())
}

func (m TimelineModel) renderStatusBar() string {
	var parts []string
	if m.search.query != "" && m.state != ViewStateSearch {
		parts = append(parts, fmt.Sprintf("search %q", m.search.query))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if len(parts) == 0 {
		return StatusBarStyle.Render("")
	}
	return StatusBarStyle.Render(truncate(strings.Join(parts, " | "), max(m.width, 1)))
}

// truncateStyled limits a styled single line to width cells.
func truncateStyled(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(max(width, 1)).Render(s)
}
