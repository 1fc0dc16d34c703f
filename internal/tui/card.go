package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/chronoline/internal/timeline"
)

const (
	// cardChrome is the horizontal space used by the card border and padding.
	cardChrome = 4

	// minCardWidth is the narrowest card rendered with a border.
	minCardWidth = cardChrome + 4

	axisWidth = 3

	glyphDot         = "●"
	glyphDotSelected = "◉"
	glyphAxis        = "│"
)

// CardRenderer renders timeline items as bordered cards.
type CardRenderer struct {
	markdown  *MarkdownRenderer
	cardWidth int
}

// NewCardRenderer creates a renderer producing cards at most cardWidth columns
// wide. md may be nil, in which case details are shown as plain text.
func NewCardRenderer(md *MarkdownRenderer, cardWidth int) *CardRenderer {
	return &CardRenderer{markdown: md, cardWidth: max(cardWidth, minCardWidth)}
}

// CardWidth returns the configured card width.
func (r *CardRenderer) CardWidth() int {
	return r.cardWidth
}

// CardState selects the card border.
type CardState int

const (
	CardNormal CardState = iota
	CardMatched
	CardSelected
)

// Card renders item as a card exactly width columns wide.
func (r *CardRenderer) Card(item timeline.Item, width int, state CardState) string {
	width = max(width, minCardWidth)
	inner := width - cardChrome

	var lines []string
	lines = append(lines, r.labelLine(item, inner))
	if item.CardTitle != "" {
		lines = append(lines, TitleStyle.Render(truncate(item.CardTitle, inner)))
	}
	if item.CardSubtitle != "" {
		lines = append(lines, SubtitleStyle.Render(truncate(item.CardSubtitle, inner)))
	}
	if detail := r.detail(item.Detail, inner); detail != "" {
		lines = append(lines, "", detail)
	}
	if item.URL != "" {
		lines = append(lines, InfoStyle.Render(truncate(item.URL, inner)))
	}
	if item.Media != nil && item.Media.URL != "" {
		lines = append(lines, SubtleStyle.Render(truncate(mediaLine(item.Media), inner)))
	}

	style := CardStyle
	switch state {
	case CardSelected:
		style = SelectedCardStyle
	case CardMatched:
		style = MatchCardStyle
	}
	return style.Width(width - borderPadding).Render(strings.Join(lines, "\n"))
}

func (r *CardRenderer) labelLine(item timeline.Item, inner int) string {
	label := item.Label()
	if label == "" {
		label = "undated"
		return SubtleStyle.Render(label)
	}
	if item.Title != "" && item.Dated() {
		date := timeline.FormatDate(item.Date)
		if lipgloss.Width(label)+2+lipgloss.Width(date) <= inner {
			return DateStyle.Render(label) + "  " + SubtleStyle.Render(date)
		}
	}
	return DateStyle.Render(truncate(label, inner))
}

func (r *CardRenderer) detail(source string, width int) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if r.markdown == nil {
		return lipgloss.NewStyle().Width(width).Render(strings.TrimSpace(source))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(r.markdown.Render(source, width))
}

func mediaLine(m *timeline.Media) string {
	kind := m.Type
	if kind == "" {
		kind = "media"
	}
	name := m.Name
	if name == "" {
		name = m.URL
	}
	return "▣ " + kind + ": " + name
}

// Row renders item as one row of a vertical or alternating timeline, width
// columns wide.
func (r *CardRenderer) Row(item timeline.Item, index int, mode timeline.Mode, state CardState, width int) string {
	if mode == timeline.ModeAlternating {
		return r.alternatingRow(item, index, state, width)
	}
	return r.verticalRow(item, state, width)
}

func (r *CardRenderer) verticalRow(item timeline.Item, state CardState, width int) string {
	cardW := min(r.cardWidth, max(width-axisWidth-1, minCardWidth))
	card := r.Card(item, cardW, state)
	axis := axisColumn(lipgloss.Height(card), state == CardSelected)
	return lipgloss.JoinHorizontal(lipgloss.Top, axis, " ", card)
}

func (r *CardRenderer) alternatingRow(item timeline.Item, index int, state CardState, width int) string {
	side := max((width-axisWidth)/2, minCardWidth)
	cardW := min(r.cardWidth, side)
	card := r.Card(item, cardW, state)
	axis := axisColumn(lipgloss.Height(card), state == CardSelected)

	if index%2 == 0 {
		left := lipgloss.PlaceHorizontal(side, lipgloss.Right, card)
		return lipgloss.JoinHorizontal(lipgloss.Top, left, axis)
	}
	pad := strings.Repeat(" ", side)
	return lipgloss.JoinHorizontal(lipgloss.Top, pad, axis, card)
}

// axisColumn draws the timeline axis beside a card of the given height, with a
// dot level with the card's label line.
func axisColumn(height int, selected bool) string {
	dot := glyphDot
	if selected {
		dot = glyphDotSelected
	}
	lines := make([]string, max(height, 1))
	for i := range lines {
		lines[i] = " " + AxisStyle.Render(glyphAxis) + " "
	}
	if len(lines) > 1 {
		lines[1] = " " + AxisDotStyle.Render(dot) + " "
	}
	return strings.Join(lines, "\n")
}
