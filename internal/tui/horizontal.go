package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/rshade/chronoline/internal/timeline"
	"github.com/rshade/chronoline/internal/virtual"
)

const (
	// stripEstimate is the cell width assumed for labels not yet measured.
	stripEstimate = 14

	// stripLabelMax caps the width of one label in the strip.
	stripLabelMax = 24

	stripOverscan = 2

	stripLayoutPasses = 4

	glyphStrip         = "─"
	glyphTick          = "┬"
	glyphTickSelected  = "◆"
	glyphArrowLeft     = "◀"
	glyphArrowRight    = "▶"
	glyphArrowDisabled = " "
)

// stripView lays out item labels along a horizontal axis. It virtualizes over
// columns the same way the vertical list does over rows: segment widths are
// measured as labels come into view.
type stripView struct {
	state *virtual.State
}

func newStripView(count int) *stripView {
	return &stripView{
		state: virtual.New(virtual.Config{
			ItemCount:           count,
			EstimatedItemHeight: stripEstimate,
			Overscan:            stripOverscan,
		}),
	}
}

// reset discards measurements, for example after the items change.
func (s *stripView) reset(count int) {
	s.state.Reset(count)
}

func stripSegment(label string) string {
	if label == "" {
		label = "·"
	}
	return " " + truncate(label, stripLabelMax) + "  "
}

func segmentWidth(item timeline.Item) int {
	return uniseg.StringWidth(stripSegment(item.Label()))
}

// axisSegment draws the axis under a segment with a tick below the label center.
func axisSegment(width int, selected bool) string {
	tick := glyphTick
	if selected {
		tick = glyphTickSelected
	}
	labelWidth := max(width-3, 1)
	center := min(1+(labelWidth-1)/2, width-1)
	return strings.Repeat(glyphStrip, center) + tick + strings.Repeat(glyphStrip, max(width-center-1, 0))
}

// layout scrolls so the selected segment is visible and measures the segments
// in view.
func (s *stripView) layout(items []timeline.Item, selected, width int) {
	if s.state.ItemCount() != len(items) {
		s.state.Reset(len(items))
	}
	s.state.SetViewportSize(width)
	if len(items) == 0 {
		return
	}
	s.state.RecordMeasurement(selected, segmentWidth(items[selected]))
	for range stripLayoutPasses {
		s.state.EnsureVisible(selected)
		r := s.state.ComputeVisibleRange()
		changed := false
		for i := r.StartIndex; i <= r.EndIndex; i++ {
			if s.state.RecordMeasurement(i, segmentWidth(items[i])) {
				changed = true
			}
		}
		scroll := s.state.ScrollOffset()
		if r.OffsetTop > scroll {
			i := s.indexAt(scroll)
			for pos := s.state.OffsetOf(i); i < len(items) && pos < scroll+width; i++ {
				if s.state.RecordMeasurement(i, segmentWidth(items[i])) {
					changed = true
				}
				pos += s.state.ItemHeight(i)
			}
		}
		if !changed {
			return
		}
	}
	s.state.EnsureVisible(selected)
}

// indexAt returns the index of the segment covering column offset.
func (s *stripView) indexAt(offset int) int {
	pos := 0
	n := s.state.ItemCount()
	for i := range n {
		pos += s.state.ItemHeight(i)
		if pos > offset {
			return i
		}
	}
	return max(n-1, 0)
}

// render returns the label line and the axis line, each width cells wide.
func (s *stripView) render(items []timeline.Item, selected, width int) (labels, axis string) {
	s.layout(items, selected, width)
	if len(items) == 0 || width <= 0 {
		return "", ""
	}

	scroll := s.state.ScrollOffset()
	end := scroll + width
	from := s.indexAt(scroll)

	var top, bottom strings.Builder
	used := 0
	pos := s.state.OffsetOf(from)
	for i := from; i < len(items) && pos < end; i++ {
		seg := stripSegment(items[i].Label())
		w := uniseg.StringWidth(seg)
		lo := max(scroll-pos, 0)
		n := min(pos+w, end) - (pos + lo)
		if n > 0 {
			text := cropCells(seg, lo, n)
			line := cropCells(axisSegment(w, i == selected), lo, n)
			if i == selected {
				top.WriteString(StripSelectedStyle.Render(text))
				bottom.WriteString(AxisDotStyle.Render(line))
			} else {
				top.WriteString(StripLabelStyle.Render(text))
				bottom.WriteString(AxisStyle.Render(line))
			}
			used += n
		}
		pos += w
	}
	if used < width {
		top.WriteString(strings.Repeat(" ", width-used))
		bottom.WriteString(AxisStyle.Render(strings.Repeat(glyphStrip, width-used)))
	}
	return top.String(), bottom.String()
}

// renderHorizontal renders the strip, a position counter and the selected card.
func renderHorizontal(strip *stripView, cards *CardRenderer, items []timeline.Item, selected, width, height int) string {
	if len(items) == 0 {
		return SubtleStyle.Render("No items.")
	}
	labels, axis := strip.render(items, selected, width)

	left, right := glyphArrowLeft, glyphArrowRight
	if selected == 0 {
		left = glyphArrowDisabled
	}
	if selected == len(items)-1 {
		right = glyphArrowDisabled
	}
	counter := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		SubtleStyle.Render(fmt.Sprintf("%s %d/%d %s", left, selected+1, len(items), right)))

	cardW := min(cards.CardWidth(), max(width, minCardWidth))
	card := cards.Card(items[selected], cardW, CardSelected)
	card = lipgloss.PlaceHorizontal(width, lipgloss.Center, card)

	body := lipgloss.JoinVertical(lipgloss.Left, labels, axis, counter, "", card)
	return lipgloss.NewStyle().MaxHeight(max(height, 1)).Render(body)
}

// horizontalCardTop is the row of the card below the strip, counter and gap.
const horizontalCardTop = 4
