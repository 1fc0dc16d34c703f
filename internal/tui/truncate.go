package tui

import (
	"strings"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// truncate shortens s to at most width terminal cells, cutting on grapheme
// cluster boundaries and appending an ellipsis when anything was removed.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	limit := width - uniseg.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > limit {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// cropCells returns the cells [from, from+width) of a single-line string without
// ANSI sequences, cutting on grapheme cluster boundaries. A wide cluster that
// straddles either edge is replaced by spaces.
func cropCells(s string, from, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	pos := 0
	out := 0
	state := -1
	rest := s
	for rest != "" && out < width {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		end := pos + w
		switch {
		case end <= from:
		case pos >= from && end-from <= width:
			b.WriteString(cluster)
			out += w
		default:
			visible := min(end, from+width) - max(pos, from)
			b.WriteString(strings.Repeat(" ", visible))
			out += visible
		}
		pos = end
	}
	if out < width {
		b.WriteString(strings.Repeat(" ", width-out))
	}
	return b.String()
}
