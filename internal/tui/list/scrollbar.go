package listview

import "github.com/charmbracelet/lipgloss"

// subcell is the number of thumb steps per terminal cell.
const subcell = 2

const (
	glyphTrack = "│"
	glyphFull  = "█"
	glyphUpper = "▀"
	glyphLower = "▄"
)

type scrollMetrics struct {
	trackCells int
	trackLen   int
	thumbLen   int
	thumbStart int
}

// computeScrollMetrics sizes the thumb proportionally to viewportLen/contentLen
// and positions it by offset, in subcell units.
func computeScrollMetrics(trackCells, contentLen, viewportLen, offset int) scrollMetrics {
	trackLen := trackCells * subcell
	if trackLen <= 0 {
		return scrollMetrics{}
	}

	contentLen = max(contentLen, 1)
	viewportLen = min(max(viewportLen, 1), contentLen)
	maxOffset := max(contentLen-viewportLen, 0)
	offset = min(max(offset, 0), maxOffset)

	if maxOffset == 0 {
		return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: trackLen}
	}

	thumbLen := min(max((trackLen*viewportLen)/contentLen, subcell), trackLen)
	thumbTravel := max(trackLen-thumbLen, 0)
	thumbStart := (thumbTravel * offset) / maxOffset
	return scrollMetrics{trackCells: trackCells, trackLen: trackLen, thumbLen: thumbLen, thumbStart: thumbStart}
}

// cellFill returns the cell-local start and length of thumb coverage in cell.
func cellFill(m scrollMetrics, cell int) (start, fillLen int) {
	if m.thumbLen == 0 {
		return 0, 0
	}
	cellStart := cell * subcell
	cellEnd := cellStart + subcell
	lo := max(m.thumbStart, cellStart)
	hi := min(m.thumbStart+m.thumbLen, cellEnd)
	if hi <= lo {
		return 0, 0
	}
	return lo - cellStart, hi - lo
}

func glyphFor(start, fillLen int) (string, bool) {
	switch {
	case fillLen <= 0:
		return glyphTrack, false
	case fillLen >= subcell:
		return glyphFull, true
	case start == 0:
		return glyphUpper, true
	default:
		return glyphLower, true
	}
}

// renderScrollbar returns one styled glyph per track cell. It returns nil when
// the content fits in the viewport.
func renderScrollbar(trackCells, contentLen, viewportLen, offset int, thumb, track lipgloss.Style) []string {
	if trackCells <= 0 || contentLen <= viewportLen {
		return nil
	}
	m := computeScrollMetrics(trackCells, contentLen, viewportLen, offset)
	cells := make([]string, trackCells)
	for i := range cells {
		glyph, isThumb := glyphFor(cellFill(m, i))
		if isThumb {
			cells[i] = thumb.Render(glyph)
		} else {
			cells[i] = track.Render(glyph)
		}
	}
	return cells
}
