package listview

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestComputeScrollMetrics(t *testing.T) {
	tests := []struct {
		name       string
		cells      int
		content    int
		viewport   int
		offset     int
		wantLen    int
		wantStart  int
		wantLength int
	}{
		{name: "fits", cells: 10, content: 5, viewport: 10, offset: 0, wantLen: 20, wantStart: 0, wantLength: 20},
		{name: "top", cells: 10, content: 100, viewport: 10, offset: 0, wantLen: 20, wantStart: 0, wantLength: 2},
		{name: "bottom", cells: 10, content: 100, viewport: 10, offset: 90, wantLen: 20, wantStart: 18, wantLength: 2},
		{name: "middle", cells: 10, content: 40, viewport: 10, offset: 15, wantLen: 20, wantStart: 7, wantLength: 5},
		{name: "offset clamped", cells: 10, content: 40, viewport: 10, offset: 500, wantLen: 20, wantStart: 15, wantLength: 5},
		{name: "no track", cells: 0, content: 40, viewport: 10, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := computeScrollMetrics(tt.cells, tt.content, tt.viewport, tt.offset)

			assert.Equal(t, tt.wantLen, m.trackLen)
			assert.Equal(t, tt.wantStart, m.thumbStart)
			assert.Equal(t, tt.wantLength, m.thumbLen)
		})
	}
}

func TestGlyphFor(t *testing.T) {
	tests := []struct {
		start, fill int
		glyph       string
		thumb       bool
	}{
		{start: 0, fill: 0, glyph: glyphTrack},
		{start: 0, fill: 2, glyph: glyphFull, thumb: true},
		{start: 0, fill: 1, glyph: glyphUpper, thumb: true},
		{start: 1, fill: 1, glyph: glyphLower, thumb: true},
	}

	for _, tt := range tests {
		glyph, thumb := glyphFor(tt.start, tt.fill)
		assert.Equal(t, tt.glyph, glyph)
		assert.Equal(t, tt.thumb, thumb)
	}
}

func TestRenderScrollbar(t *testing.T) {
	plain := lipgloss.NewStyle()

	assert.Nil(t, renderScrollbar(10, 10, 10, 0, plain, plain), "content fits")
	assert.Nil(t, renderScrollbar(0, 100, 10, 0, plain, plain))

	cells := renderScrollbar(4, 40, 10, 15, plain, plain)
	// Thumb spans subcells 3..4 of an 8-subcell track.
	assert.Equal(t, []string{glyphTrack, glyphLower, glyphUpper, glyphTrack}, cells)
}
