package tui

import (
	"context"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/chronoline/internal/batch"
	"github.com/rshade/chronoline/internal/timeline"
)

// MeasuredMsg carries card heights measured in the background for one mode and
// content width.
type MeasuredMsg struct {
	Mode    timeline.Mode
	Width   int
	Heights []int
	Err     error
}

type indexedItem struct {
	index int
	item  timeline.Item
}

// MeasureHeights renders every item as a row of the given mode and width and
// returns the row heights, processing batches concurrently.
func MeasureHeights(
	ctx context.Context,
	cards *CardRenderer,
	items []timeline.Item,
	mode timeline.Mode,
	width int,
) ([]int, error) {
	indexed := make([]indexedItem, len(items))
	for i, it := range items {
		indexed[i] = indexedItem{index: i, item: it}
	}
	proc := batch.NewProcessorWithDefaults[indexedItem]()
	return batch.Map(ctx, proc, indexed, func(_ context.Context, it indexedItem) (int, error) {
		return lipgloss.Height(cards.Row(it.item, it.index, mode, CardNormal, width)), nil
	}, runtime.GOMAXPROCS(0))
}

// measureCmd measures all rows off the UI goroutine.
func measureCmd(ctx context.Context, cards *CardRenderer, items []timeline.Item, mode timeline.Mode, width int) tea.Cmd {
	return func() tea.Msg {
		heights, err := MeasureHeights(ctx, cards, items, mode, width)
		return MeasuredMsg{Mode: mode, Width: width, Heights: heights, Err: err}
	}
}
