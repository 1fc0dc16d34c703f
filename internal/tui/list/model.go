package listview

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/chronoline/internal/virtual"
)

const (
	// maxLayoutPasses bounds the measure-and-recompute loop. Each pass measures
	// the items in the current range; measurements can move the range.
	maxLayoutPasses = 6

	// wheelStep is the number of rows scrolled per mouse wheel notch.
	wheelStep = 3

	scrollbarWidth = 1
)

// RenderFunc renders the item at index for the given content width.
type RenderFunc[T any] func(item T, index int, selected bool, width int) string

// Option configures a VirtualListModel.
type Option func(*options)

type options struct {
	estimate  int
	overscan  int
	scrollbar bool
	keys      KeyMap
	logger    zerolog.Logger
}

// WithEstimatedHeight sets the row count assumed for unmeasured items.
func WithEstimatedHeight(rows int) Option {
	return func(o *options) { o.estimate = rows }
}

// WithOverscan sets the number of extra items rendered beyond each viewport edge.
func WithOverscan(items int) Option {
	return func(o *options) { o.overscan = items }
}

// WithScrollbar shows or hides the scrollbar column.
func WithScrollbar(show bool) Option {
	return func(o *options) { o.scrollbar = show }
}

// WithKeyMap replaces the navigation bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(o *options) { o.keys = keys }
}

// WithLogger sets the logger used for layout diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// VirtualListModel renders a list of variable-height items, materializing only the
// items around the viewport.
type VirtualListModel[T any] struct {
	items  []T
	render RenderFunc[T]
	state  *virtual.State

	selected int

	// follow keeps the selection in view; mouse wheel scrolling clears it.
	follow bool

	height int
	width  int

	scrollbar      bool
	thumbStyle     lipgloss.Style
	trackStyle     lipgloss.Style
	keys           KeyMap
	logger         zerolog.Logger
	cache          map[int]string
	lastPageItems  int
	underfetchHits int
}

// NewVirtualListModel creates a list over items with a viewport of height rows and
// width columns.
func NewVirtualListModel[T any](items []T, height, width int, render RenderFunc[T], opts ...Option) *VirtualListModel[T] {
	o := options{
		estimate:  virtual.DefaultEstimatedItemHeight,
		overscan:  virtual.DefaultOverscan,
		scrollbar: true,
		keys:      DefaultKeyMap(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &VirtualListModel[T]{
		items:  items,
		render: render,
		state: virtual.New(virtual.Config{
			ItemCount:           len(items),
			EstimatedItemHeight: o.estimate,
			Overscan:            o.overscan,
		}),
		follow:     true,
		scrollbar:  o.scrollbar,
		thumbStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		trackStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		keys:       o.keys,
		logger:     o.logger.With().Str("component", "listview").Logger(),
		cache:      make(map[int]string),
	}
	m.SetSize(width, height)
	return m
}

// Init initializes the model (required for tea.Model interface).
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles keyboard, mouse wheel and resize messages.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKeyMsg(msg)
	case tea.MouseMsg:
		m.handleMouseMsg(msg)
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

// HandleKey applies a navigation key and reports whether it was consumed.
func (m *VirtualListModel[T]) HandleKey(msg tea.KeyMsg) bool {
	return m.handleKeyMsg(msg)
}

func (m *VirtualListModel[T]) handleKeyMsg(msg tea.KeyMsg) bool {
	if len(m.items) == 0 {
		return false
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.SetSelected(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		m.SetSelected(m.selected + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.SetSelected(m.selected - m.pageItems())
	case key.Matches(msg, m.keys.PageDown):
		m.SetSelected(m.selected + m.pageItems())
	case key.Matches(msg, m.keys.Home):
		m.SetSelected(0)
	case key.Matches(msg, m.keys.End):
		m.SetSelected(len(m.items) - 1)
	default:
		return false
	}
	return true
}

func (m *VirtualListModel[T]) handleMouseMsg(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ScrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		m.ScrollBy(wheelStep)
	}
}

// pageItems is the number of items a page key moves the selection by.
func (m *VirtualListModel[T]) pageItems() int {
	return max(m.lastPageItems-1, 1)
}

// SetSize changes the viewport. Cached renders are dropped when the width changes.
func (m *VirtualListModel[T]) SetSize(width, height int) {
	if width != m.width {
		m.InvalidateAll()
	}
	m.width = max(width, 0)
	m.height = max(height, 0)
	m.state.SetViewportSize(m.height)
	m.layout()
}

// SetItems replaces the list contents. Measurements are discarded and the
// selection is clamped.
func (m *VirtualListModel[T]) SetItems(items []T) {
	m.items = items
	m.state.Reset(len(items))
	m.InvalidateAll()
	m.selected = min(max(m.selected, 0), max(len(items)-1, 0))
	m.follow = true
	m.layout()
}

// SetRender replaces the render function. All measurements are discarded since
// item heights may differ.
func (m *VirtualListModel[T]) SetRender(render RenderFunc[T]) {
	m.render = render
	scroll := m.state.ScrollOffset()
	m.state.Reset(len(m.items))
	m.state.SetScrollOffset(scroll)
	m.InvalidateAll()
	m.follow = true
	m.layout()
}

// InvalidateAll drops every cached render so items are re-rendered and
// re-measured on the next layout.
func (m *VirtualListModel[T]) InvalidateAll() {
	clear(m.cache)
}

// Invalidate drops the cached render of one item.
func (m *VirtualListModel[T]) Invalidate(index int) {
	delete(m.cache, index)
}

// Refresh re-runs layout after external invalidation.
func (m *VirtualListModel[T]) Refresh() {
	m.layout()
}

// ApplyMeasurements records heights measured elsewhere, such as by a background
// prewarm. Entries that are not positive are skipped. It returns the number of
// heights that changed.
func (m *VirtualListModel[T]) ApplyMeasurements(heights []int) int {
	changed := 0
	for i, h := range heights {
		if m.state.RecordMeasurement(i, h) {
			changed++
		}
	}
	if changed > 0 {
		m.layout()
	}
	return changed
}

// ScrollBy scrolls the viewport by delta rows without moving the selection.
func (m *VirtualListModel[T]) ScrollBy(delta int) {
	m.follow = false
	m.state.ScrollBy(delta)
	m.layout()
}

// layout keeps the selection visible and measures the items around the viewport
// until measurements stop moving the range.
func (m *VirtualListModel[T]) layout() {
	if len(m.items) == 0 || m.height == 0 {
		m.lastPageItems = 0
		return
	}

	if m.follow {
		m.measure(m.selected)
	}
	settled := false
	for range maxLayoutPasses {
		if m.follow {
			m.state.EnsureVisible(m.selected)
		}
		if !m.measureVisible() {
			settled = true
			break
		}
	}
	if !settled {
		if m.follow {
			m.state.EnsureVisible(m.selected)
		}
		r := m.state.ComputeVisibleRange()
		m.logger.Debug().
			Int("start", r.StartIndex).
			Int("end", r.EndIndex).
			Int("scroll", m.state.ScrollOffset()).
			Msg("layout did not settle")
	}
	m.lastPageItems = m.countInViewport()
}

// measureVisible records the rendered height of every item in the visible range
// and, when the range starts below the viewport top, of the items covering the
// gap. It reports whether any height changed.
func (m *VirtualListModel[T]) measureVisible() bool {
	changed := false
	r := m.state.ComputeVisibleRange()
	for i := r.StartIndex; i <= r.EndIndex; i++ {
		if m.measure(i) {
			changed = true
		}
	}

	scroll := m.state.ScrollOffset()
	if r.OffsetTop > scroll {
		bottom := scroll + m.height
		i := m.IndexAt(scroll)
		for pos := m.state.OffsetOf(i); i < len(m.items) && pos < bottom; i++ {
			if m.measure(i) {
				changed = true
			}
			pos += m.state.ItemHeight(i)
		}
	}
	return changed
}

func (m *VirtualListModel[T]) measure(index int) bool {
	return m.state.RecordMeasurement(index, lipgloss.Height(m.renderAt(index)))
}

// countInViewport counts items that intersect the viewport.
func (m *VirtualListModel[T]) countInViewport() int {
	top := m.state.ScrollOffset()
	bottom := top + m.height
	from := m.IndexAt(top)
	n := 0
	pos := m.state.OffsetOf(from)
	for i := from; i < len(m.items) && pos < bottom; i++ {
		pos += m.state.ItemHeight(i)
		n++
	}
	return n
}

// IndexAt returns the index of the item covering content row offset, using the
// current heights. Offsets past the end map to the last item.
func (m *VirtualListModel[T]) IndexAt(offset int) int {
	pos := 0
	for i := range m.items {
		pos += m.state.ItemHeight(i)
		if pos > offset {
			return i
		}
	}
	return max(len(m.items)-1, 0)
}

func (m *VirtualListModel[T]) contentWidth() int {
	if m.scrollbar {
		return max(m.width-scrollbarWidth, 1)
	}
	return max(m.width, 1)
}

func (m *VirtualListModel[T]) renderAt(index int) string {
	if s, ok := m.cache[index]; ok {
		return s
	}
	s := m.render(m.items[index], index, index == m.selected, m.contentWidth())
	m.cache[index] = s
	return s
}

// View renders the viewport.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 || m.height == 0 {
		return ""
	}

	r := m.state.ComputeVisibleRange()
	scroll := m.state.ScrollOffset()
	from, lead := r.StartIndex, r.OffsetTop
	if lead > scroll {
		// The estimate-based start overshot the viewport top; fill the gap from
		// the exact index so no blank rows show.
		m.underfetchHits++
		from = m.IndexAt(scroll)
		lead = m.state.OffsetOf(from)
	}

	width := m.contentWidth()
	lines := make([]string, 0, m.height)
	skip := scroll - lead
	for i := from; i < len(m.items) && len(lines) < m.height; i++ {
		for _, ln := range strings.Split(m.renderAt(i), "\n") {
			if skip > 0 {
				skip--
				continue
			}
			if len(lines) == m.height {
				break
			}
			lines = append(lines, padRight(ln, width))
		}
	}
	// Trailing spacer rows.
	for len(lines) < m.height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	if m.scrollbar {
		content := r.OffsetTop + m.renderedHeight(r) + r.AfterHeight
		bar := renderScrollbar(m.height, content, m.height, scroll, m.thumbStyle, m.trackStyle)
		for i := range lines {
			if bar != nil {
				lines[i] += bar[i]
			} else {
				lines[i] += " "
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m *VirtualListModel[T]) renderedHeight(r virtual.Range) int {
	if r.Empty() {
		return 0
	}
	total := 0
	for i := r.StartIndex; i <= r.EndIndex; i++ {
		total += m.state.ItemHeight(i)
	}
	return total
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// ItemCount returns the total number of items in the list.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Items returns the list contents.
func (m *VirtualListModel[T]) Items() []T {
	return m.items
}

// Selected returns the currently selected item index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected sets the selected item index, capping to valid bounds, and scrolls
// it into view.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.items) == 0 {
		m.selected = 0
		return
	}
	index = min(max(index, 0), len(m.items)-1)
	if index != m.selected {
		m.Invalidate(m.selected)
		m.Invalidate(index)
		m.selected = index
	}
	m.follow = true
	m.layout()
}

// Range returns the currently materialized range.
func (m *VirtualListModel[T]) Range() virtual.Range {
	return m.state.ComputeVisibleRange()
}

// State exposes the virtualization state.
func (m *VirtualListModel[T]) State() *virtual.State {
	return m.state
}

// VisibleFrom returns the first materialized item index (inclusive).
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.Range().StartIndex
}

// VisibleTo returns the last materialized item index (exclusive).
func (m *VirtualListModel[T]) VisibleTo() int {
	r := m.Range()
	if r.Empty() {
		return 0
	}
	return r.EndIndex + 1
}

// ScrollOffset returns the first content row shown in the viewport.
func (m *VirtualListModel[T]) ScrollOffset() int {
	return m.state.ScrollOffset()
}

// SelectedBounds returns the viewport rows [top, bottom) covered by the selected
// item. The values may fall outside the viewport.
func (m *VirtualListModel[T]) SelectedBounds() (top, bottom int) {
	top = m.state.OffsetOf(m.selected) - m.state.ScrollOffset()
	return top, top + m.state.ItemHeight(m.selected)
}

// UnderfetchHits returns how many renders had to extend the materialized range
// upward because the estimated start index overshot the viewport.
func (m *VirtualListModel[T]) UnderfetchHits() int {
	return m.underfetchHits
}

// Height returns the viewport height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// ContentWidth returns the width passed to the render function.
func (m *VirtualListModel[T]) ContentWidth() int {
	return m.contentWidth()
}

// GetSelectedItem returns the currently selected item.
// Returns nil if list is empty.
func (m *VirtualListModel[T]) GetSelectedItem() *T {
	if len(m.items) == 0 || m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	return &m.items[m.selected]
}
