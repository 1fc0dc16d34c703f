package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/rshade/chronoline/internal/slideshow"
	"github.com/rshade/chronoline/internal/timeline"
	listview "github.com/rshade/chronoline/internal/tui/list"
)

// ViewState is the screen the timeline model is showing.
type ViewState int

const (
	ViewStateTimeline ViewState = iota
	ViewStateSearch
	ViewStateIndex
	ViewStateQuitting
)

// Options configures a TimelineModel.
type Options struct {
	Mode                timeline.Mode
	EstimatedItemHeight int
	Overscan            int
	CardWidth           int
	MarkdownStyle       string

	// PrewarmThreshold is the item count above which all card heights are
	// measured in the background. Zero disables prewarming.
	PrewarmThreshold int

	Slideshow     bool
	SlideDuration time.Duration
	FrameInterval time.Duration
	Loop          bool

	Search        string
	CaseSensitive bool

	// InitialID selects the item with this ID at startup when present.
	InitialID string

	Logger  zerolog.Logger
	Clock   clockwork.Clock
	Context context.Context
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Mode:                timeline.ModeVertical,
		EstimatedItemHeight: 6,
		Overscan:            3,
		CardWidth:           48,
		MarkdownStyle:       StyleAuto,
		PrewarmThreshold:    500,
		SlideDuration:       5 * time.Second,
		FrameInterval:       slideshow.DefaultFrameInterval,
		Loop:                true,
		Logger:              zerolog.Nop(),
	}
}

// searchState is shared with the row render function so highlighting follows
// the current matches.
type searchState struct {
	query   string
	matches []int
	set     map[int]bool
	pos     int
}

func (s *searchState) has(index int) bool {
	return s.set[index]
}

// TimelineModel is the Bubble Tea model for browsing a timeline.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type TimelineModel struct {
	ctx    context.Context
	opts   Options
	logger zerolog.Logger

	title string
	items []timeline.Item
	mode  timeline.Mode
	state ViewState

	cards  *CardRenderer
	list   *listview.VirtualListModel[timeline.Item]
	strip  *stripView
	slides *slideRunner

	keys     KeyMap
	help     help.Model
	progress progress.Model
	input    textinput.Model
	index    table.Model
	search   *searchState

	width  int
	height int

	// measuredFor is the mode and width of the last requested prewarm.
	measuredFor measureKey

	status string
}

type measureKey struct {
	mode  timeline.Mode
	width int
}

// NewTimelineModel creates a model over tl.
func NewTimelineModel(tl *timeline.Timeline, opts Options) TimelineModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	logger := opts.Logger.With().Str("component", "tui").Logger()

	var items []timeline.Item
	title := "Timeline"
	if tl != nil {
		items = tl.Items
		if tl.Title != "" {
			title = tl.Title
		}
	}

	m := TimelineModel{
		ctx:      opts.Context,
		opts:     opts,
		logger:   logger,
		title:    title,
		items:    items,
		mode:     opts.Mode,
		cards:    NewCardRenderer(NewMarkdownRenderer(opts.MarkdownStyle), opts.CardWidth),
		strip:    newStripView(len(items)),
		slides:   newSlideRunner(opts, logger),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:    newSearchInput(),
		search:   &searchState{set: map[int]bool{}},
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.list = listview.NewVirtualListModel(items, m.bodyHeight(), m.width, m.renderRow(),
		listview.WithEstimatedHeight(opts.EstimatedItemHeight),
		listview.WithOverscan(opts.Overscan),
		listview.WithLogger(logger),
	)

	if tl != nil && opts.InitialID != "" {
		if i := tl.IndexOf(opts.InitialID); i >= 0 {
			m.list.SetSelected(i)
		}
	}
	if opts.Search != "" {
		m.input.SetValue(opts.Search)
		m.applySearch(opts.Search)
		m.jumpToMatch(0)
	}
	m.bindSlide()
	return m
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/"
	ti.CharLimit = 120
	return ti
}

// renderRow returns the list render function for the current mode.
func (m *TimelineModel) renderRow() listview.RenderFunc[timeline.Item] {
	cards, mode, search := m.cards, m.mode, m.search
	return func(item timeline.Item, index int, selected bool, width int) string {
		state := CardNormal
		switch {
		case selected:
			state = CardSelected
		case search.has(index):
			state = CardMatched
		}
		return cards.Row(item, index, mode, state, width)
	}
}

// Init starts waiting for slideshow completions and any background work
// (Bubble Tea interface).
func (m TimelineModel) Init() tea.Cmd {
	return tea.Batch(m.slides.wait(), m.slides.tick(), m.prewarm())
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m TimelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		cmd := m.prewarm()
		return m, cmd
	case SlideElapsedMsg:
		return m.handleSlideElapsed(msg)
	case slideTickMsg:
		return m, m.slides.handleTick()
	case MeasuredMsg:
		m.handleMeasured(msg)
		return m, nil
	case tea.FocusMsg:
		m.slides.setHold(holdBlur, false)
		return m, nil
	case tea.BlurMsg:
		m.slides.setHold(holdBlur, true)
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}

	switch m.state {
	case ViewStateSearch:
		return m.handleSearchUpdate(msg)
	case ViewStateIndex:
		return m.handleIndexUpdate(msg)
	case ViewStateQuitting:
		return m, nil
	default:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.handleTimelineKey(keyMsg)
		}
		return m, nil
	}
}

func (m TimelineModel) handleTimelineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state = ViewStateQuitting
		m.slides.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Mode):
		m.setMode(m.mode.Next())
		cmd := m.prewarm()
		return m, cmd
	case key.Matches(msg, m.keys.Slideshow):
		cmd := m.slides.setEnabled(!m.slides.enabled)
		m.status = "slideshow " + onOff(m.slides.enabled)
		m.resize()
		return m, cmd
	case key.Matches(msg, m.keys.Pause):
		if m.slides.enabled {
			m.slides.togglePause()
		}
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.state = ViewStateSearch
		m.input.SetValue(m.search.query)
		m.input.CursorEnd()
		m.resize()
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpToMatch(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpToMatch(-1)
		return m, nil
	case key.Matches(msg, m.keys.Index):
		m.openIndex()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		if m.search.query != "" {
			m.input.SetValue("")
			m.applySearch("")
		}
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.selectIndex(m.list.Selected() - 1)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.selectIndex(m.list.Selected() + 1)
		return m, nil
	}

	before := m.list.Selected()
	if m.list.HandleKey(msg) && m.list.Selected() != before {
		m.bindSlide()
	}
	return m, nil
}

func (m TimelineModel) handleSearchUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.state = ViewStateTimeline
			m.input.Blur()
			m.jumpToMatch(0)
			m.resize()
			return m, nil
		case tea.KeyEsc:
			m.state = ViewStateTimeline
			m.input.Blur()
			m.input.SetValue("")
			m.applySearch("")
			m.resize()
			return m, nil
		case tea.KeyCtrlC:
			m.state = ViewStateQuitting
			m.slides.close()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.search.query {
		m.applySearch(m.input.Value())
	}
	return m, cmd
}

func (m TimelineModel) handleIndexUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Open):
			m.state = ViewStateTimeline
			m.selectIndex(m.index.Cursor())
			return m, nil
		case key.Matches(keyMsg, m.keys.Escape), key.Matches(keyMsg, m.keys.Index):
			m.state = ViewStateTimeline
			return m, nil
		case keyMsg.Type == tea.KeyCtrlC, keyMsg.String() == "q":
			m.state = ViewStateQuitting
			m.slides.close()
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.index, cmd = m.index.Update(msg)
	return m, cmd
}

func (m TimelineModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != ViewStateTimeline {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionMotion:
		m.slides.setHold(holdHover, m.overSelected(msg.Y))
	case tea.MouseActionPress:
		if m.mode == timeline.ModeHorizontal {
			switch msg.Button {
			case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
				m.selectIndex(m.list.Selected() - 1)
			case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
				m.selectIndex(m.list.Selected() + 1)
			}
			return m, nil
		}
		_, _ = m.list.Update(msg)
	}
	return m, nil
}

// overSelected reports whether screen row y lies on the selected card.
func (m TimelineModel) overSelected(y int) bool {
	if len(m.items) == 0 {
		return false
	}
	row := y - headerHeight
	if row < 0 || row >= m.bodyHeight() {
		return false
	}
	if m.mode == timeline.ModeHorizontal {
		return row >= horizontalCardTop
	}
	top, bottom := m.list.SelectedBounds()
	return row >= top && row < bottom
}

func (m TimelineModel) handleSlideElapsed(msg SlideElapsedMsg) (tea.Model, tea.Cmd) {
	wait := m.slides.wait()
	if msg.ItemID == "" || msg.ItemID != m.slides.boundID() || !m.slides.enabled {
		m.logger.Debug().Str("item_id", msg.ItemID).Msg("ignoring stale slide completion")
		return m, wait
	}

	next := m.list.Selected() + 1
	if next >= len(m.items) {
		if !m.slides.loop {
			m.slides.setEnabled(false)
			m.status = "slideshow finished"
			m.resize()
			return m, wait
		}
		next = 0
	}
	if next == m.list.Selected() {
		m.slides.restart()
		return m, wait
	}
	m.selectIndex(next)
	return m, wait
}

func (m *TimelineModel) handleMeasured(msg MeasuredMsg) {
	if msg.Err != nil {
		m.logger.Warn().Err(msg.Err).Msg("measuring card heights failed")
		return
	}
	if msg.Mode != m.mode || msg.Width != m.list.ContentWidth() {
		m.logger.Debug().Int("width", msg.Width).Msg("discarding stale measurements")
		return
	}
	changed := m.list.ApplyMeasurements(msg.Heights)
	m.logger.Debug().
		Int("items", len(msg.Heights)).
		Int("changed", changed).
		Msg("applied prewarmed card heights")
}

// prewarm measures every row in the background for large timelines. It is a
// no-op below the threshold, in horizontal mode, or when the current mode and
// width were already requested.
func (m *TimelineModel) prewarm() tea.Cmd {
	if m.opts.PrewarmThreshold <= 0 || len(m.items) <= m.opts.PrewarmThreshold {
		return nil
	}
	if m.mode == timeline.ModeHorizontal {
		return nil
	}
	k := measureKey{mode: m.mode, width: m.list.ContentWidth()}
	if k == m.measuredFor {
		return nil
	}
	m.measuredFor = k
	m.logger.Debug().Int("items", len(m.items)).Int("width", k.width).Msg("prewarming card heights")
	return measureCmd(m.ctx, m.cards, m.items, k.mode, k.width)
}

// selectIndex moves the selection and rebinds the slideshow.
func (m *TimelineModel) selectIndex(index int) {
	if len(m.items) == 0 {
		return
	}
	m.list.SetSelected(index)
	m.bindSlide()
}

func (m *TimelineModel) bindSlide() {
	if item := m.list.GetSelectedItem(); item != nil {
		m.slides.bind(item.ID)
	}
}

func (m *TimelineModel) setMode(mode timeline.Mode) {
	m.mode = mode
	m.measuredFor = measureKey{}
	m.list.SetRender(m.renderRow())
	m.status = "mode " + mode.String()
}

// applySearch recomputes the matches for query and refreshes highlighting.
func (m *TimelineModel) applySearch(query string) {
	m.search.query = query
	m.search.matches = timeline.Search(m.items, query, m.opts.CaseSensitive)
	clear(m.search.set)
	for _, i := range m.search.matches {
		m.search.set[i] = true
	}
	m.search.pos = -1
	m.list.InvalidateAll()
	m.list.Refresh()

	switch {
	case query == "":
		m.status = ""
	case len(m.search.matches) == 0:
		m.status = fmt.Sprintf("no matches for %q", query)
	default:
		m.status = fmt.Sprintf("%d matches", len(m.search.matches))
	}
}

// jumpToMatch selects a match. A step of zero selects the first match at or
// after the selection; positive and negative steps cycle through matches.
func (m *TimelineModel) jumpToMatch(step int) {
	matches := m.search.matches
	if len(matches) == 0 {
		return
	}
	switch {
	case step == 0 || m.search.pos < 0:
		m.search.pos = 0
		for i, idx := range matches {
			if idx >= m.list.Selected() {
				m.search.pos = i
				break
			}
		}
		if step < 0 && matches[m.search.pos] >= m.list.Selected() {
			m.search.pos = (m.search.pos - 1 + len(matches)) % len(matches)
		}
	default:
		m.search.pos = (m.search.pos + step + len(matches)) % len(matches)
	}
	m.selectIndex(matches[m.search.pos])
	m.status = fmt.Sprintf("match %d/%d", m.search.pos+1, len(matches))
}

func (m *TimelineModel) openIndex() {
	m.state = ViewStateIndex
	m.index = m.buildIndexTable()
}

// buildIndexTable creates the jump table listing every item.
func (m *TimelineModel) buildIndexTable() table.Model {
	dateW, numW := 16, 6
	titleW := max(m.width-dateW-numW-8, 10)
	columns := []table.Column{
		{Title: "#", Width: numW},
		{Title: "Date", Width: dateW},
		{Title: "Title", Width: titleW},
	}
	rows := make([]table.Row, len(m.items))
	for i, it := range m.items {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			timeline.FormatDate(it.Date),
			truncate(it.Heading(), titleW),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-headerHeight-footerHeight, minHeight)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	t.SetCursor(m.list.Selected())
	return t
}

// resize lays the body out for the current window and footer.
func (m *TimelineModel) resize() {
	m.list.SetSize(m.width, m.bodyHeight())
	m.progress.Width = max(m.width-progressPrefixWidth, 10)
	m.help.Width = m.width
	m.input.Width = max(m.width-4, 10)
	if m.state == ViewStateIndex {
		m.index.SetHeight(max(m.height-headerHeight-footerHeight, minHeight))
	}
}

// Close stops the slideshow. It is safe to call more than once.
func (m TimelineModel) Close() {
	m.slides.close()
}

// SelectedIndex returns the index of the selected item.
func (m TimelineModel) SelectedIndex() int {
	return m.list.Selected()
}

// SelectedID returns the ID of the selected item, or "" for an empty timeline.
func (m TimelineModel) SelectedID() string {
	if item := m.list.GetSelectedItem(); item != nil {
		return item.ID
	}
	return ""
}

// Mode returns the current layout mode.
func (m TimelineModel) Mode() timeline.Mode {
	return m.mode
}

// State returns the current screen.
func (m TimelineModel) State() ViewState {
	return m.state
}

// SlideshowEnabled reports whether the slideshow is on.
func (m TimelineModel) SlideshowEnabled() bool {
	return m.slides.enabled
}

// SlideshowPaused reports whether the slideshow is held by the user, the mouse
// or lost focus.
func (m TimelineModel) SlideshowPaused() bool {
	return m.slides.paused()
}

// SlideshowSnapshot returns the countdown state of the selected item.
func (m TimelineModel) SlideshowSnapshot() slideshow.Snapshot {
	return m.slides.snapshot()
}

// Matches returns the indices of the items matching the current search.
func (m TimelineModel) Matches() []int {
	return m.search.matches
}

// Status returns the transient status line.
func (m TimelineModel) Status() string {
	return m.status
}

// List exposes the underlying virtual list.
func (m TimelineModel) List() *listview.VirtualListModel[timeline.Item] {
	return m.list
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
