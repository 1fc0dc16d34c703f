package virtual

// DefaultEstimatedItemHeight is used when a non-positive estimate is configured.
const DefaultEstimatedItemHeight = 1

// DefaultOverscan is the number of extra items materialized on each side of the viewport.
const DefaultOverscan = 3

// Config holds the settings that are fixed for the lifetime of a list view.
type Config struct {
	// ItemCount is the number of items in the logical list.
	ItemCount int

	// EstimatedItemHeight is the height assumed for items that have not been measured.
	EstimatedItemHeight int

	// Overscan is the number of extra items to materialize beyond each viewport edge.
	Overscan int
}

// Height is an optional item height. Known is false until the item has been measured.
type Height struct {
	Value int
	Known bool
}

// Range is the window of items to materialize.
type Range struct {
	// StartIndex is the first materialized item (inclusive).
	StartIndex int

	// EndIndex is the last materialized item (inclusive).
	EndIndex int

	// OffsetTop is the cumulative height of all items before StartIndex.
	OffsetTop int

	// AfterHeight is the cumulative height of all items after EndIndex.
	AfterHeight int

	// Count is the number of materialized items; zero for an empty list.
	Count int
}

// Empty reports whether the range materializes no items.
func (r Range) Empty() bool {
	return r.Count == 0
}

// Contains reports whether index is materialized by the range.
func (r Range) Contains(index int) bool {
	return r.Count > 0 && index >= r.StartIndex && index <= r.EndIndex
}

// State is the virtualization state of one list view.
type State struct {
	// heights has exactly itemCount entries; unmeasured items have Known == false.
	heights []Height

	// measured is the number of entries in heights with Known == true.
	measured int

	estimate int
	overscan int

	scrollOffset int
	viewportSize int

	// memo caches the last computed range; nil when invalidated.
	memo *Range
}

// New creates a State for the given configuration. Invalid settings are clamped:
// a negative item count becomes zero, a non-positive estimate becomes
// DefaultEstimatedItemHeight and a negative overscan becomes zero.
func New(cfg Config) *State {
	estimate := cfg.EstimatedItemHeight
	if estimate <= 0 {
		estimate = DefaultEstimatedItemHeight
	}
	return &State{
		heights:  make([]Height, max(cfg.ItemCount, 0)),
		estimate: estimate,
		overscan: max(cfg.Overscan, 0),
	}
}

// ItemCount returns the number of items in the logical list.
func (s *State) ItemCount() int {
	return len(s.heights)
}

// EstimatedItemHeight returns the fallback height for unmeasured items.
func (s *State) EstimatedItemHeight() int {
	return s.estimate
}

// Overscan returns the configured overscan count.
func (s *State) Overscan() int {
	return s.overscan
}

// MeasuredCount returns how many items have a recorded height.
func (s *State) MeasuredCount() int {
	return s.measured
}

// ScrollOffset returns the current scroll position.
func (s *State) ScrollOffset() int {
	return s.scrollOffset
}

// ViewportSize returns the visible size along the primary axis.
func (s *State) ViewportSize() int {
	return s.viewportSize
}

// SetScrollOffset updates the scroll position. Negative values are treated as zero.
func (s *State) SetScrollOffset(offset int) {
	offset = max(offset, 0)
	if offset == s.scrollOffset {
		return
	}
	s.scrollOffset = offset
	s.invalidate()
}

// SetViewportSize updates the visible size. Negative values are treated as zero.
func (s *State) SetViewportSize(size int) {
	size = max(size, 0)
	if size == s.viewportSize {
		return
	}
	s.viewportSize = size
	s.invalidate()
}

// SetOverscan updates the overscan count. Negative values are treated as zero.
func (s *State) SetOverscan(overscan int) {
	overscan = max(overscan, 0)
	if overscan == s.overscan {
		return
	}
	s.overscan = overscan
	s.invalidate()
}

// SetItemCount grows or shrinks the logical list. Measurements for indices that
// remain in range are kept; measurements beyond the new count are dropped.
func (s *State) SetItemCount(count int) {
	count = max(count, 0)
	if count == len(s.heights) {
		return
	}
	if count < len(s.heights) {
		for _, h := range s.heights[count:] {
			if h.Known {
				s.measured--
			}
		}
		s.heights = s.heights[:count]
	} else {
		s.heights = append(s.heights, make([]Height, count-len(s.heights))...)
	}
	s.invalidate()
}

// Reset replaces the item set: all measurements are discarded and the scroll
// position returns to the top.
func (s *State) Reset(count int) {
	s.heights = make([]Height, max(count, 0))
	s.measured = 0
	s.scrollOffset = 0
	s.invalidate()
}

// RecordMeasurement stores the observed height of the item at index. It returns
// true when the stored height changed. Recording the same height again is a no-op
// and keeps any memoized range. Out-of-range indices and non-positive heights are
// ignored.
func (s *State) RecordMeasurement(index, height int) bool {
	if index < 0 || index >= len(s.heights) || height <= 0 {
		return false
	}
	current := s.heights[index]
	if current.Known && current.Value == height {
		return false
	}
	if !current.Known {
		s.measured++
	}
	s.heights[index] = Height{Value: height, Known: true}
	s.invalidate()
	return true
}

// HeightAt returns the recorded height of the item at index, if any.
func (s *State) HeightAt(index int) Height {
	if index < 0 || index >= len(s.heights) {
		return Height{}
	}
	return s.heights[index]
}

// ItemHeight returns the height used for layout: the measured height when known,
// the estimate otherwise. Out-of-range indices have zero height.
func (s *State) ItemHeight(index int) int {
	if index < 0 || index >= len(s.heights) {
		return 0
	}
	h := s.heights[index]
	if h.Known {
		return h.Value
	}
	return s.estimate
}

// TotalHeight returns the height of the whole logical list.
func (s *State) TotalHeight() int {
	total := 0
	for i := range s.heights {
		total += s.ItemHeight(i)
	}
	return total
}

// OffsetOf returns the cumulative height of all items before index.
func (s *State) OffsetOf(index int) int {
	index = min(max(index, 0), len(s.heights))
	offset := 0
	for i := range index {
		offset += s.ItemHeight(i)
	}
	return offset
}

// MaxScrollOffset returns the largest scroll offset that still fills the viewport.
func (s *State) MaxScrollOffset() int {
	return max(s.TotalHeight()-s.viewportSize, 0)
}

// ScrollBy moves the scroll position by delta, clamped to [0, MaxScrollOffset()].
func (s *State) ScrollBy(delta int) {
	s.SetScrollOffset(min(max(s.scrollOffset+delta, 0), s.MaxScrollOffset()))
}

// EnsureVisible adjusts the scroll position by the smallest amount that brings
// the item at index fully into the viewport. Items taller than the viewport are
// aligned to the top edge.
func (s *State) EnsureVisible(index int) {
	if index < 0 || index >= len(s.heights) {
		return
	}
	top := s.OffsetOf(index)
	bottom := top + s.ItemHeight(index)
	switch {
	case top < s.scrollOffset:
		s.SetScrollOffset(top)
	case bottom > s.scrollOffset+s.viewportSize:
		s.SetScrollOffset(min(bottom-s.viewportSize, top))
	}
}

// ComputeVisibleRange returns the window of items to materialize. The result is
// memoized until the scroll offset, viewport size, overscan, item count or any
// measurement changes.
func (s *State) ComputeVisibleRange() Range {
	if s.memo != nil {
		return *s.memo
	}
	r := s.compute()
	s.memo = &r
	return r
}

// ComputeVisibleRange is a convenience wrapper around State.ComputeVisibleRange.
func ComputeVisibleRange(s *State) Range {
	return s.ComputeVisibleRange()
}

func (s *State) compute() Range {
	count := len(s.heights)
	if count == 0 {
		return Range{}
	}

	// The start index is approximated from the estimate; only the offset is
	// corrected by accumulating real heights.
	start := max(s.scrollOffset/s.estimate-s.overscan, 0)
	start = min(start, count-1)

	offsetTop := 0
	for i := range start {
		offsetTop += s.ItemHeight(i)
	}

	limit := s.scrollOffset + s.viewportSize + s.overscan*s.estimate
	end := start
	pos := offsetTop
	for i := start; i < count; i++ {
		end = i
		pos += s.ItemHeight(i)
		if pos > limit {
			break
		}
	}

	after := 0
	for i := end + 1; i < count; i++ {
		after += s.ItemHeight(i)
	}

	return Range{
		StartIndex:  start,
		EndIndex:    end,
		OffsetTop:   offsetTop,
		AfterHeight: after,
		Count:       end - start + 1,
	}
}

func (s *State) invalidate() {
	s.memo = nil
}
