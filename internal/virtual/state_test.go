package virtual

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderedHeight sums the heights of the materialized window.
func renderedHeight(s *State, r Range) int {
	if r.Empty() {
		return 0
	}
	total := 0
	for i := r.StartIndex; i <= r.EndIndex; i++ {
		total += s.ItemHeight(i)
	}
	return total
}

func TestNew_ClampsConfig(t *testing.T) {
	s := New(Config{ItemCount: -4, EstimatedItemHeight: 0, Overscan: -2})

	assert.Equal(t, 0, s.ItemCount())
	assert.Equal(t, DefaultEstimatedItemHeight, s.EstimatedItemHeight())
	assert.Equal(t, 0, s.Overscan())
}

func TestComputeVisibleRange_EmptyList(t *testing.T) {
	s := New(Config{ItemCount: 0, EstimatedItemHeight: 3, Overscan: 5})
	s.SetViewportSize(40)
	s.SetScrollOffset(120)

	r := ComputeVisibleRange(s)

	assert.Equal(t, Range{}, r)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Count)
	assert.False(t, r.Contains(0))
}

func TestComputeVisibleRange_Uniform(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		estimate  int
		overscan  int
		scroll    int
		viewport  int
		wantStart int
		wantEnd   int
		wantTop   int
		wantAfter int
	}{
		{
			name:      "top of list without overscan",
			count:     100,
			estimate:  2,
			scroll:    0,
			viewport:  10,
			wantStart: 0,
			wantEnd:   5,
			wantTop:   0,
			wantAfter: 188,
		},
		{
			name:      "middle of list with overscan",
			count:     100,
			estimate:  2,
			overscan:  2,
			scroll:    40,
			viewport:  10,
			wantStart: 18,
			wantEnd:   27,
			wantTop:   36,
			wantAfter: 144,
		},
		{
			name:      "scrolled past the end",
			count:     10,
			estimate:  4,
			scroll:    400,
			viewport:  8,
			wantStart: 9,
			wantEnd:   9,
			wantTop:   36,
			wantAfter: 0,
		},
		{
			name:      "fewer items than viewport",
			count:     3,
			estimate:  1,
			overscan:  4,
			scroll:    0,
			viewport:  20,
			wantStart: 0,
			wantEnd:   2,
			wantTop:   0,
			wantAfter: 0,
		},
		{
			name:      "zero viewport still materializes one item",
			count:     5,
			estimate:  3,
			scroll:    6,
			viewport:  0,
			wantStart: 2,
			wantEnd:   2,
			wantTop:   6,
			wantAfter: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{ItemCount: tt.count, EstimatedItemHeight: tt.estimate, Overscan: tt.overscan})
			s.SetViewportSize(tt.viewport)
			s.SetScrollOffset(tt.scroll)

			r := s.ComputeVisibleRange()

			assert.Equal(t, tt.wantStart, r.StartIndex)
			assert.Equal(t, tt.wantEnd, r.EndIndex)
			assert.Equal(t, tt.wantTop, r.OffsetTop)
			assert.Equal(t, tt.wantAfter, r.AfterHeight)
			assert.Equal(t, tt.wantEnd-tt.wantStart+1, r.Count)
		})
	}
}

func TestComputeVisibleRange_NegativeInputsClamped(t *testing.T) {
	s := New(Config{ItemCount: 10, EstimatedItemHeight: 2})
	s.SetScrollOffset(-50)
	s.SetViewportSize(-3)

	assert.Equal(t, 0, s.ScrollOffset())
	assert.Equal(t, 0, s.ViewportSize())

	r := s.ComputeVisibleRange()
	assert.Equal(t, 0, r.StartIndex)
	assert.Equal(t, 0, r.OffsetTop)
}

func TestComputeVisibleRange_HeightConservation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := range 200 {
		count := rng.IntN(60)
		s := New(Config{
			ItemCount:           count,
			EstimatedItemHeight: 1 + rng.IntN(6),
			Overscan:            rng.IntN(4),
		})
		s.SetViewportSize(rng.IntN(30))

		for range rng.IntN(80) {
			if count > 0 {
				s.RecordMeasurement(rng.IntN(count), 1+rng.IntN(12))
			}
			s.SetScrollOffset(rng.IntN(s.TotalHeight() + 10))

			r := s.ComputeVisibleRange()
			total := s.TotalHeight()

			require.Equal(t, total, r.OffsetTop+renderedHeight(s, r)+r.AfterHeight, "trial %d", trial)
			require.Equal(t, s.OffsetOf(r.StartIndex), r.OffsetTop, "trial %d", trial)
			if count > 0 {
				require.GreaterOrEqual(t, r.StartIndex, 0)
				require.LessOrEqual(t, r.StartIndex, r.EndIndex)
				require.Less(t, r.EndIndex, count)
			} else {
				require.Equal(t, Range{}, r)
			}
		}
	}
}

func TestComputeVisibleRange_MonotonicGrowth(t *testing.T) {
	s := New(Config{ItemCount: 200, EstimatedItemHeight: 3, Overscan: 2})
	for i := 0; i < 200; i += 3 {
		s.RecordMeasurement(i, 1+i%7)
	}
	s.SetViewportSize(25)

	prev := s.ComputeVisibleRange()
	for offset := 1; offset <= s.TotalHeight(); offset++ {
		s.SetScrollOffset(offset)
		r := s.ComputeVisibleRange()

		require.GreaterOrEqual(t, r.StartIndex, prev.StartIndex, "offset %d", offset)
		require.GreaterOrEqual(t, r.EndIndex, prev.EndIndex, "offset %d", offset)
		prev = r
	}
}

func TestComputeVisibleRange_OverscanWidening(t *testing.T) {
	for _, scroll := range []int{0, 7, 55, 140, 290} {
		base := New(Config{ItemCount: 100, EstimatedItemHeight: 3})
		base.SetViewportSize(20)
		base.SetScrollOffset(scroll)
		prev := base.ComputeVisibleRange()

		for overscan := 1; overscan <= 10; overscan++ {
			base.SetOverscan(overscan)
			r := base.ComputeVisibleRange()

			assert.GreaterOrEqual(t, r.Count, prev.Count, "scroll %d overscan %d", scroll, overscan)
			assert.GreaterOrEqual(t, r.StartIndex, 0)
			assert.Less(t, r.EndIndex, base.ItemCount())
			prev = r
		}
	}
}

func TestRecordMeasurement_Idempotent(t *testing.T) {
	once := New(Config{ItemCount: 30, EstimatedItemHeight: 2, Overscan: 1})
	twice := New(Config{ItemCount: 30, EstimatedItemHeight: 2, Overscan: 1})
	for _, s := range []*State{once, twice} {
		s.SetViewportSize(10)
		s.SetScrollOffset(12)
	}

	assert.True(t, once.RecordMeasurement(4, 9))
	assert.True(t, twice.RecordMeasurement(4, 9))
	assert.False(t, twice.RecordMeasurement(4, 9))

	assert.Equal(t, once.ComputeVisibleRange(), twice.ComputeVisibleRange())
	assert.Equal(t, 1, twice.MeasuredCount())
}

func TestRecordMeasurement_OrderIndependent(t *testing.T) {
	type m struct{ index, height int }
	measurements := []m{{1, 4}, {8, 2}, {3, 7}, {1, 5}, {12, 1}}

	forward := New(Config{ItemCount: 20, EstimatedItemHeight: 3})
	for _, x := range measurements {
		forward.RecordMeasurement(x.index, x.height)
	}

	// Same latest-per-index values, different order.
	reordered := New(Config{ItemCount: 20, EstimatedItemHeight: 3})
	for _, x := range []m{{12, 1}, {3, 7}, {1, 5}, {8, 2}} {
		reordered.RecordMeasurement(x.index, x.height)
	}

	for _, s := range []*State{forward, reordered} {
		s.SetViewportSize(9)
		s.SetScrollOffset(10)
	}
	assert.Equal(t, forward.ComputeVisibleRange(), reordered.ComputeVisibleRange())
	assert.Equal(t, forward.TotalHeight(), reordered.TotalHeight())
}

func TestRecordMeasurement_Ignored(t *testing.T) {
	s := New(Config{ItemCount: 3, EstimatedItemHeight: 2})

	assert.False(t, s.RecordMeasurement(-1, 4))
	assert.False(t, s.RecordMeasurement(3, 4))
	assert.False(t, s.RecordMeasurement(0, 0))
	assert.False(t, s.RecordMeasurement(0, -2))
	assert.Equal(t, 0, s.MeasuredCount())
	assert.Equal(t, 6, s.TotalHeight())
}

func TestRecordMeasurement_InvalidatesMemo(t *testing.T) {
	s := New(Config{ItemCount: 10, EstimatedItemHeight: 2})
	s.SetViewportSize(4)
	s.SetScrollOffset(8)

	before := s.ComputeVisibleRange()
	assert.Equal(t, 8, before.OffsetTop)

	// A late measurement above the window shifts the leading spacer.
	s.RecordMeasurement(0, 6)
	after := s.ComputeVisibleRange()

	assert.Equal(t, before.StartIndex, after.StartIndex)
	assert.Equal(t, 12, after.OffsetTop)
}

func TestHeightAt_ExplicitFallback(t *testing.T) {
	s := New(Config{ItemCount: 4, EstimatedItemHeight: 5})
	s.RecordMeasurement(2, 1)

	assert.Equal(t, Height{}, s.HeightAt(0))
	assert.Equal(t, Height{Value: 1, Known: true}, s.HeightAt(2))
	assert.Equal(t, Height{}, s.HeightAt(9))
	assert.Equal(t, 5, s.ItemHeight(0))
	assert.Equal(t, 1, s.ItemHeight(2))
	assert.Equal(t, 0, s.ItemHeight(9))
	assert.Equal(t, 16, s.TotalHeight())
}

func TestSetItemCount(t *testing.T) {
	s := New(Config{ItemCount: 5, EstimatedItemHeight: 2})
	s.RecordMeasurement(1, 4)
	s.RecordMeasurement(4, 9)

	s.SetItemCount(3)
	assert.Equal(t, 3, s.ItemCount())
	assert.Equal(t, 1, s.MeasuredCount())
	assert.Equal(t, 8, s.TotalHeight())

	s.SetItemCount(6)
	assert.Equal(t, 6, s.ItemCount())
	assert.Equal(t, Height{}, s.HeightAt(4))
	assert.Equal(t, 14, s.TotalHeight())
}

func TestReset(t *testing.T) {
	s := New(Config{ItemCount: 5, EstimatedItemHeight: 2})
	s.RecordMeasurement(1, 4)
	s.SetViewportSize(3)
	s.SetScrollOffset(4)

	s.Reset(8)

	assert.Equal(t, 8, s.ItemCount())
	assert.Equal(t, 0, s.MeasuredCount())
	assert.Equal(t, 0, s.ScrollOffset())
	assert.Equal(t, 3, s.ViewportSize())
}

func TestScrollBy_Clamps(t *testing.T) {
	s := New(Config{ItemCount: 10, EstimatedItemHeight: 2})
	s.SetViewportSize(6)

	s.ScrollBy(-5)
	assert.Equal(t, 0, s.ScrollOffset())

	s.ScrollBy(100)
	assert.Equal(t, 14, s.ScrollOffset())
	assert.Equal(t, s.MaxScrollOffset(), s.ScrollOffset())
}

func TestEnsureVisible(t *testing.T) {
	s := New(Config{ItemCount: 20, EstimatedItemHeight: 2})
	s.SetViewportSize(6)

	s.EnsureVisible(5)
	assert.Equal(t, 6, s.ScrollOffset(), "item below the viewport aligns to the bottom edge")

	s.EnsureVisible(1)
	assert.Equal(t, 2, s.ScrollOffset(), "item above the viewport aligns to the top edge")

	s.RecordMeasurement(10, 12)
	s.EnsureVisible(10)
	assert.Equal(t, s.OffsetOf(10), s.ScrollOffset(), "oversized item aligns to the top edge")

	s.EnsureVisible(-1)
	s.EnsureVisible(99)
	assert.Equal(t, s.OffsetOf(10), s.ScrollOffset())
}

// The start index is derived from the estimate, so when measured heights are far
// larger than the estimate the item actually at the top of the viewport is not
// materialized. Only the spacer is corrected.
func TestComputeVisibleRange_UnderFetchWithTallItems(t *testing.T) {
	s := New(Config{ItemCount: 20, EstimatedItemHeight: 1})
	for i := range 20 {
		s.RecordMeasurement(i, 10)
	}
	s.SetViewportSize(10)
	s.SetScrollOffset(15)

	r := s.ComputeVisibleRange()

	assert.Equal(t, 15, r.StartIndex)
	assert.Equal(t, 150, r.OffsetTop)
	assert.False(t, r.Contains(1), "item 1 covers the viewport but is not materialized")
	assert.Equal(t, s.TotalHeight(), r.OffsetTop+renderedHeight(s, r)+r.AfterHeight)
}
