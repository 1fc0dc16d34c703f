// Package virtual computes which items of a long, variable-height list must be
// materialized for a given scroll position.
//
// A State tracks the item count, a height estimate for items that have not been
// laid out yet, the heights measured so far, and the current scroll offset and
// viewport size. ComputeVisibleRange returns the index window to render together
// with the leading and trailing spacer sizes, so that:
//
//	OffsetTop + sum(heights in window) + AfterHeight == TotalHeight()
//
// holds exactly after any sequence of measurements. Heights are expressed in
// terminal rows (or columns, for horizontal strips).
//
// A State is owned by a single view and is not safe for concurrent use.
package virtual
