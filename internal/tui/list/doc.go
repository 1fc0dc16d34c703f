// Package listview provides a virtually scrolled list of variable-height items for
// Bubble Tea applications.
//
// Only the items selected by virtual.State (the viewport plus overscan) are
// rendered. Each rendered item is measured with lipgloss.Height and the
// measurement is fed back into the state, so offsets converge on the real
// geometry as the user scrolls. Key features:
//   - Variable item heights with estimate fallback
//   - Keyboard navigation (up/down, pgup/pgdn, home/end) and mouse wheel scrolling
//   - Proportional scrollbar with half-cell resolution
package listview
