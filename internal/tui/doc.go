// Package tui implements the interactive timeline browser.
//
// TimelineModel is a Bubble Tea model. Vertical and alternating layouts render
// item cards through a virtual list that only materializes the cards near the
// viewport and measures each one as it is rendered. The horizontal layout shows
// a strip of labels, virtualized over columns, with the selected card below.
//
// A slideshow advances the selection automatically. One controller is bound to
// the selected item at a time; its completion reaches the program as a
// SlideElapsedMsg, and completions for items that are no longer selected are
// dropped.
//
// RenderPlain and RenderStyled write a timeline without a terminal, for piped
// output.
package tui
