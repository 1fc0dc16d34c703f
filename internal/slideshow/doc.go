// Package slideshow drives the per-item countdown of a timeline slideshow.
//
// A Controller is bound to one item. It runs while the item is active and the
// slideshow is enabled, can be paused and resumed from the exact elapsed time,
// and reports completion through a callback at most once per window. Every
// transition out of the running state cancels the pending driver, so no
// completion is ever delivered after deactivation.
//
// Countdowns are driven by a Scheduler. DeadlineScheduler polls the clock once
// per frame for longer intervals and uses a single timer for short ones; callers
// only see one cancellable Handle either way.
package slideshow
