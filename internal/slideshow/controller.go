package slideshow

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Controller.
type State int

const (
	// StateIdle means no countdown is in progress.
	StateIdle State = iota
	// StateRunning means the countdown is being driven by the scheduler.
	StateRunning
	// StatePaused means the countdown is suspended with its elapsed time frozen.
	StatePaused
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Snapshot is the observable state used to draw a progress bar.
type Snapshot struct {
	State State

	// Paused is true while the countdown is suspended.
	Paused bool

	// Duration is the full budget of one window.
	Duration time.Duration

	// Elapsed is the time consumed in the current window.
	Elapsed time.Duration

	// RemainInterval is the time left in the current window.
	RemainInterval time.Duration

	// StartWidth is the progress fraction (0..1) at which the current run started.
	StartWidth float64
}

// Progress returns the consumed fraction of the window in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(max(float64(s.Elapsed)/float64(s.Duration), 0), 1)
}

// ElapsedFunc is invoked with the bound item ID when a window completes.
type ElapsedFunc func(itemID string)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used to measure elapsed time.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithScheduler sets the scheduler that drives countdowns.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller drives one item's slideshow countdown. It can be paused and resumed
// from where it left off, fires its completion callback at most once per window,
// and never fires once it has been deactivated or closed, including when that
// happens after the window ran out but before the callback started.
//
// Scheduler callbacks arrive on other goroutines, so all state is guarded by mu.
// The completion callback is invoked without holding mu.
type Controller struct {
	mu sync.Mutex

	clock     clockwork.Clock
	scheduler Scheduler
	logger    zerolog.Logger
	onElapsed ElapsedFunc

	itemID   string
	duration time.Duration
	active   bool
	enabled  bool
	closed   bool

	state State

	// live is true from the start of a window until it completes or is torn down.
	live bool
	// window identifies the current countdown; stale scheduler callbacks compare
	// against it and drop themselves.
	window uint64

	elapsed     time.Duration
	windowStart time.Time
	deadline    time.Time
	startWidth  float64

	handle Handle
}

// New creates an idle controller for itemID with the given per-window duration.
// The controller starts counting once it is both active and enabled.
func New(itemID string, duration time.Duration, onElapsed ElapsedFunc, opts ...Option) *Controller {
	c := &Controller{
		itemID:    itemID,
		duration:  duration,
		onElapsed: onElapsed,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.scheduler == nil {
		c.scheduler = NewDeadlineScheduler(c.clock, DefaultFrameInterval)
	}
	c.logger = c.logger.With().Str("component", "slideshow").Str("item_id", itemID).Logger()
	return c
}

// ItemID returns the ID of the item this controller is bound to.
func (c *Controller) ItemID() string {
	return c.itemID
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetActive marks whether the bound item is the current slide. Becoming eligible
// starts a fresh window; becoming ineligible releases all pending timers.
func (c *Controller) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == active {
		return
	}
	c.active = active
	c.syncEligibilityLocked()
}

// SetEnabled turns slideshow mode on or off for this controller.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	c.syncEligibilityLocked()
}

// SetDuration changes the per-window budget. It applies from the next window.
func (c *Controller) SetDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = d
}

// SetupTimer starts a countdown of interval. Any countdown already in progress is
// cancelled. It is a no-op when the controller is not eligible to run or when
// interval is not positive.
func (c *Controller) SetupTimer(interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setupTimerLocked(interval)
}

// Restart begins a new window from zero elapsed time.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.elapsed = 0
	c.state = StateIdle
	c.live = false
	c.setupTimerLocked(c.duration)
}

// TryPause suspends a running countdown and returns true. It is a no-op returning
// false in any other state.
func (c *Controller) TryPause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning {
		return false
	}
	c.cancelLocked()
	c.elapsed = min(max(c.clock.Now().Sub(c.windowStart), 0), c.duration)
	c.startWidth = c.fractionLocked(c.elapsed)
	c.state = StatePaused
	c.logger.Debug().Dur("elapsed", c.elapsed).Msg("slideshow paused")
	return true
}

// TryResume continues a paused countdown and returns true. If the window is
// already exhausted the completion callback fires synchronously. It is a no-op
// returning false unless the controller is paused and still eligible.
func (c *Controller) TryResume() bool {
	c.mu.Lock()
	if c.state != StatePaused || !c.eligibleLocked() {
		c.mu.Unlock()
		return false
	}
	remaining := c.duration - c.elapsed
	if remaining <= 0 {
		fire := c.completeLocked()
		c.mu.Unlock()
		fire()
		return true
	}
	c.startTimerLocked(remaining)
	c.logger.Debug().Dur("remaining", remaining).Msg("slideshow resumed")
	c.mu.Unlock()
	return true
}

// Toggle pauses a running countdown or resumes a paused one.
func (c *Controller) Toggle() bool {
	if c.TryPause() {
		return true
	}
	return c.TryResume()
}

// HandleTimerComplete finishes the current window: timers are released, elapsed
// time resets to zero, the controller becomes idle and the completion callback
// fires. It does nothing when no window is live.
func (c *Controller) HandleTimerComplete() {
	c.mu.Lock()
	if !c.live {
		c.mu.Unlock()
		return
	}
	fire := c.completeLocked()
	c.mu.Unlock()
	fire()
}

// Close releases all timer resources permanently. Later calls to SetActive or
// SetEnabled have no effect. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.deactivateLocked()
}

// Snapshot returns the observable countdown state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:      c.state,
		Paused:     c.state == StatePaused,
		Duration:   c.duration,
		StartWidth: c.startWidth,
	}
	switch c.state {
	case StateRunning:
		snap.Elapsed = min(max(c.clock.Now().Sub(c.windowStart), 0), c.duration)
		snap.RemainInterval = max(c.deadline.Sub(c.clock.Now()), 0)
	case StatePaused:
		snap.Elapsed = c.elapsed
		snap.RemainInterval = max(c.duration-c.elapsed, 0)
	case StateIdle:
		snap.RemainInterval = c.duration
	}
	return snap
}

func (c *Controller) eligibleLocked() bool {
	return c.active && c.enabled && !c.closed && c.duration > 0
}

func (c *Controller) syncEligibilityLocked() {
	if !c.eligibleLocked() {
		c.deactivateLocked()
		return
	}
	if c.state == StateIdle {
		c.elapsed = 0
		c.setupTimerLocked(c.duration)
	}
}

func (c *Controller) setupTimerLocked(interval time.Duration) {
	if interval <= 0 || !c.eligibleLocked() {
		return
	}
	if !c.live {
		c.elapsed = 0
	}
	c.startTimerLocked(min(interval, c.duration))
}

// startTimerLocked begins driving a countdown of interval within the current
// window, opening a new window first when none is live.
func (c *Controller) startTimerLocked(interval time.Duration) {
	c.cancelLocked()
	c.live = true
	c.window++

	now := c.clock.Now()
	consumed := max(c.duration-interval, 0)
	c.windowStart = now.Add(-consumed)
	c.deadline = now.Add(interval)
	c.startWidth = c.fractionLocked(consumed)
	c.state = StateRunning

	window := c.window
	c.handle = c.scheduler.Schedule(c.deadline, func() {
		c.expire(window)
	})
	c.logger.Debug().Dur("interval", interval).Uint64("window", window).Msg("slideshow timer started")
}

// expire is the scheduler callback for the given window.
func (c *Controller) expire(window uint64) {
	c.mu.Lock()
	if !c.live || c.window != window || c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	fire := c.completeLocked()
	c.mu.Unlock()
	fire()
}

// completeLocked ends the live window and returns the callback to run once mu is
// released.
func (c *Controller) completeLocked() func() {
	c.cancelLocked()
	c.live = false
	c.elapsed = 0
	c.startWidth = 0
	c.state = StateIdle
	c.logger.Debug().Uint64("window", c.window).Msg("slideshow window elapsed")

	onElapsed, itemID, window := c.onElapsed, c.itemID, c.window
	return func() {
		if onElapsed == nil {
			return
		}
		c.mu.Lock()
		stale := c.closed || c.window != window
		c.mu.Unlock()
		if stale {
			return
		}
		onElapsed(itemID)
	}
}

func (c *Controller) deactivateLocked() {
	c.cancelLocked()
	if c.live {
		c.logger.Debug().Uint64("window", c.window).Msg("slideshow deactivated")
	}
	c.live = false
	c.window++
	c.elapsed = 0
	c.startWidth = 0
	c.state = StateIdle
}

func (c *Controller) cancelLocked() {
	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}
}

func (c *Controller) fractionLocked(d time.Duration) float64 {
	if c.duration <= 0 {
		return 0
	}
	return min(max(float64(d)/float64(c.duration), 0), 1)
}
