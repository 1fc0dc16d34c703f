package slideshow

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// FramePollThreshold is the shortest interval driven by frame polling.
	// Shorter intervals use a single timeout.
	FramePollThreshold = 50 * time.Millisecond

	// DefaultFrameInterval approximates one display frame at 60Hz.
	DefaultFrameInterval = 16 * time.Millisecond
)

// Handle is a cancellable reference to a scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running. It is safe to call more than
	// once and after the callback has already run.
	Cancel()
}

// Scheduler runs a callback once a deadline is reached.
type Scheduler interface {
	Schedule(deadline time.Time, fn func()) Handle
}

// DeadlineScheduler fires callbacks at a deadline. Intervals of at least
// FramePollThreshold are driven by polling the clock once per frame, which keeps
// progress rendering smooth; shorter intervals use a single timer.
type DeadlineScheduler struct {
	clock         clockwork.Clock
	frameInterval time.Duration
}

// NewDeadlineScheduler creates a scheduler reading time from clock. A
// non-positive frameInterval selects DefaultFrameInterval.
func NewDeadlineScheduler(clock clockwork.Clock, frameInterval time.Duration) *DeadlineScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &DeadlineScheduler{clock: clock, frameInterval: frameInterval}
}

// FrameInterval returns the polling period used for long intervals.
func (s *DeadlineScheduler) FrameInterval() time.Duration {
	return s.frameInterval
}

// Schedule arranges for fn to run on its own goroutine once deadline is reached.
func (s *DeadlineScheduler) Schedule(deadline time.Time, fn func()) Handle {
	h := newHandle()
	remaining := deadline.Sub(s.clock.Now())
	if remaining >= FramePollThreshold {
		go s.poll(deadline, fn, h)
	} else {
		go s.timeout(max(remaining, 0), fn, h)
	}
	return h
}

func (s *DeadlineScheduler) poll(deadline time.Time, fn func(), h *handle) {
	ticker := s.clock.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.Chan():
			if !s.clock.Now().Before(deadline) {
				h.fire(fn)
				return
			}
		}
	}
}

func (s *DeadlineScheduler) timeout(d time.Duration, fn func(), h *handle) {
	timer := s.clock.NewTimer(d)
	select {
	case <-h.done:
		timer.Stop()
	case <-timer.Chan():
		h.fire(fn)
	}
}

const (
	handlePending int32 = iota
	handleFired
	handleCancelled
)

type handle struct {
	state atomic.Int32
	done  chan struct{}
	once  sync.Once
}

func newHandle() *handle {
	return &handle{done: make(chan struct{})}
}

// fire runs fn unless the handle was cancelled or already fired.
func (h *handle) fire(fn func()) {
	if !h.state.CompareAndSwap(handlePending, handleFired) {
		return
	}
	h.release()
	fn()
}

func (h *handle) Cancel() {
	h.state.CompareAndSwap(handlePending, handleCancelled)
	h.release()
}

func (h *handle) release() {
	h.once.Do(func() { close(h.done) })
}
