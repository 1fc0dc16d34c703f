package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/rshade/chronoline/internal/slideshow"
)

// progressRepaint is how often the slideshow progress bar is redrawn.
const progressRepaint = 100 * time.Millisecond

// SlideElapsedMsg reports that the slideshow window of an item has run out.
type SlideElapsedMsg struct {
	ItemID string
}

type slideTickMsg time.Time

// hold is a reason for keeping the countdown paused.
type hold uint8

const (
	holdUser hold = 1 << iota
	holdHover
	holdBlur
)

// slideRunner owns the controller bound to the selected item and forwards its
// completions to the program. Controllers fire on scheduler goroutines; the
// buffered channel hands the item ID to the waiting command.
type slideRunner struct {
	enabled   bool
	duration  time.Duration
	loop      bool
	clock     clockwork.Clock
	scheduler slideshow.Scheduler
	logger    zerolog.Logger

	ctrl  *slideshow.Controller
	holds hold

	elapsed chan string
	done    chan struct{}
	closed  bool

	ticking bool
}

func newSlideRunner(opts Options, logger zerolog.Logger) *slideRunner {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &slideRunner{
		enabled:   opts.Slideshow,
		duration:  opts.SlideDuration,
		loop:      opts.Loop,
		clock:     clock,
		scheduler: slideshow.NewDeadlineScheduler(clock, opts.FrameInterval),
		logger:    logger,
		elapsed:   make(chan string, 1),
		done:      make(chan struct{}),
	}
}

// bind replaces the controller with one for itemID. The previous controller is
// deactivated and closed first so it can no longer fire.
func (r *slideRunner) bind(itemID string) {
	if r.closed {
		return
	}
	if r.ctrl != nil {
		if r.ctrl.ItemID() == itemID {
			return
		}
		r.ctrl.SetActive(false)
		r.ctrl.Close()
	}
	r.ctrl = slideshow.New(itemID, r.duration, r.deliver,
		slideshow.WithClock(r.clock),
		slideshow.WithScheduler(r.scheduler),
		slideshow.WithLogger(r.logger),
	)
	r.ctrl.SetEnabled(r.enabled)
	r.ctrl.SetActive(true)
	if r.holds != 0 {
		r.ctrl.TryPause()
	}
}

// restart begins a new window on the bound controller, for a slideshow that
// wraps onto the item it is already showing.
func (r *slideRunner) restart() {
	if r.closed || r.ctrl == nil {
		return
	}
	r.ctrl.Restart()
	if r.holds != 0 {
		r.ctrl.TryPause()
	}
}

func (r *slideRunner) deliver(itemID string) {
	select {
	case r.elapsed <- itemID:
	default:
		r.logger.Debug().Str("item_id", itemID).Msg("dropping slide completion; one is already pending")
	}
}

// wait blocks until a controller completes its window or the runner is closed.
func (r *slideRunner) wait() tea.Cmd {
	elapsed, done := r.elapsed, r.done
	return func() tea.Msg {
		select {
		case id := <-elapsed:
			return SlideElapsedMsg{ItemID: id}
		case <-done:
			return nil
		}
	}
}

// tick starts the progress repaint loop unless it is already running.
func (r *slideRunner) tick() tea.Cmd {
	if !r.enabled || r.ticking {
		return nil
	}
	r.ticking = true
	return tea.Tick(progressRepaint, func(t time.Time) tea.Msg {
		return slideTickMsg(t)
	})
}

// handleTick continues the repaint loop while the slideshow is on.
func (r *slideRunner) handleTick() tea.Cmd {
	r.ticking = false
	return r.tick()
}

// setEnabled turns the slideshow on or off. Turning it on starts a fresh window.
func (r *slideRunner) setEnabled(enabled bool) tea.Cmd {
	r.enabled = enabled
	if enabled {
		r.holds &^= holdUser
	}
	if r.ctrl != nil {
		r.ctrl.SetEnabled(enabled)
		if enabled && r.holds != 0 {
			r.ctrl.TryPause()
		}
	}
	return r.tick()
}

// setHold adds or removes a pause reason. The countdown resumes once no reason
// remains.
func (r *slideRunner) setHold(h hold, on bool) {
	before := r.holds
	if on {
		r.holds |= h
	} else {
		r.holds &^= h
	}
	if r.ctrl == nil || before == r.holds {
		return
	}
	switch {
	case r.holds != 0:
		r.ctrl.TryPause()
	case before != 0:
		r.ctrl.TryResume()
	}
}

// togglePause flips the user pause.
func (r *slideRunner) togglePause() {
	r.setHold(holdUser, r.holds&holdUser == 0)
}

func (r *slideRunner) paused() bool {
	return r.holds != 0
}

func (r *slideRunner) snapshot() slideshow.Snapshot {
	if r.ctrl == nil {
		return slideshow.Snapshot{Duration: r.duration}
	}
	return r.ctrl.Snapshot()
}

func (r *slideRunner) boundID() string {
	if r.ctrl == nil {
		return ""
	}
	return r.ctrl.ItemID()
}

// close releases the controller and unblocks any waiting command. It is
// idempotent.
func (r *slideRunner) close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.ctrl != nil {
		r.ctrl.SetActive(false)
		r.ctrl.Close()
	}
	close(r.done)
}
