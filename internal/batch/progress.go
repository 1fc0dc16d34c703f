package batch

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const percentMultiplier = 100

// Progress tracks completed items and batches. It is safe for concurrent use.
type Progress struct {
	mu    sync.Mutex
	clock clockwork.Clock

	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int
	batchSize        int
	start            time.Time
	lastUpdate       time.Time
}

// NewProgress creates a tracker. A nil clock uses the real clock.
func NewProgress(totalItems, totalBatches, batchSize int, clock clockwork.Clock) *Progress {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	now := clock.Now()
	return &Progress{
		clock:        clock,
		totalItems:   totalItems,
		totalBatches: totalBatches,
		batchSize:    batchSize,
		start:        now,
		lastUpdate:   now,
	}
}

// Add records one completed batch of n items and returns the updated state.
func (p *Progress) Add(n int) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processedItems += n
	p.processedBatches++
	p.lastUpdate = p.clock.Now()
	return p.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Reset clears the counters and restarts timing.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.processedItems = 0
	p.processedBatches = 0
	p.start = now
	p.lastUpdate = now
}

func (p *Progress) snapshotLocked() Snapshot {
	return Snapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		BatchSize:        p.batchSize,
		Elapsed:          p.lastUpdate.Sub(p.start),
	}
}

// Snapshot is an immutable view of progress.
type Snapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	BatchSize        int

	// Elapsed is the time from the start to the latest update.
	Elapsed time.Duration
}

// Fraction returns completion in [0, 1].
func (s Snapshot) Fraction() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return min(float64(s.ProcessedItems)/float64(s.TotalItems), 1)
}

// PercentComplete returns completion in [0, 100].
func (s Snapshot) PercentComplete() float64 {
	return s.Fraction() * percentMultiplier
}

// Complete reports whether every item has been processed.
func (s Snapshot) Complete() bool {
	return s.ProcessedItems >= s.TotalItems
}

// ItemsPerSecond returns the processing rate, or 0 before any time has passed.
func (s Snapshot) ItemsPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(s.ProcessedItems) / secs
}

// Remaining estimates the time left from the average rate so far.
func (s Snapshot) Remaining() time.Duration {
	if s.ProcessedItems == 0 {
		return 0
	}
	perItem := s.Elapsed / time.Duration(s.ProcessedItems)
	return perItem * time.Duration(max(s.TotalItems-s.ProcessedItems, 0))
}
