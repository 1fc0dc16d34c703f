package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Batch size limits.
const (
	DefaultBatchSize = 100
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Processing errors.
var (
	ErrInvalidBatchSize = fmt.Errorf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrEmptyItems       = errors.New("items slice cannot be empty")
)

// Callback processes one batch. index is the 0-based batch number.
type Callback[T any] func(ctx context.Context, batch []T, index int) error

// ProgressFunc is invoked after each completed batch. Calls may come from several
// goroutines when processing concurrently.
type ProgressFunc func(snap Snapshot)

// Processor splits slices into batches of a fixed size.
type Processor[T any] struct {
	batchSize  int
	onProgress ProgressFunc
	clock      clockwork.Clock
}

// NewProcessor returns a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize, clock: clockwork.NewRealClock()}, nil
}

// NewProcessorWithDefaults returns a processor using DefaultBatchSize.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize, clock: clockwork.NewRealClock()}
}

// WithProgress sets a progress callback.
func (p *Processor[T]) WithProgress(fn ProgressFunc) *Processor[T] {
	p.onProgress = fn
	return p
}

// WithClock sets the clock used for progress timing.
func (p *Processor[T]) WithClock(clock clockwork.Clock) *Processor[T] {
	p.clock = clock
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Process runs callback over each batch in order, stopping at the first error or
// when ctx is cancelled.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback Callback[T]) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if callback == nil {
		return ErrNilCallback
	}

	bounds := p.Bounds(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize, p.clock)

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := items[b[0]:b[1]]
		if err := callback(ctx, batch, i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		p.report(progress, len(batch))
	}
	return nil
}

// ProcessConcurrent runs callback over the batches on at most maxConcurrency
// goroutines. The first error cancels the context passed to the remaining
// batches and is returned.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	items []T,
	callback Callback[T],
	maxConcurrency int,
) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if callback == nil {
		return ErrNilCallback
	}

	bounds := p.Bounds(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize, p.clock)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(maxConcurrency, 1))
	for i, b := range bounds {
		batch := items[b[0]:b[1]]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := callback(gctx, batch, i); err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			p.report(progress, len(batch))
			return nil
		})
	}
	return g.Wait()
}

// Bounds returns the [start, end) index pairs of each batch for n items.
func (p *Processor[T]) Bounds(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	count := (n + p.batchSize - 1) / p.batchSize
	bounds := make([][2]int, count)
	for i := range count {
		start := i * p.batchSize
		bounds[i] = [2]int{start, min(start+p.batchSize, n)}
	}
	return bounds
}

func (p *Processor[T]) report(progress *Progress, processed int) {
	snap := progress.Add(processed)
	if p.onProgress != nil {
		p.onProgress(snap)
	}
}

// Map applies fn to every item, processing batches concurrently, and returns the
// results in input order. An empty input yields an empty result.
func Map[T, R any](
	ctx context.Context,
	p *Processor[T],
	items []T,
	fn func(ctx context.Context, item T) (R, error),
	maxConcurrency int,
) ([]R, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	if len(items) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(items))
	err := p.ProcessConcurrent(ctx, items, func(ctx context.Context, batch []T, index int) error {
		offset := index * p.batchSize
		for j, item := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, item)
			if err != nil {
				return fmt.Errorf("item %d: %w", offset+j, err)
			}
			results[offset+j] = r
		}
		return nil
	}, maxConcurrency)
	if err != nil {
		return nil, err
	}
	return results, nil
}
