package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixel-slider-mcp/internal/pixelate"
)

var (
	// ErrEmptyImage is returned by New for a nil source or a source without
	// pixels.
	ErrEmptyImage = errors.New("source image has no pixels")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrNotFailed is returned by Retry for a level whose slot is not Failed.
	ErrNotFailed = errors.New("level has not failed")

	// ErrLevelRange is returned for a level outside 0..MaxLevel.
	ErrLevelRange = errors.New("level out of range")

	errNilResult = errors.New("compute returned no image")
)

// ComputeFunc renders src with the given block size. It must not modify src.
type ComputeFunc func(src *image.NRGBA, blockSize int) (*image.NRGBA, error)

// Event reports that a level's slot has left the Computing state.
type Event struct {
	// Level is the level that finished.
	Level int `json:"level"`

	// Selected reports whether Level was the selection when the event was
	// emitted.
	Selected bool `json:"selected"`

	// Err is non-nil when the computation failed and the slot is Failed.
	Err error `json:"-"`
}

// Listener receives level events. See the package documentation for the
// delivery rules.
type Listener func(Event)

// Options configures an Engine. The zero value is a valid configuration:
// sweep strategy, one worker, DefaultMaxLevelCount levels, selection 0 and
// pixelate.Pixelate as compute function.
type Options struct {
	MaxLevelCount    int
	InitialSelection int
	Strategy         Strategy
	Workers          int
	NotifyAll        bool
	Compute          ComputeFunc
	Listener         Listener

	// Debug enables per-level log lines.
	Debug bool
}

// Engine is one progressive pixelation session.
type Engine struct {
	source *image.NRGBA
	plan   Plan
	opts   Options

	slots     []slot
	selection atomic.Int64

	computed atomic.Int64
	failed   atomic.Int64

	started atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a session for src.
//
// The source is converted to *image.NRGBA with its origin at (0,0) unless it
// already is an NRGBA image, in which case it is used as is and must not be
// modified afterwards. Slot 0 holds the source and is Ready; all other slots
// start Empty. No work starts before Start is called.
//
// An image narrower than 8 pixels yields a valid session with MaxLevel 0.
func New(src image.Image, opts Options) (*Engine, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, b.Dx(), b.Dy())
	}

	source, ok := src.(*image.NRGBA)
	if !ok {
		source = imaging.Clone(src)
	}

	if opts.Compute == nil {
		opts.Compute = func(src *image.NRGBA, blockSize int) (*image.NRGBA, error) {
			return pixelate.Pixelate(src, blockSize), nil
		}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategySweep
	}

	plan := NewPlan(b.Dx(), opts.MaxLevelCount)
	e := &Engine{
		source: source,
		plan:   plan,
		opts:   opts,
		slots:  make([]slot, plan.Levels()),
		done:   make(chan struct{}),
	}
	e.slots[0].img.Store(source)
	e.slots[0].state.Store(int32(StateReady))
	e.selection.Store(int64(plan.Clamp(opts.InitialSelection)))

	return e, nil
}

// Plan returns the level plan of the session.
func (e *Engine) Plan() Plan {
	return e.plan
}

// Source returns the normalized source image held in slot 0.
func (e *Engine) Source() *image.NRGBA {
	return e.source
}

// SetSelection records level as the level the viewer wants to see and
// returns the stored value. Out-of-range levels are clamped into
// 0..MaxLevel. No computation is triggered directly; workers pick the new
// selection up at their next step.
func (e *Engine) SetSelection(level int) int {
	level = e.plan.Clamp(level)
	e.selection.Store(int64(level))
	return level
}

// Selection returns the current selection.
func (e *Engine) Selection() int {
	return int(e.selection.Load())
}

// Cached returns the image of level if its slot is Ready. It never blocks.
// Once a level is Ready every call returns the same buffer.
func (e *Engine) Cached(level int) (*image.NRGBA, bool) {
	if level < 0 || level > e.plan.MaxLevel {
		return nil, false
	}
	img := e.slots[level].img.Load()
	return img, img != nil
}

// State returns the slot state of level. Out-of-range levels report
// StateEmpty.
func (e *Engine) State(level int) State {
	if level < 0 || level > e.plan.MaxLevel {
		return StateEmpty
	}
	return e.slots[level].load()
}

// Err returns the error of a Failed level and nil for any other state.
func (e *Engine) Err(level int) error {
	if e.State(level) != StateFailed {
		return nil
	}
	return e.slots[level].lastError()
}

// Start launches the background workers. The workers stop when every level
// has been handled, when ctx is done or when Cancel is called. Start may be
// called only once per Engine.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	run := e.sweep
	if e.opts.Strategy == StrategyNearest {
		run = e.nearest
	}

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx)
		}()
	}

	go func() {
		wg.Wait()
		cancel()
		close(e.done)
		if e.opts.Debug {
			log.Printf("engine: workers finished, %d computed, %d failed", e.computed.Load(), e.failed.Load())
		}
	}()

	return nil
}

// Cancel stops the workers at their next step. A level that is being
// computed when Cancel is called still finishes and is cached. Cancel is a
// no-op before Start and after the workers finished.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once all workers have returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until all workers have returned or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry recomputes a Failed level synchronously on the calling goroutine and
// returns the outcome. The listener is notified as for a worker computation.
func (e *Engine) Retry(level int) error {
	if level < 0 || level > e.plan.MaxLevel {
		return fmt.Errorf("%w: %d not in 0..%d", ErrLevelRange, level, e.plan.MaxLevel)
	}
	s := &e.slots[level]
	if !s.claim(StateFailed) {
		return fmt.Errorf("%w: level %d is %s", ErrNotFailed, level, s.load())
	}
	return e.compute(level)
}

// computeIfEmpty claims and computes level when its slot is Empty. It
// reports whether this call did the computation.
func (e *Engine) computeIfEmpty(level int) bool {
	if level < 1 || level > e.plan.MaxLevel {
		return false
	}
	if !e.slots[level].claim(StateEmpty) {
		return false
	}
	_ = e.compute(level)
	return true
}

// compute renders a claimed slot, publishes the result and notifies.
func (e *Engine) compute(level int) error {
	s := &e.slots[level]
	blockSize := e.plan.BlockSize(level)

	img, err := e.opts.Compute(e.source, blockSize)
	if err == nil && img == nil {
		err = errNilResult
	}
	if err != nil {
		err = fmt.Errorf("level %d (block size %d): %w", level, blockSize, err)
		s.fail(err)
		e.failed.Add(1)
		log.Printf("engine: %v", err)
		e.notify(Event{Level: level, Err: err})
		return err
	}

	s.publish(img)
	e.computed.Add(1)
	if e.opts.Debug {
		log.Printf("engine: level %d ready (block size %d)", level, blockSize)
	}
	e.notify(Event{Level: level})
	return nil
}

// notify delivers ev to the listener when it is still relevant.
func (e *Engine) notify(ev Event) {
	if e.opts.Listener == nil {
		return
	}
	ev.Selected = ev.Level == e.Selection()
	if ev.Err == nil && !ev.Selected && !e.opts.NotifyAll {
		return
	}
	e.opts.Listener(ev)
}
