package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithStep sets the progress increment per tick. Values outside 1..100 are ignored.
func WithStep(step int) Option {
	return func(t *Tracker) {
		if step > 0 && step <= maxProgress {
			t.step = step
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func WithTicker(fn TickerFunc) Option {
	return func(t *Tracker) { t.ticker = fn }
}

func WithLogger(log *zap.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn runs with the tracker lock held and must not call back into the tracker.
func WithObserver(fn func(Snapshot)) Option {
	return func(t *Tracker) { t.observer = fn }
}

// Tracker drives one session's simulated translation: idle -> running ->
// complete, with progress advancing by a fixed step on every tick.
//
// Each run owns a context and a generation number. Selecting a new document,
// cancelling or closing bumps the generation and cancels the context, so a
// tick already in flight from an older run is dropped instead of applied.
type Tracker struct {
	mu          sync.Mutex
	id          string
	phase       Phase
	progress    int
	doc         *Document
	startedAt   *time.Time
	completedAt *time.Time
	gen         uint64
	cancel      context.CancelFunc
	closed      bool
	announced   bool // completion of the current run was reported by Poll
	wg          sync.WaitGroup

	step     int
	interval time.Duration
	ticker   TickerFunc
	observer func(Snapshot)
	log      *zap.Logger
	now      func() time.Time
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		phase:    PhaseIdle,
		step:     DefaultStep,
		interval: DefaultInterval,
		ticker:   realTicker,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SelectDocument replaces the current document and resets the job to idle.
// A running timer is stopped before the reset.
func (t *Tracker) SelectDocument(doc Document) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == PhaseRunning {
		t.log.Info("document replaced while running, cancelling",
			zap.String("job_id", t.id), zap.Int("progress", t.progress))
	}
	t.stopLocked()
	if doc.SelectedAt.IsZero() {
		doc.SelectedAt = t.now()
	}
	t.doc = &doc
	t.resetLocked()
	t.notifyLocked()
	return t.snapshotLocked()
}

// ClearDocument drops the document and resets the job.
func (t *Tracker) ClearDocument() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.doc = nil
	t.resetLocked()
	t.notifyLocked()
	return t.snapshotLocked()
}

// Start begins a run for the selected document.
func (t *Tracker) Start() (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.closed:
		return Snapshot{}, ErrClosed
	case t.doc == nil:
		return Snapshot{}, ErrNoDocument
	case t.phase == PhaseRunning:
		return Snapshot{}, ErrAlreadyRunning
	case t.phase == PhaseComplete:
		return Snapshot{}, ErrAlreadyComplete
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.gen++
	t.cancel = cancel
	t.id = uuid.New().String()
	t.phase = PhaseRunning
	t.progress = 0
	now := t.now()
	t.startedAt = &now
	t.completedAt = nil
	t.announced = false

	ticks, stop := t.ticker(t.interval)
	t.wg.Add(1)
	go t.run(ctx, t.gen, ticks, stop)

	t.log.Info("translation started",
		zap.String("job_id", t.id),
		zap.String("document", t.doc.Name),
		zap.Int("step", t.step),
		zap.Duration("interval", t.interval),
	)
	t.notifyLocked()
	return t.snapshotLocked(), nil
}

// Cancel stops a running job and returns it to idle with progress 0. The
// document stays selected so the run can be started again.
func (t *Tracker) Cancel() (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseRunning {
		return Snapshot{}, ErrNotRunning
	}
	t.log.Info("translation cancelled", zap.String("job_id", t.id), zap.Int("progress", t.progress))
	t.stopLocked()
	t.resetLocked()
	t.notifyLocked()
	return t.snapshotLocked(), nil
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Poll returns the current snapshot and reports whether this is the first
// Poll to see the current run complete.
func (t *Tracker) Poll() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	first := t.phase == PhaseComplete && !t.announced
	if first {
		t.announced = true
	}
	return t.snapshotLocked(), first
}

// Close stops any running timer and waits for its goroutine to exit. Start
// fails with ErrClosed afterwards.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.stopLocked()
	t.closed = true
	t.mu.Unlock()

	t.wg.Wait()
}

func (t *Tracker) run(ctx context.Context, gen uint64, ticks <-chan time.Time, stop func()) {
	defer t.wg.Done()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !t.advance(gen) {
				return
			}
		}
	}
}

// advance applies one tick and reports whether the run should keep ticking.
func (t *Tracker) advance(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || t.phase != PhaseRunning {
		return false
	}

	t.progress = min(t.progress+t.step, maxProgress)
	if t.progress == maxProgress {
		t.phase = PhaseComplete
		now := t.now()
		t.completedAt = &now
		t.cancel()
		t.cancel = nil
		t.log.Info("translation completed",
			zap.String("job_id", t.id),
			zap.Duration("elapsed", now.Sub(*t.startedAt)),
		)
	}
	t.notifyLocked()
	return t.phase == PhaseRunning
}

// stopLocked invalidates the current run, if any.
func (t *Tracker) stopLocked() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Tracker) resetLocked() {
	t.id = ""
	t.phase = PhaseIdle
	t.progress = 0
	t.startedAt = nil
	t.completedAt = nil
	t.announced = false
}

func (t *Tracker) notifyLocked() {
	if t.observer != nil {
		t.observer(t.snapshotLocked())
	}
}

func (t *Tracker) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:          t.id,
		Phase:       t.phase,
		Progress:    t.progress,
		StartedAt:   t.startedAt,
		CompletedAt: t.completedAt,
	}
	if t.doc != nil {
		d := *t.doc
		s.Document = &d
	}
	return s
}
