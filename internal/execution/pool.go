package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sip-creator/internal/config"
	"sip-creator/internal/logger"
	"sip-creator/internal/metrics"
	"sip-creator/internal/record"
)

// Outcome is one record leaving the pool. The last outcome of a run has
// Poison set and no Result.
type Outcome struct {
	Record *record.Record
	Result *Result
	Poison bool
}

// Pool maps a record stream on a fixed number of workers. A Pool runs once.
type Pool struct {
	Workers   int
	QueueSize int
	// ShutdownTimeout bounds Shutdown.
	ShutdownTimeout time.Duration
	Metrics         *metrics.Metrics
	Log             *logger.Logger

	runID       string
	cancel      context.CancelFunc
	workersDone chan struct{}
	abandon     chan struct{}
	abandonOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewPool sizes a pool from cfg.
func NewPool(cfg config.ExecutionConfig, m *metrics.Metrics, log *logger.Logger) *Pool {
	return &Pool{
		Workers:         cfg.Workers,
		QueueSize:       cfg.QueueSize,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Metrics:         m,
		Log:             log,
	}
}

// RunID identifies the run in logs. It is set by Start.
func (p *Pool) RunID() string {
	return p.runID
}

// Start launches the workers. Send records on in and finish with
// record.Poison() (or close in); every record yields one Outcome, followed by
// exactly one poison Outcome, after which out is closed.
func (p *Pool) Start(ctx context.Context, runner *Runner) (chan<- *record.Record, <-chan Outcome) {
	workers := max(p.Workers, 1)
	queue := max(p.QueueSize, 0)

	if p.Log == nil {
		p.Log = logger.Discard()
	}

	p.runID = uuid.NewString()
	p.workersDone = make(chan struct{})
	p.abandon = make(chan struct{})

	log := p.Log.WithRun(p.runID)
	log.WithField("workers", workers).Info("starting mapping run")

	ctx, p.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	in := make(chan *record.Record, queue)
	out := make(chan Outcome, queue)
	work := make(chan *record.Record)

	g.Go(func() error {
		defer close(work)

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case rec, ok := <-in:
				if !ok || rec.IsPoison() {
					return nil
				}

				select {
				case work <- rec:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	for range workers {
		g.Go(func() error {
			for rec := range work {
				done := p.Metrics.Begin()
				res := runner.Execute(gctx, rec)
				done(res.Outcome())

				select {
				case out <- Outcome{Record: rec, Result: res}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			return nil
		})
	}

	go func() {
		err := g.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}

		p.mu.Lock()
		p.err = err
		p.mu.Unlock()

		close(p.workersDone)

		poison := Outcome{Record: record.Poison(), Poison: true}

		select {
		case out <- poison:
		default:
			select {
			case out <- poison:
			case <-p.abandon:
				log.Warn("run stopped before the final outcome was read")
			}
		}

		close(out)
		log.Info("mapping run finished")
	}()

	return in, out
}

// Err returns the error that ended the run, if any. Cancellation is not an
// error.
func (p *Pool) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Stop cancels the run and waits up to timeout for the workers to return.
// Outcomes not yet read may be dropped.
func (p *Pool) Stop(timeout time.Duration) error {
	if p.cancel == nil {
		return nil
	}

	p.cancel()
	defer p.abandonOnce.Do(func() { close(p.abandon) })

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.workersDone:
		return p.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrStopTimeout, timeout)
	}
}

// Shutdown stops the run with the configured ShutdownTimeout.
func (p *Pool) Shutdown() error {
	return p.Stop(p.ShutdownTimeout)
}
