package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/selimozcann/URLTester/internal/metrics"
	"github.com/selimozcann/URLTester/internal/model"
	"github.com/selimozcann/URLTester/internal/progress"
)

// ErrAlreadyRun is logged when a Runner is asked to run twice.
var ErrAlreadyRun = errors.New("runner: already run")

// Prober tests a single record and reports whether it passed.
type Prober interface {
	Probe(ctx context.Context, rec *model.Record, errs model.ErrorSink) bool
}

type options struct {
	reporter progress.Reporter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	errs     *model.ErrorList
}

// Option configures a Runner or a Session.
type Option func(*options)

// WithReporter sets the progress reporter. It is closed when the run ends.
func WithReporter(r progress.Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithMetrics sets the metrics the probes are observed on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func withErrors(errs *model.ErrorList) Option {
	return func(o *options) { o.errs = errs }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reporter == nil {
		o.reporter = progress.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.errs == nil {
		o.errs = &model.ErrorList{}
	}
	return o
}

// Runner probes a list of records once, using the configured strategy.
type Runner struct {
	options
	strategy Strategy
	prober   Prober
	used     atomic.Bool
}

// New creates a new single-use Runner.
func New(strategy Strategy, prober Prober, opts ...Option) *Runner {
	if strategy == nil {
		strategy = Sequential{}
	}
	return &Runner{options: buildOptions(opts), strategy: strategy, prober: prober}
}

// Run probes every record exactly once and returns true if all passed. It
// returns only after every probe has completed.
func (r *Runner) Run(ctx context.Context, records []*model.Record) bool {
	if !r.used.CompareAndSwap(false, true) {
		r.logger.Error("refusing to reuse runner", zap.Error(ErrAlreadyRun))
		return false
	}
	defer r.reporter.Close()

	ex := &execution{
		prober:   r.prober,
		reporter: r.reporter,
		metrics:  r.metrics,
		errs:     r.errs,
		total:    len(records),
		passed:   true,
	}
	start := time.Now()
	r.strategy.dispatch(ctx, records, ex.step)

	passed := ex.result()
	r.logger.Info("run complete",
		zap.String("strategy", r.strategy.Name()),
		zap.Int("records", len(records)),
		zap.Bool("passed", passed),
		zap.Int("errors", r.errs.Len()),
		zap.Duration("duration", time.Since(start)))
	return passed
}

// Errors returns the messages collected by the probes.
func (r *Runner) Errors() []model.ErrorMessage { return r.errs.Messages() }

// execution is the step shared by every strategy.
type execution struct {
	prober   Prober
	reporter progress.Reporter
	metrics  *metrics.Metrics
	errs     *model.ErrorList
	total    int

	// mu guards completed and passed.
	mu        sync.Mutex
	completed int
	passed    bool
}

func (e *execution) step(ctx context.Context, rec *model.Record) {
	start := time.Now()
	ok := e.prober.Probe(ctx, rec, e.errs)
	e.metrics.ObserveProbe(ok, time.Since(start))

	e.mu.Lock()
	e.completed++
	if !ok {
		e.passed = false
	}
	e.reporter.Report(e.completed, e.total, rec.URL)
	e.mu.Unlock()
}

func (e *execution) result() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passed
}
