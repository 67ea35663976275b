package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selimozcann/URLTester/internal/loader"
	"github.com/selimozcann/URLTester/internal/model"
	"github.com/selimozcann/URLTester/internal/output"
)

// ErrInvalidState is returned when a Session operation is called out of
// order.
var ErrInvalidState = errors.New("runner: invalid session state")

// State is the lifecycle stage of a Session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoadFailed
	StateLoaded
	StateProbing
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoadFailed:
		return "load-failed"
	case StateLoaded:
		return "loaded"
	case StateProbing:
		return "probing"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives one test run: load, probe, report. A Session cannot be
// restarted; create a new one per run.
type Session struct {
	ID string

	filePath string
	domain   string
	strategy Strategy
	prober   Prober
	opts     []Option
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	records []*model.Record
	errs    model.ErrorList
}

// NewSession creates a Session for filePath. domain may be empty when the
// file carries a domain per record.
func NewSession(filePath, domain string, strategy Strategy, prober Prober, opts ...Option) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		filePath: filePath,
		domain:   domain,
		strategy: strategy,
		prober:   prober,
		opts:     opts,
	}
	s.logger = buildOptions(opts).logger.With(zap.String("run_id", s.ID))
	return s
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) advance(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, s.state, from)
	}
	s.state = to
	return nil
}

func (s *Session) set(to State) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
}

// Load decodes the input file. It returns false if any error message was
// raised; Errors returns them.
func (s *Session) Load() bool {
	if err := s.advance(StateIdle, StateLoading); err != nil {
		s.logger.Error("load rejected", zap.Error(err))
		return false
	}

	records, msgs := loader.Load(s.filePath, s.domain)
	for _, m := range msgs {
		s.errs.Add(m)
	}
	if len(msgs) > 0 {
		s.logger.Warn("load failed",
			zap.String("file", s.filePath),
			zap.Int("errors", len(msgs)),
			zap.Bool("fatal", s.errs.HasFatal()))
		s.set(StateLoadFailed)
		return false
	}

	s.records = records
	s.logger.Info("file loaded", zap.String("file", s.filePath), zap.Int("records", len(records)))
	s.set(StateLoaded)
	return true
}

// Run probes every loaded record and returns true if all passed. opts are
// applied after the ones given to NewSession, so a reporter that should only
// exist once loading succeeded can be passed here.
func (s *Session) Run(ctx context.Context, opts ...Option) (bool, error) {
	if err := s.advance(StateLoaded, StateProbing); err != nil {
		return false, err
	}

	all := make([]Option, 0, len(s.opts)+len(opts)+2)
	all = append(all, s.opts...)
	all = append(all, opts...)
	all = append(all, WithLogger(s.logger), withErrors(&s.errs))
	r := New(s.strategy, s.prober, all...)
	passed := r.Run(ctx, s.records)
	r.metrics.ObserveRun(passed, s.errs.Len())

	s.set(StateCompleted)
	return passed, nil
}

// Results formats the report lines of a completed run.
func (s *Session) Results() ([]string, error) {
	if st := s.State(); st != StateCompleted {
		return nil, fmt.Errorf("%w: %s, want %s", ErrInvalidState, st, StateCompleted)
	}
	return output.Format(s.records), nil
}

// Records returns the loaded records. They must not be read while the
// session is probing.
func (s *Session) Records() []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Errors returns every message raised so far.
func (s *Session) Errors() []model.ErrorMessage { return s.errs.Messages() }
