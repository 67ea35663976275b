// Package progress reports probe completion while a run is in flight.
//
// Report is called once per completed probe, possibly from many goroutines.
// Implementations must return quickly: rendering happens off the caller's
// goroutine and only the latest reported state is guaranteed to be shown.
package progress

import "sync"

// Reporter receives progress notifications.
type Reporter interface {
	Report(completed, total int, label string)
	Close()
}

// Snapshot is one reported progress state.
type Snapshot struct {
	Completed int
	Total     int
	Label     string
}

// Percent returns the completion ratio in the range [0, 1].
func (s Snapshot) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Completed) / float64(s.Total)
	if p > 1 {
		return 1
	}
	return p
}

// Nop renders nothing. It keeps the last reported snapshot for callers that
// want to inspect it.
type Nop struct {
	mu     sync.Mutex
	last   Snapshot
	calls  int
	closed bool
}

// NewNop returns a reporter without side effects.
func NewNop() *Nop { return &Nop{} }

func (n *Nop) Report(completed, total int, label string) {
	n.mu.Lock()
	n.last = Snapshot{Completed: completed, Total: total, Label: label}
	n.calls++
	n.mu.Unlock()
}

func (n *Nop) Close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
}

// Last returns the most recent snapshot.
func (n *Nop) Last() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Calls returns how many times Report was invoked.
func (n *Nop) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// Closed reports whether Close was called.
func (n *Nop) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}
