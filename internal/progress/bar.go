package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultInterval is how often the bar is redrawn.
	DefaultInterval = 100 * time.Millisecond

	barWidth   = 30
	labelWidth = 60
)

// Bar draws a single-line progress bar on w. The line is rewritten in place
// with a carriage return.
type Bar struct {
	w        io.Writer
	interval time.Duration
	bar      bprogress.Model
	label    lipgloss.Style

	latest   atomic.Pointer[Snapshot]
	drawn    *Snapshot
	lastLine int

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewBar starts the renderer goroutine. Close must be called to stop it.
func NewBar(w io.Writer, interval time.Duration) *Bar {
	if interval <= 0 {
		interval = DefaultInterval
	}
	b := &Bar{
		w:        w,
		interval: interval,
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(barWidth)),
		label:    lipgloss.NewStyle().Faint(true).MaxWidth(labelWidth),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// Report stores the snapshot for the next redraw.
func (b *Bar) Report(completed, total int, label string) {
	b.latest.Store(&Snapshot{Completed: completed, Total: total, Label: label})
}

// Close stops the renderer and draws the final state, if any was reported.
func (b *Bar) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		<-b.stopped
		if b.latest.Load() != nil {
			b.render()
			fmt.Fprintln(b.w)
		}
	})
}

func (b *Bar) loop() {
	defer close(b.stopped)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.render()
		}
	}
}

// render is only called from loop, or from Close after loop has exited.
func (b *Bar) render() {
	snap := b.latest.Load()
	if snap == nil || snap == b.drawn {
		return
	}
	b.drawn = snap

	line := b.View(*snap)
	pad := b.lastLine - lipgloss.Width(line)
	b.lastLine = lipgloss.Width(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(b.w, "\r%s%s", line, strings.Repeat(" ", pad))
}

// View renders snap as a single line.
func (b *Bar) View(snap Snapshot) string {
	counts := fmt.Sprintf("%d of %d", snap.Completed, snap.Total)
	return fmt.Sprintf("%s %-15s %s", b.bar.ViewAs(snap.Percent()), counts, b.label.Render(snap.Label))
}
