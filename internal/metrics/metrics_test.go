package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProbe(t *testing.T) {
	m := New()
	m.ObserveProbe(true, 10*time.Millisecond)
	m.ObserveProbe(false, 20*time.Millisecond)
	m.ObserveProbe(false, 30*time.Millisecond)

	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("passed")); got != 1 {
		t.Fatalf("expected 1 passed probe, got %v", got)
	}
	if got := testutil.ToFloat64(m.ProbesTotal.WithLabelValues("failed")); got != 2 {
		t.Fatalf("expected 2 failed probes, got %v", got)
	}
}

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(false, 3)
	if got := testutil.ToFloat64(m.LastRunPassed); got != 0 {
		t.Fatalf("expected last run gauge 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.ErrorsTotal); got != 3 {
		t.Fatalf("expected 3 errors, got %v", got)
	}
	m.ObserveRun(true, 0)
	if got := testutil.ToFloat64(m.LastRunPassed); got != 1 {
		t.Fatalf("expected last run gauge 1, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveProbe(true, time.Millisecond)
	path := filepath.Join(t.TempDir(), "urltester.prom")

	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `urltester_probes_total{result="passed"} 1`) {
		t.Fatalf("unexpected textfile content:\n%s", data)
	}
}
