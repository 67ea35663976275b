package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/selimozcann/URLTester/internal/httpclient"
	"github.com/selimozcann/URLTester/internal/model"
	"github.com/selimozcann/URLTester/internal/probe"
	"github.com/selimozcann/URLTester/internal/progress"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// recorder keeps every progress notification.
type recorder struct {
	mu        sync.Mutex
	completed []int
	totals    []int
	labels    []string
	closed    int
}

func (r *recorder) Report(completed, total int, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, completed)
	r.totals = append(r.totals, total)
	r.labels = append(r.labels, label)
}

func (r *recorder) Close() {
	r.mu.Lock()
	r.closed++
	r.mu.Unlock()
}

func setupServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/elsewhere", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProber(t *testing.T, domain string) *probe.Prober {
	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second})
	t.Cleanup(client.CloseIdleConnections)
	return probe.New(client, domain, zaptest.NewLogger(t))
}

func mixedRecords(domain string) []*model.Record {
	return []*model.Record{
		{URL: "/old", ExpectedRedirect: domain + "/new"},
		{URL: "/blog", ExpectedRedirect: "/new"},
		{URL: "/moved", ExpectedRedirect: domain + "/new"},
		{URL: "/contact-us", ExpectedRedirect: "/contact"},
		{URL: "/old", ExpectedRedirect: domain + "/new"},
	}
}

func outcomes(records []*model.Record) []bool {
	out := make([]bool, len(records))
	for i, rec := range records {
		out[i] = rec.Failed
	}
	return out
}

func TestStrategiesAgree(t *testing.T) {
	srv := setupServer(t)

	seqRecords := mixedRecords(srv.URL)
	seq := New(Sequential{}, newProber(t, srv.URL))
	seqPassed := seq.Run(context.Background(), seqRecords)

	parRecords := mixedRecords(srv.URL)
	par := New(Parallel{}, newProber(t, srv.URL))
	parPassed := par.Run(context.Background(), parRecords)

	assert.False(t, seqPassed)
	assert.Equal(t, seqPassed, parPassed)
	assert.Equal(t, []bool{false, true, true, true, false}, outcomes(seqRecords))
	assert.Equal(t, outcomes(seqRecords), outcomes(parRecords))

	seqErrs := messageTexts(seq.Errors())
	parErrs := messageTexts(par.Errors())
	assert.Len(t, seqErrs, 2)
	assert.ElementsMatch(t, seqErrs, parErrs)

	for i := range seqRecords {
		assert.Equal(t, seqRecords[i].ActualRedirect, parRecords[i].ActualRedirect)
		assert.Equal(t, seqRecords[i].StatusCode, parRecords[i].StatusCode)
		if seqRecords[i].ErrorMessage != "" {
			assert.True(t, seqRecords[i].Failed)
		}
	}
}

func messageTexts(msgs []model.ErrorMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Message
	}
	return out
}

func TestAllPassed(t *testing.T) {
	srv := setupServer(t)
	for _, strategy := range []Strategy{Sequential{}, Parallel{Workers: 3}} {
		records := []*model.Record{
			{URL: "/old", ExpectedRedirect: srv.URL + "/new"},
			{URL: "/moved", ExpectedRedirect: srv.URL + "/elsewhere"},
		}
		r := New(strategy, newProber(t, srv.URL))
		assert.True(t, r.Run(context.Background(), records), strategy.Name())
		assert.Empty(t, r.Errors())
	}
}

func TestProgressTerminatesOnce(t *testing.T) {
	srv := setupServer(t)
	for _, strategy := range []Strategy{Sequential{}, Parallel{}, Parallel{Workers: 2}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			records := mixedRecords(srv.URL)
			rec := &recorder{}
			New(strategy, newProber(t, srv.URL), WithReporter(rec)).Run(context.Background(), records)

			require.Len(t, rec.completed, len(records))
			for i, c := range rec.completed {
				assert.Equal(t, i+1, c, "completed count must increase by one per notification")
				assert.Equal(t, len(records), rec.totals[i])
			}
			finals := 0
			for _, c := range rec.completed {
				if c == len(records) {
					finals++
				}
			}
			assert.Equal(t, 1, finals)
			assert.Equal(t, 1, rec.closed)
		})
	}
}

func TestSequentialReportsInFileOrder(t *testing.T) {
	srv := setupServer(t)
	records := mixedRecords(srv.URL)
	rec := &recorder{}
	New(Sequential{}, newProber(t, srv.URL), WithReporter(rec)).Run(context.Background(), records)

	assert.Equal(t, []string{"/old", "/blog", "/moved", "/contact-us", "/old"}, rec.labels)
}

// gauge is a Prober that tracks how many probes are in flight.
type gauge struct {
	inFlight atomic.Int32
	max      atomic.Int32
	calls    atomic.Int32
}

func (g *gauge) Probe(ctx context.Context, rec *model.Record, errs model.ErrorSink) bool {
	n := g.inFlight.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)
	g.calls.Add(1)
	return true
}

func TestParallelBoundedWorkers(t *testing.T) {
	records := make([]*model.Record, 20)
	for i := range records {
		records[i] = &model.Record{URL: "/x"}
	}
	g := &gauge{}
	assert.True(t, New(Parallel{Workers: 2}, g).Run(context.Background(), records))
	assert.Equal(t, int32(20), g.calls.Load())
	assert.LessOrEqual(t, g.max.Load(), int32(2))
}

func TestRunnerIsSingleUse(t *testing.T) {
	g := &gauge{}
	r := New(Sequential{}, g)
	records := []*model.Record{{URL: "/x"}}
	assert.True(t, r.Run(context.Background(), records))
	assert.False(t, r.Run(context.Background(), records))
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestEmptyRun(t *testing.T) {
	rec := &recorder{}
	assert.True(t, New(Parallel{}, &gauge{}, WithReporter(rec)).Run(context.Background(), nil))
	assert.Empty(t, rec.completed)
	assert.Equal(t, 1, rec.closed)
}

func TestSelect(t *testing.T) {
	assert.Equal(t, Sequential{}, Select(false, 4))
	assert.Equal(t, Parallel{Workers: 4}, Select(true, 4))
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "301test.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSessionNotFoundRows(t *testing.T) {
	srv := setupServer(t)
	path := writeCSV(t, "URL,expectedRedirect\n/blog,/new\n/contact-us,/contact\n")

	for _, strategy := range []Strategy{Sequential{}, Parallel{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			nop := progress.NewNop()
			s := NewSession(path, srv.URL, strategy, newProber(t, srv.URL), WithReporter(nop))
			require.NotEmpty(t, s.ID)
			require.True(t, s.Load())
			assert.Equal(t, StateLoaded, s.State())

			passed, err := s.Run(context.Background())
			require.NoError(t, err)
			assert.False(t, passed)
			assert.Equal(t, StateCompleted, s.State())

			const notFound = "remote server returned an error: (404) Not Found"
			assert.ElementsMatch(t, []string{
				"An error occurred with this url - /blog | " + notFound,
				"An error occurred with this url - /contact-us | " + notFound,
			}, messageTexts(s.Errors()))

			lines, err := s.Results()
			require.NoError(t, err)
			require.Len(t, lines, 3)
			assert.Equal(t, "1, Failed, 0, 0, /blog, /new, , "+notFound+" -- ", lines[1])
			assert.Equal(t, "2, Failed, 0, 0, /contact-us, /contact, , "+notFound+" -- ", lines[2])

			assert.Equal(t, progress.Snapshot{Completed: 2, Total: 2, Label: nop.Last().Label}, nop.Last())
			assert.True(t, nop.Closed())
		})
	}
}

func TestSessionLoadFailed(t *testing.T) {
	s := NewSession("badTextFile", "http://example.com", Sequential{}, &gauge{})

	assert.False(t, s.Load())
	assert.Equal(t, StateLoadFailed, s.State())
	msgs := s.Errors()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Specified file path, badTextFile, does not exist.", msgs[0].Message)
	assert.True(t, msgs[0].Fatal)

	_, err := s.Run(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestSessionStrictDecodeFailure(t *testing.T) {
	path := writeCSV(t, "URL,expectedRedirect\n/a,/b\n,/c\n")
	g := &gauge{}
	s := NewSession(path, "http://example.com", Sequential{}, g)

	assert.False(t, s.Load())
	assert.Equal(t, StateLoadFailed, s.State())
	require.Len(t, s.Errors(), 1)
	assert.False(t, s.Errors()[0].Fatal)
	assert.Equal(t, int32(0), g.calls.Load())
}

func TestSessionOutOfOrder(t *testing.T) {
	path := writeCSV(t, "URL,expectedRedirect\n/a,/b\n")
	s := NewSession(path, "http://example.com", Sequential{}, &gauge{})

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Results()
	assert.ErrorIs(t, err, ErrInvalidState)

	require.True(t, s.Load())
	assert.False(t, s.Load(), "a session cannot be loaded twice")

	_, err = s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, strings.Contains(err.Error(), "completed"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "load-failed", StateLoadFailed.String())
	assert.Equal(t, "State(42)", State(42).String())
}
