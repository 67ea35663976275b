package model

import "sync"

// Record is a single redirect test loaded from the input file.
// Its position in the loaded slice is its identity; the report numbers rows
// from 1 in file order.
type Record struct {
	URL              string `json:"url"`
	BaseDomain       string `json:"domain,omitempty"`
	ExpectedRedirect string `json:"expected_redirect"`
	ActualRedirect   string `json:"actual_redirect,omitempty"`
	StatusCode       int    `json:"status_code"`
	Failed           bool   `json:"failed"`
	ErrorMessage     string `json:"error,omitempty"`
}

// EffectiveDomain returns the domain used to build the request URL for rec.
// A per-record domain is only populated when no global domain was supplied.
func EffectiveDomain(rec *Record, globalDomain string) string {
	if rec.BaseDomain != "" {
		return rec.BaseDomain
	}
	return globalDomain
}

// Target concatenates the effective domain and the record URL. No
// normalization is performed.
func (r *Record) Target(globalDomain string) string {
	return EffectiveDomain(r, globalDomain) + r.URL
}

// Passed reports whether the record completed a probe without failing.
func (r *Record) Passed() bool { return !r.Failed }

// ErrorMessage is a user facing error raised while loading or probing.
// Fatal messages abort the load phase.
type ErrorMessage struct {
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// ErrorSink receives error messages from loaders and probes.
type ErrorSink interface {
	Add(msg ErrorMessage)
}

// ErrorList is an append-only, concurrency safe collection of messages.
type ErrorList struct {
	mu   sync.Mutex
	msgs []ErrorMessage
}

// Add appends msg to the list.
func (l *ErrorList) Add(msg ErrorMessage) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

// Messages returns a copy of the collected messages in append order.
func (l *ErrorList) Messages() []ErrorMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ErrorMessage(nil), l.msgs...)
}

// Len returns the number of collected messages.
func (l *ErrorList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// HasFatal reports whether any collected message is fatal.
func (l *ErrorList) HasFatal() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.msgs {
		if m.Fatal {
			return true
		}
	}
	return false
}
