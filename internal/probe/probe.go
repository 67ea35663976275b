package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selimozcann/URLTester/internal/model"
)

// drainLimit bounds how much of a response body is read so the connection
// can be reused.
const drainLimit = 64 << 10

// StatusError is returned for a final response with a 4xx or 5xx status.
// URL is the resolved address that answered, after any redirects.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote server returned an error: (%d) %s", e.Code, http.StatusText(e.Code))
}

// Prober tests one record at a time against a base domain.
type Prober struct {
	Client *http.Client
	Domain string
	Logger *zap.Logger
}

// New creates a new Prober. domain may be empty when every record carries
// its own domain.
func New(c *http.Client, domain string, logger *zap.Logger) *Prober {
	if c == nil {
		c = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{Client: c, Domain: domain, Logger: logger}
}

// Probe requests rec and records the outcome on it. Transport failures are
// recorded on rec and reported to errs; Probe itself never fails.
func (p *Prober) Probe(ctx context.Context, rec *model.Record, errs model.ErrorSink) (passed bool) {
	target := rec.Target(p.Domain)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.fail(rec, errs, fmt.Errorf("probe %s panicked: %v", target, r))
			passed = false
		}
	}()

	finalURL, status, err := p.get(ctx, target)
	if err != nil {
		p.fail(rec, errs, err)
		fields := []zap.Field{
			zap.String("target", target),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			fields = append(fields, zap.String("final", statusErr.URL), zap.Int("status", statusErr.Code))
		}
		p.Logger.Debug("probe failed", fields...)
		return false
	}

	rec.StatusCode = status
	rec.ActualRedirect = finalURL
	rec.Failed = rec.ActualRedirect != rec.ExpectedRedirect

	p.Logger.Debug("probe complete",
		zap.String("target", target),
		zap.String("actual", finalURL),
		zap.Int("status", status),
		zap.Bool("passed", !rec.Failed),
		zap.Duration("duration", time.Since(start)))
	return !rec.Failed
}

func (p *Prober) get(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	finalURL := resp.Request.URL.String()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", 0, &StatusError{Code: resp.StatusCode, URL: finalURL}
	}
	return finalURL, resp.StatusCode, nil
}

func (p *Prober) fail(rec *model.Record, errs model.ErrorSink, err error) {
	text, cause := Describe(err)
	rec.StatusCode = 0
	rec.ActualRedirect = ""
	rec.Failed = true
	rec.ErrorMessage = text + " -- " + cause
	if errs != nil {
		errs.Add(model.ErrorMessage{
			Message: fmt.Sprintf("An error occurred with this url - %s | %s", rec.URL, text),
		})
	}
}

// Describe splits err into its message and the message of the error it
// wraps, if any.
func Describe(err error) (text, cause string) {
	text = err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		cause = inner.Error()
	}
	return text, cause
}
