package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultMaxRedirects caps the redirect chain followed for a single probe.
const DefaultMaxRedirects = 50

// Config holds settings for the HTTP client.
type Config struct {
	Timeout      time.Duration
	Headers      http.Header
	UserAgent    string
	Insecure     bool
	MaxRedirects int
}

// headerRoundTripper wraps a base RoundTripper to inject headers on every
// request of a redirect chain.
type headerRoundTripper struct {
	base      http.RoundTripper
	headers   http.Header
	userAgent string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if h.base == nil {
		h.base = http.DefaultTransport
	}
	if len(h.headers) == 0 && h.userAgent == "" {
		return h.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	for k, vs := range h.headers {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if h.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", h.userAgent)
	}
	return h.base.RoundTrip(r)
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the base
// transport.
func (h *headerRoundTripper) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := h.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}

// New returns a client that follows redirects automatically, up to
// cfg.MaxRedirects hops. The final response exposes the resolved URL through
// resp.Request.URL.
func New(cfg Config) *http.Client {
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure},
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: &headerRoundTripper{
			base:      transport,
			headers:   cfg.Headers,
			userAgent: cfg.UserAgent,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
