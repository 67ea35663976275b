package httpclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHeaderInjection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("expected header injected")
		}
		if r.Header.Get("User-Agent") != "URLTester/test" {
			t.Errorf("expected user agent injected, got %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	cfg := Config{
		Timeout:   1 * time.Second,
		Headers:   http.Header{"X-Test": []string{"1"}},
		UserAgent: "URLTester/test",
	}
	client := New(cfg)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
}

func TestFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/301", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/302", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/302", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("expected header on redirected request")
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(Config{Timeout: 5 * time.Second, Headers: http.Header{"X-Test": []string{"1"}}})
	resp, err := client.Get(srv.URL + "/301")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected final 200, got %d", resp.StatusCode)
	}
	if got := resp.Request.URL.String(); got != srv.URL+"/final" {
		t.Fatalf("expected final URL %s, got %s", srv.URL+"/final", got)
	}
}

func TestMaxRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	client := New(Config{Timeout: 5 * time.Second, MaxRedirects: 3})
	_, err := client.Get(srv.URL + "/loop")
	if err == nil {
		t.Fatalf("expected redirect limit error")
	}
	if !strings.Contains(err.Error(), "stopped after 3 redirects") {
		t.Fatalf("unexpected error: %v", err)
	}
}
