package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingTransport remembers every host it is asked to contact.
type recordingTransport struct {
	mu    sync.Mutex
	hosts []string
	next  http.RoundTripper
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.hosts = append(rt.hosts, req.URL.Host)
	rt.mu.Unlock()
	return rt.next.RoundTrip(req)
}

func (rt *recordingTransport) calls() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.hosts...)
}

func newRecordingResolver(opts ...Option) (*Resolver, *recordingTransport) {
	rt := &recordingTransport{next: http.DefaultTransport}
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	return NewResolver(opts...), rt
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestResolveExplicitIsVerbatim(t *testing.T) {
	r, rt := newRecordingResolver()
	got := r.Resolve(context.Background(), "http://localhost:1/", "/uploads/icons/abc.png")
	if deref(got) != "/uploads/icons/abc.png" {
		t.Errorf("Resolve() = %s, want explicit value", deref(got))
	}
	if calls := rt.calls(); len(calls) != 0 {
		t.Errorf("expected no network calls, got %v", calls)
	}
}

func TestResolvePublicHost(t *testing.T) {
	r, rt := newRecordingResolver()
	got := r.Resolve(context.Background(), "https://example.com/some/page?q=1", "")
	want := "https://www.google.com/s2/favicons?domain=example.com&sz=32"
	if deref(got) != want {
		t.Errorf("Resolve() = %s, want %s", deref(got), want)
	}
	if calls := rt.calls(); len(calls) != 0 {
		t.Errorf("public host must not be fetched server-side, got %v", calls)
	}
}

func TestResolveUnparsable(t *testing.T) {
	r, _ := newRecordingResolver()
	for _, in := range []string{"://missing-scheme", "not a url", ""} {
		if got := r.Resolve(context.Background(), in, ""); got != nil {
			t.Errorf("Resolve(%q) = %s, want nil", in, *got)
		}
	}
}

func TestResolvePrivateScrape(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string // relative to the server URL, "" for nil
	}{
		{
			name: "rel before href",
			html: `<html><head><link rel="icon" type="image/png" href="/static/icon.png"></head></html>`,
			want: "/static/icon.png",
		},
		{
			name: "href before rel, shortcut icon",
			html: `<head><LINK href='fav.ico' rel='shortcut icon'></head>`,
			want: "/app/fav.ico",
		},
		{
			name: "no icon link",
			html: `<html><head><link rel="stylesheet" href="/app.css"></head></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUA string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.UserAgent()
				w.Write([]byte(tt.html))
			}))
			defer srv.Close()

			r, rt := newRecordingResolver()
			got := r.Resolve(context.Background(), srv.URL+"/app/", "")

			if tt.want == "" {
				if got != nil {
					t.Errorf("Resolve() = %s, want nil", *got)
				}
			} else if deref(got) != srv.URL+tt.want {
				t.Errorf("Resolve() = %s, want %s", deref(got), srv.URL+tt.want)
			}
			if gotUA != userAgent {
				t.Errorf("User-Agent = %q, want %q", gotUA, userAgent)
			}
			for _, host := range rt.calls() {
				if strings.Contains(host, "google") {
					t.Errorf("private host leaked to %s", host)
				}
			}
		})
	}
}

func TestResolvePrivateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `<link rel="icon" href="/x.png">`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, _ := newRecordingResolver()
	if got := r.Resolve(context.Background(), srv.URL, ""); got != nil {
		t.Errorf("Resolve() = %s, want nil on error status", *got)
	}
}

func TestResolvePrivateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	r, _ := newRecordingResolver(WithTimeout(50 * time.Millisecond))
	started := time.Now()
	got := r.Resolve(context.Background(), srv.URL, "")
	if got != nil {
		t.Errorf("Resolve() = %s, want nil on timeout", *got)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("Resolve() took %v, want it bounded by the timeout", elapsed)
	}
}

func TestResolveLocalhostUnreachableNeverUsesPublicService(t *testing.T) {
	r, rt := newRecordingResolver(WithTimeout(500 * time.Millisecond))
	got := r.Resolve(context.Background(), "http://localhost:9999/app", "")
	if got != nil {
		t.Errorf("Resolve() = %s, want nil", *got)
	}
	for _, host := range rt.calls() {
		if host != "localhost:9999" {
			t.Errorf("unexpected outbound call to %s", host)
		}
	}
}

func TestResolvePrivateRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/leave":
			http.Redirect(w, r, "http://public.example.com/landing", http.StatusFound)
		case "/old":
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		case "/new":
			w.Write([]byte(`<link rel="icon" href="/i.png">`))
		}
	}))
	defer srv.Close()

	r, rt := newRecordingResolver()

	if got := r.Resolve(context.Background(), srv.URL+"/leave", ""); got != nil {
		t.Errorf("Resolve() = %s, want nil when redirected off-network", *got)
	}
	for _, host := range rt.calls() {
		if strings.Contains(host, "public.example.com") {
			t.Errorf("followed redirect to %s", host)
		}
	}

	if got := r.Resolve(context.Background(), srv.URL+"/old", ""); deref(got) != srv.URL+"/i.png" {
		t.Errorf("Resolve() = %s, want redirect within the private host followed", deref(got))
	}
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, ref string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = ref
	return nil
}

func TestResolveUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<link rel="icon" href="/i.svg">`))
	}))
	defer srv.Close()

	cache := &mapCache{data: map[string]string{}}
	r, _ := newRecordingResolver(WithCache(cache))

	for i := 0; i < 3; i++ {
		if got := r.Resolve(context.Background(), srv.URL, ""); deref(got) != srv.URL+"/i.svg" {
			t.Fatalf("Resolve() = %s", deref(got))
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("page fetched %d times, want 1", n)
	}
}

func TestIsPrivateHost(t *testing.T) {
	tests := map[string]bool{
		"localhost":       true,
		"LOCALHOST":       true,
		"app.localhost":   true,
		"127.0.0.1":       true,
		"127.8.9.10":      true,
		"10.1.2.3":        true,
		"172.16.0.1":      true,
		"172.31.255.255":  true,
		"172.32.0.1":      false,
		"192.168.1.20":    true,
		"192.169.1.20":    false,
		"::1":             true,
		"8.8.8.8":         false,
		"example.com":     false,
		"localhost.co.uk": false,
	}
	for host, want := range tests {
		if got := IsPrivateHost(host); got != want {
			t.Errorf("IsPrivateHost(%q) = %v, want %v", host, got, want)
		}
	}
}
