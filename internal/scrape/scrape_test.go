package scrape

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetch_HTMLPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "botverse-scraper/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Pricing</title></head>
<body><h1>Plans</h1><p>Free and Pro.</p><script>track()</script></body></html>`))
	}))
	defer srv.Close()

	got, err := New(testLogger()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Title != "Pricing" {
		t.Errorf("Title = %q, want Pricing", got.Title)
	}
	if !strings.Contains(got.Text, "Free and Pro.") {
		t.Errorf("Text = %q", got.Text)
	}
	if strings.Contains(got.Text, "track()") {
		t.Errorf("script leaked into text: %q", got.Text)
	}
}

func TestFetch_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("just words\n"))
	}))
	defer srv.Close()

	got, err := New(testLogger()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got.Text != "just words" {
		t.Errorf("Text = %q", got.Text)
	}
	// Plain pages have no <title>; the URL stands in.
	if got.Title != srv.URL {
		t.Errorf("Title = %q, want %q", got.Title, srv.URL)
	}
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(testLogger()).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch() expected error for 404")
	}
}
