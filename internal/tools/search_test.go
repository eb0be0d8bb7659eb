package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestBraveSearch(t *testing.T) {
	var gotQuery, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotToken = r.Header.Get("X-Subscription-Token")
		fmt.Fprint(w, `{"web": {"results": [
			{"url": "https://example.org/a", "title": "First", "description": "one", "age": "2 days ago"},
			{"url": "https://example.org/b", "title": "Second", "description": "two"}
		]}}`)
	}))
	defer server.Close()

	c := NewBraveClient("test-key", time.Second)
	c.SetBaseURL(server.URL)

	results, err := c.Search(context.Background(), "test query", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotQuery != "test query" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotToken != "test-key" {
		t.Errorf("token = %q", gotToken)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].URL != "https://example.org/a" || results[0].Title != "First" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[0].Published != "2 days ago" {
		t.Errorf("published = %q", results[0].Published)
	}
}

func TestBraveSearchRequiresKey(t *testing.T) {
	c := NewBraveClient("", time.Second)
	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("missing key must error")
	}
}

func TestBraveSearchRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewBraveClient("key", time.Second)
	c.SetBaseURL(server.URL)

	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("429 must surface as an error")
	}
}

const duckPage = `<html><body>
<div class="results">
  <div class="result results_links">
    <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.org%2Ffirst">First Result</a>
    <a class="result__snippet" href="/l/?uddg=https%3A%2F%2Fexample.org%2Ffirst">A snippet about the <b>first</b> result.</a>
  </div>
  <div class="result results_links">
    <a class="result__a" href="https://example.org/second">Second Result</a>
    <a class="result__snippet">Second snippet.</a>
  </div>
  <div class="result">
    <a class="result__a" href="">No URL here</a>
  </div>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "laksa origin" {
			t.Errorf("query = %q", q)
		}
		io.WriteString(w, duckPage)
	}))
	defer server.Close()

	c := NewDuckDuckGoClient("test-agent", time.Second)
	c.SetBaseURL(server.URL)

	results, err := c.Search(context.Background(), "laksa origin", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The block without a URL is dropped.
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].URL != "https://example.org/first" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "First Result" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[0].Snippet != "A snippet about the first result." {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
	if results[1].URL != "https://example.org/second" {
		t.Errorf("plain href mangled: %q", results[1].URL)
	}
}

func TestDuckDuckGoSearchRespectsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, duckPage)
	}))
	defer server.Close()

	c := NewDuckDuckGoClient("test-agent", time.Second)
	c.SetBaseURL(server.URL)

	results, err := c.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestResolveDuckDuckGoHref(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/l/?uddg=" + url.QueryEscape("https://example.org/page?x=1"), "https://example.org/page?x=1"},
		{"https://direct.example/page", "https://direct.example/page"},
		{"//protocol.relative/page", "https://protocol.relative/page"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolveDuckDuckGoHref(tt.in); got != tt.want {
			t.Errorf("resolveDuckDuckGoHref(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
