package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<html>
<head><title>Test Article</title><script>var tracking = true;</script></head>
<body>
<nav>Home | About | Contact</nav>
<header>Site header junk</header>
<article>
<p>This is the main body of the article and it contains enough prose to pass
the minimum readable length check applied by the fetcher.</p>
<p>A second paragraph adds even more substance to the extracted text.</p>
</article>
<footer>Copyright footer junk</footer>
<script>console.log("noise")</script>
</body>
</html>`

func TestFetchExtractsReadableText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("user agent = %q", ua)
		}
		fmt.Fprint(w, articlePage)
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "test-agent", 1<<20, nil)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.Title != "Test Article" {
		t.Errorf("title = %q", result.Title)
	}
	if !strings.Contains(result.Text, "main body of the article") {
		t.Error("article text missing")
	}
	for _, junk := range []string{"tracking", "Home | About", "Site header junk", "Copyright footer junk", "console.log"} {
		if strings.Contains(result.Text, junk) {
			t.Errorf("non-content text leaked into extraction: %q", junk)
		}
	}
	if result.FinalURL == "" {
		t.Error("final URL must be recorded")
	}
}

func TestFetchRejectsThinPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Thin</title></head><body><p>too short</p></body></html>")
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "test-agent", 1<<20, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("pages without readable content must be rejected")
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "test-agent", 1<<20, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("non-2xx status must be rejected")
	}
}

func TestFetchFollowsLimitedRedirects(t *testing.T) {
	var server *httptest.Server
	redirects := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if redirects < 5 {
			redirects++
			http.Redirect(w, r, server.URL+fmt.Sprintf("/hop%d", redirects), http.StatusFound)
			return
		}
		fmt.Fprint(w, articlePage)
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "test-agent", 1<<20, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("more than 3 redirects must be rejected")
	}
}

func TestRobotsCheckerDisallows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 2\n")
			return
		}
		fmt.Fprint(w, "page")
	}))
	defer server.Close()

	rc := NewRobotsChecker("test-agent", time.Second)

	allowed, _, err := rc.CanFetch(context.Background(), server.URL+"/public/page")
	if err != nil || !allowed {
		t.Errorf("public path: allowed=%v err=%v, want allowed", allowed, err)
	}

	allowed, delay, err := rc.CanFetch(context.Background(), server.URL+"/private/page")
	if err != nil {
		t.Fatalf("CanFetch: %v", err)
	}
	if allowed {
		t.Error("disallowed path reported as allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("crawl delay = %v, want 2s", delay)
	}
}

func TestRobotsCheckerMissingFileAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	rc := NewRobotsChecker("test-agent", time.Second)
	if !rc.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("missing robots.txt must allow fetching")
	}
}

func TestLimiterPerDomain(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("https://a.example/1") {
		t.Error("first request for a.example must pass")
	}
	if l.Allow("https://a.example/2") {
		t.Error("burst of 1 must block the immediate second request")
	}
	// A different domain has its own budget.
	if !l.Allow("https://b.example/1") {
		t.Error("b.example must not share a.example's budget")
	}
}

func TestLimiterCustomDomainRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetDomainRate("fast.example", 1000, 10)

	for i := 0; i < 5; i++ {
		if !l.Allow("https://fast.example/page") {
			t.Fatalf("request %d blocked despite custom burst", i)
		}
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)

	// Drain the single burst token.
	if err := l.Wait(context.Background(), "https://slow.example/1"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://slow.example/2"); err == nil {
		t.Fatal("Wait must fail when the context expires first")
	}
}
