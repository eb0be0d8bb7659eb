package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Fetcher downloads pages and extracts their readable text
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// FetchResult contains the extracted page content and metadata
type FetchResult struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	FinalURL string `json:"final_url"`
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, proxyFunc func(*http.Request) (*url.URL, error)) *Fetcher {
	if proxyFunc == nil {
		proxyFunc = http.ProxyFromEnvironment
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch retrieves the page at rawURL and extracts its text content
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	limitedReader := io.LimitReader(resp.Body, f.maxBytes)
	doc, err := html.Parse(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}

	title, text := extractReadableText(doc)
	if len(text) < 80 {
		return nil, fmt.Errorf("insufficient text content (%d chars)", len(text))
	}

	return &FetchResult{
		Title:    title,
		Text:     text,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

// skip elements that never carry readable prose
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"form": true, "svg": true, "button": true,
}

// extractReadableText walks the document, returning the page title and the
// concatenated text of content-bearing elements.
func extractReadableText(doc *html.Node) (title, text string) {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "title" && title == "" {
				title = nodeText(n)
				return
			}
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteByte(' ')
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return title, strings.TrimSpace(sb.String())
}
