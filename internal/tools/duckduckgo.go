package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DuckDuckGoClient scrapes the DuckDuckGo HTML endpoint. It needs no API
// key and serves as the fallback search provider.
type DuckDuckGoClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewDuckDuckGoClient creates a DuckDuckGo HTML search client
func NewDuckDuckGoClient(userAgent string, timeout time.Duration) *DuckDuckGoClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGoClient{
		baseURL:   "https://html.duckduckgo.com/html/",
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (c *DuckDuckGoClient) Name() string {
	return "duckduckgo"
}

// Search scrapes result blocks from the HTML response
func (c *DuckDuckGoClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if count <= 0 {
		count = 10
	}

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo error (%d)", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := parseDuckDuckGoResults(doc, count)
	return results, nil
}

// SetBaseURL overrides the endpoint (used in tests)
func (c *DuckDuckGoClient) SetBaseURL(u string) {
	c.baseURL = u
}

// parseDuckDuckGoResults walks the document collecting result blocks:
// each is a div with class "result" holding a.result__a (title+href) and
// a.result__snippet.
func parseDuckDuckGoResults(doc *html.Node, limit int) []SearchResult {
	var results []SearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			if r, ok := parseResultBlock(n); ok {
				results = append(results, r)
			}
			// Result blocks do not nest; no need to descend further.
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return results
}

func parseResultBlock(block *html.Node) (SearchResult, bool) {
	var result SearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				result.Title = nodeText(n)
				result.URL = resolveDuckDuckGoHref(attrValue(n, "href"))
			case hasClass(n, "result__snippet"):
				result.Snippet = nodeText(n)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(block)

	return result, result.URL != "" && result.Title != ""
}

// resolveDuckDuckGoHref unwraps the redirect links ("/l/?uddg=<encoded>")
// the HTML endpoint emits.
func resolveDuckDuckGoHref(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
