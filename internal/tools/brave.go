package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// BraveClient queries the Brave Search API
type BraveClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type braveResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Age         string `json:"age,omitempty"`
		} `json:"results"`
	} `json:"web"`
}

// NewBraveClient creates a Brave Search client
func NewBraveClient(apiKey string, timeout time.Duration) *BraveClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &BraveClient{
		apiKey:  apiKey,
		baseURL: "https://api.search.brave.com/res/v1/web/search",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (c *BraveClient) Name() string {
	return "brave"
}

// Search runs the query against the Brave Search API
func (c *BraveClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Brave Search API key is required")
	}
	if count <= 0 {
		count = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("brave search rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave search error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Web.Results))
	for _, item := range parsed.Web.Results {
		results = append(results, SearchResult{
			URL:       item.URL,
			Title:     item.Title,
			Snippet:   item.Description,
			Published: item.Age,
		})
	}
	return results, nil
}

// SetBaseURL overrides the API endpoint (used in tests)
func (c *BraveClient) SetBaseURL(u string) {
	c.baseURL = u
}
