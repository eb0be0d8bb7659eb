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

// NewsAPIClient queries the NewsAPI.org everything endpoint for news
// coverage of a claim.
type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Articles []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewNewsAPIClient creates a NewsAPI client
func NewNewsAPIClient(apiKey string, timeout time.Duration) *NewsAPIClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &NewsAPIClient{
		apiKey:  apiKey,
		baseURL: "https://newsapi.org/v2/everything",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

// Search runs the query against NewsAPI, sorted by relevancy
func (c *NewsAPIClient) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("NewsAPI key is required")
	}
	if count <= 0 {
		count = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(count))
	params.Set("sortBy", "relevancy")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
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
		return nil, fmt.Errorf("newsapi rate limit exceeded")
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi error (%d): %s", resp.StatusCode, parsed.Message)
	}

	results := make([]SearchResult, 0, len(parsed.Articles))
	for _, item := range parsed.Articles {
		if item.URL == "" {
			continue
		}
		results = append(results, SearchResult{
			URL:       item.URL,
			Title:     item.Title,
			Snippet:   item.Description,
			Published: item.PublishedAt,
		})
	}
	return results, nil
}

// SetBaseURL overrides the API endpoint (used in tests)
func (c *NewsAPIClient) SetBaseURL(u string) {
	c.baseURL = u
}
