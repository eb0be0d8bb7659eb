package tools

import "context"

// SearchResult is one hit from a web search provider
type SearchResult struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Published string `json:"published,omitempty"`
}

// Searcher defines the interface for web search providers
type Searcher interface {
	// Name returns the provider name
	Name() string

	// Search runs the query and returns up to count results
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
}
