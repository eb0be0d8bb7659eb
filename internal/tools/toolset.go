package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/veritaskit/veritas/internal/cache"
	"github.com/veritaskit/veritas/internal/model"
)

// ErrRobotsDisallowed is returned when robots.txt forbids fetching a URL.
var ErrRobotsDisallowed = errors.New("fetch disallowed by robots.txt")

// Toolset bundles the external lookup capabilities every debate role and
// the extraction step share. All lookups route through the ToolCache so
// repeated queries within a TTL never hit the network twice.
type Toolset struct {
	cache         *cache.ToolCache
	searcher      Searcher
	fetcher       *Fetcher
	robots        *RobotsChecker
	limiter       *Limiter
	classifier    *ReliabilityClassifier
	resultsPer    int
	respectRobots bool
}

// NewToolset wires the tool layer from configuration. The ToolCache is
// constructed by the caller and passed in; it is shared, never global.
func NewToolset(cfg *model.Config, toolCache *cache.ToolCache) *Toolset {
	proxyFunc := NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)

	var searcher Searcher
	switch {
	case cfg.Search.Provider == "brave" && cfg.Search.BraveAPIKey != "":
		searcher = NewBraveClient(cfg.Search.BraveAPIKey, cfg.HTTP.Timeout)
	case cfg.Search.Provider == "newsapi" && cfg.Search.NewsAPIAPIKey != "":
		searcher = NewNewsAPIClient(cfg.Search.NewsAPIAPIKey, cfg.HTTP.Timeout)
	default:
		searcher = NewDuckDuckGoClient(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	return &Toolset{
		cache:         toolCache,
		searcher:      searcher,
		fetcher:       NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, proxyFunc),
		robots:        NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:       NewLimiter(cfg.HTTP.RatePerSec, cfg.HTTP.RateBurst),
		classifier:    NewReliabilityClassifier(&cfg.Reliability),
		resultsPer:    cfg.Debate.ResultsPerSearch,
		respectRobots: cfg.HTTP.RespectRobots,
	}
}

// NewToolsetWith builds a Toolset from explicit components (used in tests
// and by callers that need a custom searcher).
func NewToolsetWith(toolCache *cache.ToolCache, searcher Searcher, fetcher *Fetcher, classifier *ReliabilityClassifier, resultsPer int) *Toolset {
	if resultsPer <= 0 {
		resultsPer = 10
	}
	return &Toolset{
		cache:      toolCache,
		searcher:   searcher,
		fetcher:    fetcher,
		limiter:    NewLimiter(10, 10),
		classifier: classifier,
		resultsPer: resultsPer,
	}
}

// SearchWeb runs a web search through the cache. The query is normalized
// so trivially different spellings share an entry.
func (t *Toolset) SearchWeb(ctx context.Context, query string) ([]SearchResult, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	key := cache.Key("search", normalized+"|"+t.searcher.Name())

	payload, err := t.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		results, err := t.searcher.Search(ctx, query, t.resultsPer)
		if err != nil {
			return nil, err
		}
		return json.Marshal(results)
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var results []SearchResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("decode cached search: %w", err)
	}
	return results, nil
}

// FetchContent downloads a page through the cache, honoring robots.txt and
// per-domain rate limits on the miss path.
func (t *Toolset) FetchContent(ctx context.Context, rawURL string) (*FetchResult, error) {
	key := cache.Key("fetch", rawURL)

	payload, err := t.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		if t.respectRobots && t.robots != nil {
			allowed, crawlDelay, err := t.robots.CanFetch(ctx, rawURL)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, ErrRobotsDisallowed
			}
			if crawlDelay > 0 {
				select {
				case <-time.After(crawlDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}

		if err := t.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}

		result, err := t.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	var result FetchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached fetch: %w", err)
	}
	return &result, nil
}

// SourcesFromResults converts search hits into role-tagged sources with
// reliability classification applied.
func (t *Toolset) SourcesFromResults(results []SearchResult, role model.Role, limit int) []model.Source {
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}

	now := time.Now().UTC()
	sources := make([]model.Source, 0, limit)
	for _, r := range results[:limit] {
		if r.URL == "" {
			continue
		}
		sources = append(sources, model.Source{
			URL:         r.URL,
			Title:       r.Title,
			Excerpt:     r.Snippet,
			Reliability: t.classifier.Classify(r.URL),
			Timestamp:   &now,
			Role:        role,
		})
	}
	return sources
}

// CacheStats exposes the underlying cache hit/miss counters.
func (t *Toolset) CacheStats() (hits, misses uint64) {
	return t.cache.Stats()
}
