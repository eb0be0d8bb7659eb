package tools

import (
	"net/url"
	"strings"

	"github.com/veritaskit/veritas/internal/model"
)

// ReliabilityClassifier assigns a reliability tier to source URLs based on
// configured domain lists plus TLD heuristics.
type ReliabilityClassifier struct {
	highMap   map[string]bool
	mediumMap map[string]bool
}

// NewReliabilityClassifier creates a classifier from configuration
func NewReliabilityClassifier(cfg *model.ReliabilityConfig) *ReliabilityClassifier {
	if cfg == nil {
		cfg = &model.DefaultConfig().Reliability
	}

	c := &ReliabilityClassifier{
		highMap:   make(map[string]bool, len(cfg.HighDomains)),
		mediumMap: make(map[string]bool, len(cfg.MediumDomains)),
	}

	for _, domain := range cfg.HighDomains {
		c.highMap[strings.ToLower(domain)] = true
	}
	for _, domain := range cfg.MediumDomains {
		c.mediumMap[strings.ToLower(domain)] = true
	}

	return c
}

// Classify returns the reliability tier for a source URL. Unknown or
// unparseable URLs are low.
func (c *ReliabilityClassifier) Classify(rawURL string) model.Reliability {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.ReliabilityLow
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")

	// Exact match first, then registered-domain suffix match so
	// en.wikipedia.org hits the wikipedia.org entry.
	if c.matches(c.highMap, host) {
		return model.ReliabilityHigh
	}
	if c.matches(c.mediumMap, host) {
		return model.ReliabilityMedium
	}

	// Government and academic TLDs are high regardless of the lists.
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.Contains(host, ".gov.") || strings.Contains(host, ".edu.") {
		return model.ReliabilityHigh
	}

	return model.ReliabilityLow
}

func (c *ReliabilityClassifier) matches(set map[string]bool, host string) bool {
	if set[host] {
		return true
	}
	for i := strings.IndexByte(host, '.'); i > 0; i = strings.IndexByte(host, '.') {
		host = host[i+1:]
		if set[host] {
			return true
		}
	}
	return false
}
