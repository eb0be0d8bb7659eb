package model

import "time"

// Source is a reference to an external piece of evidence cited in a
// debate message. Immutable once created.
type Source struct {
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Excerpt     string      `json:"excerpt,omitempty"`
	Reliability Reliability `json:"reliability"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	Role        Role        `json:"role,omitempty"` // Role that produced this source
}

// Reliability represents the classification of source trustworthiness
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"   // Government, academic, major news agencies
	ReliabilityMedium Reliability = "medium" // Established publishers, encyclopedias
	ReliabilityLow    Reliability = "low"    // Blogs, social media, unknown domains
)

// Weight returns a numeric weight for aggregate reliability scoring.
func (r Reliability) Weight() int {
	switch r {
	case ReliabilityHigh:
		return 3
	case ReliabilityMedium:
		return 2
	default:
		return 1
	}
}

// DedupeSources returns the sources with duplicate URLs removed,
// preserving first-seen order.
func DedupeSources(sources []Source) []Source {
	seen := make(map[string]bool, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}
