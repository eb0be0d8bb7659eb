package model

// VerdictCategory is the closed five-value graded outcome
type VerdictCategory string

const (
	VerdictTrue           VerdictCategory = "true"
	VerdictFalse          VerdictCategory = "false"
	VerdictPartiallyTrue  VerdictCategory = "partially_true"
	VerdictMissingContext VerdictCategory = "missing_context"
	VerdictCannotVerify   VerdictCategory = "cannot_verify"
)

// ValidVerdictCategory reports whether s is one of the five verdict values.
func ValidVerdictCategory(s string) bool {
	switch VerdictCategory(s) {
	case VerdictTrue, VerdictFalse, VerdictPartiallyTrue, VerdictMissingContext, VerdictCannotVerify:
		return true
	}
	return false
}

// VerdictAnalysis is the structured breakdown of the adjudicator's reasoning.
type VerdictAnalysis struct {
	AdvocateStrength string   `json:"advocate_strength"`
	SkepticStrength  string   `json:"skeptic_strength"`
	AgreedFacts      []string `json:"agreed_facts"`
	DisputedPoints   []string `json:"disputed_points"`
}

// VerdictMetadata records process statistics for the verification run.
type VerdictMetadata struct {
	ProcessingSeconds float64 `json:"processing_time_seconds"`
	RoundsCompleted   int     `json:"rounds_completed"`
	TotalSources      int     `json:"total_sources_checked"`
}

// Verdict is the terminal artifact of a debate session. Created exactly
// once by the adjudicator and never mutated afterward.
type Verdict struct {
	Category   VerdictCategory `json:"verdict"`
	Confidence float64         `json:"confidence_score"` // Always within [0,100]
	Summary    string          `json:"summary"`
	Analysis   VerdictAnalysis `json:"analysis"`
	Sources    []Source        `json:"sources_used"` // Deduplicated cited sources
	Metadata   VerdictMetadata `json:"metadata"`
}
