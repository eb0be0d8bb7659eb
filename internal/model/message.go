package model

// Role identifies who produced a debate message
type Role string

const (
	RoleAdvocate    Role = "advocate" // Defends the claim
	RoleSkeptic     Role = "skeptic"  // Challenges the claim
	RoleAdjudicator Role = "adjudicator"
)

// MessageKind classifies the purpose of a debate message
type MessageKind string

const (
	KindOpening      MessageKind = "opening"
	KindRebuttal     MessageKind = "rebuttal"
	KindDefense      MessageKind = "defense"
	KindVerdictInput MessageKind = "verdict_input"
)

// DebateMessage is one turn's output. Round 0 holds the initial research
// statements; rounds 1..N hold rebuttal exchanges. Messages are append-only:
// once produced they are never edited, only added to the session transcript.
type DebateMessage struct {
	Round      int         `json:"round"`
	Role       Role        `json:"role"`
	Kind       MessageKind `json:"kind"`
	Content    string      `json:"content"`
	Sources    []Source    `json:"sources"`
	Confidence float64     `json:"confidence"` // Always within [0,100]
}

// ClampConfidence forces a confidence value into the [0,100] range.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// SourceURLSet returns the set of URLs cited by the message.
func (m DebateMessage) SourceURLSet() map[string]bool {
	set := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		if s.URL != "" {
			set[s.URL] = true
		}
	}
	return set
}
