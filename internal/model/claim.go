package model

import "github.com/google/uuid"

// Claim represents the normalized assertion under verification.
// It is created once by the extraction step and never mutated.
type Claim struct {
	ID        uuid.UUID     `json:"id"`
	RawInput  string        `json:"raw_input"`  // Original text or URL as submitted
	CoreClaim string        `json:"core_claim"` // Single normalized assertion
	Entities  Entities      `json:"entities"`
	Category  ClaimCategory `json:"category"`
}

// Entities holds the named entities extracted from the claim.
type Entities struct {
	People        []string `json:"people"`
	Places        []string `json:"places"`
	Dates         []string `json:"dates"`
	Organizations []string `json:"organizations"`
}

// Count returns the total number of extracted entities.
func (e Entities) Count() int {
	return len(e.People) + len(e.Places) + len(e.Dates) + len(e.Organizations)
}

// ClaimCategory classifies the subject area of a claim
type ClaimCategory string

const (
	CategoryPolitics ClaimCategory = "politics"
	CategoryHealth   ClaimCategory = "health"
	CategoryEconomy  ClaimCategory = "economy"
	CategoryScience  ClaimCategory = "science"
	CategoryOther    ClaimCategory = "other"
)

// ParseCategory maps a raw string to a ClaimCategory, defaulting to other.
func ParseCategory(s string) ClaimCategory {
	switch ClaimCategory(s) {
	case CategoryPolitics, CategoryHealth, CategoryEconomy, CategoryScience:
		return ClaimCategory(s)
	default:
		return CategoryOther
	}
}

// InputKind distinguishes the two accepted forms of raw input
type InputKind string

const (
	InputText InputKind = "text"
	InputURL  InputKind = "url"
)

// NewClaim builds a Claim with a fresh identifier.
func NewClaim(rawInput, coreClaim string, entities Entities, category ClaimCategory) Claim {
	return Claim{
		ID:        uuid.New(),
		RawInput:  rawInput,
		CoreClaim: coreClaim,
		Entities:  entities,
		Category:  category,
	}
}
