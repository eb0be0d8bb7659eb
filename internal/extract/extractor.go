package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
	"github.com/veritaskit/veritas/internal/tools"
)

// Generator produces text completions for extraction prompts.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)
}

// PageFetcher retrieves readable article text for URL inputs.
type PageFetcher interface {
	FetchContent(ctx context.Context, rawURL string) (*tools.FetchResult, error)
}

// Extractor distills raw user input into a single verifiable claim with
// named entities and a topic category. Unlike the research phase, extraction
// failure is fatal: without a claim there is nothing to debate.
type Extractor struct {
	gen         Generator
	fetcher     PageFetcher
	callTimeout time.Duration
}

// NewExtractor creates a claim extractor. fetcher may be nil when URL input
// is not expected.
func NewExtractor(gen Generator, fetcher PageFetcher, callTimeout time.Duration) *Extractor {
	return &Extractor{gen: gen, fetcher: fetcher, callTimeout: callTimeout}
}

// claimPayload is the JSON shape the model is asked to emit.
type claimPayload struct {
	CoreClaim string `json:"core_claim"`
	Entities  struct {
		People        []string `json:"people"`
		Places        []string `json:"places"`
		Dates         []string `json:"dates"`
		Organizations []string `json:"organizations"`
	} `json:"entities"`
	Category string `json:"category"`
}

const extractSystemPrompt = `You extract the central verifiable factual claim from user input for fact-checking.

Rules:
- Distill exactly ONE core claim, a single declarative sentence that can be checked against evidence.
- Preserve the original meaning. Do not soften, strengthen, or editorialize.
- List named entities mentioned in the input.
- Classify the topic as one of: politics, health, economy, science, other.

Reply with ONLY a JSON object:
{"core_claim": "...", "entities": {"people": [...], "places": [...], "dates": [...], "organizations": [...]}, "category": "..."}`

// Extract builds a structured claim from text or from a URL's article body.
func (e *Extractor) Extract(ctx context.Context, raw string, kind model.InputKind) (model.Claim, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Claim{}, fmt.Errorf("empty input")
	}

	text := raw
	if kind == model.InputURL {
		if e.fetcher == nil {
			return model.Claim{}, fmt.Errorf("URL input not supported without a fetcher")
		}
		page, err := e.fetcher.FetchContent(ctx, raw)
		if err != nil {
			return model.Claim{}, fmt.Errorf("fetch %s: %w", raw, err)
		}
		text = page.Title + "\n\n" + page.Text
		if len(text) > 8000 {
			text = text[:8000]
		}
	}

	payload, err := e.generate(ctx, text)
	if err != nil {
		return model.Claim{}, err
	}

	coreClaim := strings.TrimSpace(payload.CoreClaim)
	if coreClaim == "" {
		return model.Claim{}, fmt.Errorf("no core claim in extraction output")
	}
	entities := model.Entities{
		People:        payload.Entities.People,
		Places:        payload.Entities.Places,
		Dates:         payload.Entities.Dates,
		Organizations: payload.Entities.Organizations,
	}
	return model.NewClaim(raw, coreClaim, entities, categorize(payload.Category, coreClaim)), nil
}

func (e *Extractor) generate(ctx context.Context, text string) (*claimPayload, error) {
	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	resp, err := e.gen.Generate(callCtx, llm.GenerateRequest{
		System: extractSystemPrompt,
		Prompt: "Input to analyze:\n\n" + text,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}
	return parseClaimPayload(resp.Text)
}

func parseClaimPayload(text string) (*claimPayload, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in extraction output")
	}

	var payload claimPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return &payload, nil
}

// categorize trusts the model's label when valid and falls back to keyword
// heuristics when it is missing or unknown.
func categorize(label, coreClaim string) model.ClaimCategory {
	if cat := model.ParseCategory(label); cat != model.CategoryOther {
		return cat
	}

	lower := strings.ToLower(coreClaim)
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return cat
			}
		}
	}
	return model.CategoryOther
}

var categoryKeywords = map[model.ClaimCategory][]string{
	model.CategoryPolitics: {"election", "government", "minister", "parliament", "president", "senate", "law ", "policy"},
	model.CategoryHealth:   {"vaccine", "virus", "disease", "drug", "cancer", "health", "medical", "hospital"},
	model.CategoryEconomy:  {"inflation", "gdp", "unemployment", "market", "tax", "economy", "price", "trade"},
	model.CategoryScience:  {"study", "research", "climate", "species", "physics", "experiment", "nasa", "scientist"},
}
