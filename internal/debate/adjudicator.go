package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
)

// Adjudicator evaluates the full transcript and produces the terminal
// verdict. It never returns an error: generation or parse failures yield a
// Cannot-Verify fallback with confidence 0.
type Adjudicator struct {
	gen Generator
	cfg model.DebateConfig
}

// NewAdjudicator creates an adjudicator backed by the given generator.
func NewAdjudicator(gen Generator, cfg model.DebateConfig) *Adjudicator {
	return &Adjudicator{gen: gen, cfg: cfg}
}

// verdictPayload is the JSON shape the model is asked to emit.
type verdictPayload struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence_score"`
	Summary    string  `json:"summary"`
	Analysis   struct {
		AdvocateStrength string   `json:"advocate_strength"`
		SkepticStrength  string   `json:"skeptic_strength"`
		AgreedFacts      []string `json:"agreed_facts"`
		DisputedPoints   []string `json:"disputed_points"`
	} `json:"analysis"`
}

// Adjudicate reads the whole transcript and selects exactly one of the five
// verdict categories. Confidence is clamped to [0,100]; a transcript with
// zero sources biases strongly toward Cannot-Verify.
func (a *Adjudicator) Adjudicate(ctx context.Context, claim model.Claim, transcript []model.DebateMessage, roundsCompleted int, startedAt time.Time) model.Verdict {
	cited := collectSources(transcript)
	metadata := model.VerdictMetadata{
		ProcessingSeconds: time.Since(startedAt).Seconds(),
		RoundsCompleted:   roundsCompleted,
		TotalSources:      len(cited),
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.gen.Generate(callCtx, llm.GenerateRequest{
		System: adjudicatorSystemPrompt,
		Prompt: a.buildPrompt(claim, transcript),
	})
	if err != nil {
		return fallbackVerdict(cited, metadata)
	}

	payload, err := parseVerdictPayload(resp.Text)
	if err != nil {
		return fallbackVerdict(cited, metadata)
	}

	category := model.VerdictCategory(strings.ToLower(payload.Verdict))
	if !model.ValidVerdictCategory(string(category)) {
		category = model.VerdictCannotVerify
	}

	confidence := model.ClampConfidence(payload.Confidence)

	// With no evidence anywhere in the transcript there is nothing to
	// ground a graded verdict on.
	if len(cited) == 0 {
		category = model.VerdictCannotVerify
		if confidence > 30 {
			confidence = 30
		}
	}

	return model.Verdict{
		Category:   category,
		Confidence: confidence,
		Summary:    payload.Summary,
		Analysis: model.VerdictAnalysis{
			AdvocateStrength: payload.Analysis.AdvocateStrength,
			SkepticStrength:  payload.Analysis.SkepticStrength,
			AgreedFacts:      payload.Analysis.AgreedFacts,
			DisputedPoints:   payload.Analysis.DisputedPoints,
		},
		Sources:  cited,
		Metadata: metadata,
	}
}

func (a *Adjudicator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.CallTimeout)
}

const adjudicatorSystemPrompt = `You are an impartial judge evaluating a structured debate on the veracity of a factual claim.

Review the arguments, evidence, and rebuttals from both the Advocate and the Skeptic, across the ENTIRE transcript. Assess the reliability of the cited sources: high-reliability sources (government, academic, major agencies) outweigh blogs and social media. Identify facts both sides assert (agreed) and points they contest (disputed).

Choose exactly one verdict:
- "true": substantially true, supported by strong independent evidence.
- "false": demonstrably false with credible disproving evidence.
- "partially_true": a kernel of truth, but misleading or exaggerated.
- "missing_context": technically accurate but misleading without context.
- "cannot_verify": insufficient credible evidence either way.

Reply with ONLY a JSON object in this shape:
{"verdict": "...", "confidence_score": 0-100, "summary": "...", "analysis": {"advocate_strength": "...", "skeptic_strength": "...", "agreed_facts": [...], "disputed_points": [...]}}

Ground confidence_score in the quality and convergence of the evidence. Be specific in the analysis fields.`

func (a *Adjudicator) buildPrompt(claim model.Claim, transcript []model.DebateMessage) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Claim under examination: %s\n\n", claim.CoreClaim)
	sb.WriteString(formatTranscript(transcript))
	fmt.Fprintf(&sb, "\nThe summary and analysis fields must be written in %s.\n", a.language())
	return sb.String()
}

func (a *Adjudicator) language() string {
	if a.cfg.Language == "" {
		return "English"
	}
	return a.cfg.Language
}

// parseVerdictPayload decodes the model output, tolerating markdown code
// fences and leading prose around the JSON object.
func parseVerdictPayload(text string) (*verdictPayload, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in verdict output")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	if payload.Verdict == "" {
		return nil, fmt.Errorf("verdict category missing")
	}
	return &payload, nil
}

func fallbackVerdict(cited []model.Source, metadata model.VerdictMetadata) model.Verdict {
	return model.Verdict{
		Category:   model.VerdictCannotVerify,
		Confidence: 0,
		Summary:    "The evaluation could not be completed. No verdict can be reached.",
		Analysis: model.VerdictAnalysis{
			AdvocateStrength: "n/a",
			SkepticStrength:  "n/a",
			AgreedFacts:      []string{},
			DisputedPoints:   []string{},
		},
		Sources:  cited,
		Metadata: metadata,
	}
}

// collectSources deduplicates every source cited across the transcript.
func collectSources(transcript []model.DebateMessage) []model.Source {
	var all []model.Source
	for _, msg := range transcript {
		all = append(all, msg.Sources...)
	}
	return model.DedupeSources(all)
}
