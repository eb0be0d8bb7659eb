package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
	"github.com/veritaskit/veritas/internal/tools"
)

// Generator is the slice of llm.Provider the debate engine consumes.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)
}

// Researcher is the shared contract of the two evidence-gathering roles.
// Implementations never return errors past their boundary: on any failure
// of search or generation they produce a degraded message (empty sources,
// confidence 0) and report the cause through the second return value so
// the caller can log it.
type Researcher interface {
	Role() model.Role
	InitialStatement(ctx context.Context, claim model.Claim, budget *SearchBudget) (model.DebateMessage, error)
	Respond(ctx context.Context, claim model.Claim, transcript []model.DebateMessage, round int, budget *SearchBudget) (model.DebateMessage, error)
}

// SearchBudget caps how many searches one role may run within a single
// session. The controller creates a fresh budget per role per run, so a
// reused researcher never inherits spend from an earlier session. Safe for
// concurrent use.
type SearchBudget struct {
	mu   sync.Mutex
	max  int
	used int
}

// NewSearchBudget returns a budget allowing max searches. A non-positive
// max means unlimited.
func NewSearchBudget(max int) *SearchBudget {
	return &SearchBudget{max: max}
}

// Take reserves one search, reporting false once the budget is spent. A nil
// budget is unlimited.
func (b *SearchBudget) Take() bool {
	if b == nil || b.max <= 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

const fallbackContent = "Unable to contribute to this turn due to a technical problem reaching external services."

// queryBias is the only structural difference between the two roles: which
// queries they prefer when gathering evidence.
type queryBias struct {
	initial  string // format with the core claim
	rebuttal string
}

var (
	advocateBias = queryBias{initial: "%s", rebuttal: "%s evidence"}
	skepticBias  = queryBias{initial: "fact check %s", rebuttal: "debunk %s"}
)

// agent implements Researcher for both roles.
type agent struct {
	role        model.Role
	respondKind model.MessageKind
	bias        queryBias
	gen         Generator
	tools       *tools.Toolset
	cfg         model.DebateConfig
}

// NewAdvocate creates the role that defends the claim with
// authoritative-source-biased research.
func NewAdvocate(gen Generator, toolset *tools.Toolset, cfg model.DebateConfig) Researcher {
	return &agent{
		role:        model.RoleAdvocate,
		respondKind: model.KindDefense,
		bias:        advocateBias,
		gen:         gen,
		tools:       toolset,
		cfg:         cfg,
	}
}

// NewSkeptic creates the role that challenges the claim with
// contradiction-biased research.
func NewSkeptic(gen Generator, toolset *tools.Toolset, cfg model.DebateConfig) Researcher {
	return &agent{
		role:        model.RoleSkeptic,
		respondKind: model.KindRebuttal,
		bias:        skepticBias,
		gen:         gen,
		tools:       toolset,
		cfg:         cfg,
	}
}

func (a *agent) Role() model.Role {
	return a.role
}

// InitialStatement produces the round-0 opening backed by this role's
// preferred searches.
func (a *agent) InitialStatement(ctx context.Context, claim model.Claim, budget *SearchBudget) (model.DebateMessage, error) {
	sources, resultsBlock := a.research(ctx, fmt.Sprintf(a.bias.initial, claim.CoreClaim), budget)

	prompt := a.buildPrompt(claim, resultsBlock, nil)
	content, err := a.generate(ctx, prompt)
	if err != nil {
		return a.degraded(0, model.KindOpening), fmt.Errorf("%s opening: %w", a.role, err)
	}

	return model.DebateMessage{
		Round:      0,
		Role:       a.role,
		Kind:       model.KindOpening,
		Content:    content,
		Sources:    sources,
		Confidence: a.confidence(sources),
	}, nil
}

// Respond produces a rebuttal (Skeptic) or defense (Advocate) addressing
// the opponent's latest message.
func (a *agent) Respond(ctx context.Context, claim model.Claim, transcript []model.DebateMessage, round int, budget *SearchBudget) (model.DebateMessage, error) {
	sources, resultsBlock := a.research(ctx, fmt.Sprintf(a.bias.rebuttal, claim.CoreClaim), budget)

	prompt := a.buildPrompt(claim, resultsBlock, transcript)
	content, err := a.generate(ctx, prompt)
	if err != nil {
		return a.degraded(round, a.respondKind), fmt.Errorf("%s round %d: %w", a.role, round, err)
	}

	return model.DebateMessage{
		Round:      round,
		Role:       a.role,
		Kind:       a.respondKind,
		Content:    content,
		Sources:    sources,
		Confidence: a.confidence(sources),
	}, nil
}

// research runs one budgeted search. Lookup failures are contained here:
// the turn proceeds without sources rather than aborting.
func (a *agent) research(ctx context.Context, query string, budget *SearchBudget) ([]model.Source, string) {
	if !budget.Take() {
		return nil, ""
	}

	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	results, err := a.tools.SearchWeb(callCtx, query)
	if err != nil {
		return nil, ""
	}

	sources := a.tools.SourcesFromResults(results, a.role, a.cfg.SourcesPerTurn)
	return sources, formatResults(results, a.cfg.SourcesPerTurn)
}

func (a *agent) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.gen.Generate(callCtx, llm.GenerateRequest{
		System: a.systemPrompt(),
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	if resp.Text == "" {
		return "", fmt.Errorf("empty generation from provider")
	}
	return resp.Text, nil
}

func (a *agent) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.CallTimeout)
}

func (a *agent) degraded(round int, kind model.MessageKind) model.DebateMessage {
	return model.DebateMessage{
		Round:      round,
		Role:       a.role,
		Kind:       kind,
		Content:    fallbackContent,
		Sources:    nil,
		Confidence: 0,
	}
}

func (a *agent) confidence(sources []model.Source) float64 {
	if len(sources) == 0 {
		return 60 // position stated without evidence backing
	}
	return 85
}

func (a *agent) systemPrompt() string {
	if a.role == model.RoleAdvocate {
		return "You are the Advocate in a structured fact-checking debate. " +
			"You defend the claim under examination using the strongest available " +
			"evidence, preferring institutional and authoritative sources. " +
			"Argue persuasively but never invent sources."
	}
	return "You are the Skeptic in a structured fact-checking debate. " +
		"You challenge the claim under examination, hunting for contradictions, " +
		"missing context, and weaknesses in the opposing argument. " +
		"Argue critically but never invent sources."
}

func (a *agent) buildPrompt(claim model.Claim, resultsBlock string, transcript []model.DebateMessage) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Claim: %s\nCategory: %s\n\n", claim.CoreClaim, claim.Category)

	if resultsBlock != "" {
		fmt.Fprintf(&sb, "Search results:\n%s\n\n", resultsBlock)
	} else {
		sb.WriteString("No search results are available for this turn.\n\n")
	}

	if len(transcript) > 0 {
		sb.WriteString("Debate so far:\n")
		sb.WriteString(formatTranscript(transcript))
		sb.WriteString("\n")
		if a.role == model.RoleSkeptic {
			sb.WriteString("Directly address the specific points in the Advocate's latest message.\n")
		} else {
			sb.WriteString("Directly address the specific points in the Skeptic's latest message.\n")
		}
	} else {
		sb.WriteString("This is your opening statement. State your position and the key points you will argue.\n")
	}

	sb.WriteString("Weave the evidence into a narrative rather than listing facts.\n")
	fmt.Fprintf(&sb, "Respond in %s.\n", a.language())

	return sb.String()
}

func (a *agent) language() string {
	if a.cfg.Language == "" {
		return "English"
	}
	return a.cfg.Language
}

func formatResults(results []tools.SearchResult, limit int) string {
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}
	var sb strings.Builder
	for _, r := range results[:limit] {
		fmt.Fprintf(&sb, "- [%s](%s): %s\n", r.Title, r.URL, r.Snippet)
	}
	return sb.String()
}

func formatTranscript(transcript []model.DebateMessage) string {
	var sb strings.Builder
	for _, msg := range transcript {
		fmt.Fprintf(&sb, "Round %d - %s (%s):\n%s\n", msg.Round, msg.Role, msg.Kind, msg.Content)
		if len(msg.Sources) > 0 {
			sb.WriteString("Sources:\n")
			for _, src := range msg.Sources {
				fmt.Fprintf(&sb, "- %s: %s (reliability: %s)\n", src.Title, src.URL, src.Reliability)
			}
		}
		sb.WriteString("--------------------\n")
	}
	return sb.String()
}
