package debate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veritaskit/veritas/internal/cache"
	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
	"github.com/veritaskit/veritas/internal/tools"
)

// fakeSearcher records queries and serves canned results.
type fakeSearcher struct {
	results []tools.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, query string, count int) ([]tools.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newTestToolset(searcher tools.Searcher) *tools.Toolset {
	toolCache := cache.NewToolCache(100, time.Minute, nil)
	classifier := tools.NewReliabilityClassifier(&model.ReliabilityConfig{
		HighDomains:   []string{"who.int"},
		MediumDomains: []string{"wikipedia.org"},
	})
	return tools.NewToolsetWith(toolCache, searcher, nil, classifier, 10)
}

func debateCfg() model.DebateConfig {
	return model.DebateConfig{
		MaxRounds:        3,
		MaxSearches:      -1,
		CallTimeout:      time.Second,
		SourcesPerTurn:   3,
		ResultsPerSearch: 10,
	}
}

func searchHits() []tools.SearchResult {
	return []tools.SearchResult{
		{URL: "https://www.who.int/report", Title: "WHO report", Snippet: "official figures"},
		{URL: "https://en.wikipedia.org/wiki/Topic", Title: "Topic", Snippet: "background"},
		{URL: "https://random.blog/post", Title: "Hot take", Snippet: "opinions"},
	}
}

func TestAdvocateInitialStatement(t *testing.T) {
	searcher := &fakeSearcher{results: searchHits()}
	var captured llm.GenerateRequest
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		captured = req
		return &llm.GenerateResponse{Text: "The claim stands on solid ground."}, nil
	})

	adv := NewAdvocate(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "vaccines reduce mortality", model.Entities{}, model.CategoryHealth)

	msg, err := adv.InitialStatement(context.Background(), claim, nil)
	if err != nil {
		t.Fatalf("InitialStatement: %v", err)
	}

	if msg.Round != 0 || msg.Role != model.RoleAdvocate || msg.Kind != model.KindOpening {
		t.Errorf("message header = %d/%s/%s", msg.Round, msg.Role, msg.Kind)
	}
	if msg.Content != "The claim stands on solid ground." {
		t.Errorf("content = %q", msg.Content)
	}
	if len(msg.Sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(msg.Sources))
	}
	if msg.Sources[0].Reliability != model.ReliabilityHigh {
		t.Errorf("who.int classified %s, want high", msg.Sources[0].Reliability)
	}
	if msg.Sources[0].Role != model.RoleAdvocate {
		t.Errorf("source role = %s, want advocate", msg.Sources[0].Role)
	}
	if msg.Confidence != 85 {
		t.Errorf("confidence = %v, want 85 with sources", msg.Confidence)
	}

	if !strings.Contains(captured.System, "Advocate") {
		t.Error("system prompt must frame the advocate role")
	}
	if !strings.Contains(captured.Prompt, "vaccines reduce mortality") {
		t.Error("prompt must carry the claim")
	}
	if !strings.Contains(captured.Prompt, "who.int") {
		t.Error("prompt must carry the search results")
	}
}

func TestSkepticQueryBias(t *testing.T) {
	searcher := &fakeSearcher{results: searchHits()}
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: "I disagree."}, nil
	})

	sk := NewSkeptic(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "the earth is flat", model.Entities{}, model.CategoryScience)

	if _, err := sk.InitialStatement(context.Background(), claim, nil); err != nil {
		t.Fatalf("InitialStatement: %v", err)
	}
	if _, err := sk.Respond(context.Background(), claim, nil, 1, nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if len(searcher.queries) != 2 {
		t.Fatalf("queries = %v", searcher.queries)
	}
	if !strings.HasPrefix(searcher.queries[0], "fact check ") {
		t.Errorf("initial query = %q, want fact check bias", searcher.queries[0])
	}
	if !strings.HasPrefix(searcher.queries[1], "debunk ") {
		t.Errorf("rebuttal query = %q, want debunk bias", searcher.queries[1])
	}
}

func TestResearcherSearchFailureDegradesGracefully(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("search API down")}
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		if !strings.Contains(req.Prompt, "No search results") {
			t.Error("prompt must state that no results are available")
		}
		return &llm.GenerateResponse{Text: "Arguing from principle alone."}, nil
	})

	adv := NewAdvocate(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "claim", model.Entities{}, model.CategoryOther)

	msg, err := adv.InitialStatement(context.Background(), claim, nil)
	if err != nil {
		t.Fatalf("a search failure alone must not error: %v", err)
	}
	if len(msg.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(msg.Sources))
	}
	if msg.Confidence != 60 {
		t.Errorf("confidence = %v, want 60 without sources", msg.Confidence)
	}
}

func TestResearcherGenerationFailureReturnsDegradedMessage(t *testing.T) {
	searcher := &fakeSearcher{results: searchHits()}
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return nil, errors.New("model unavailable")
	})

	sk := NewSkeptic(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "claim", model.Entities{}, model.CategoryOther)

	msg, err := sk.Respond(context.Background(), claim, nil, 2, nil)
	if err == nil {
		t.Fatal("the informational error must be reported for logging")
	}

	// The message itself must still be appendable.
	if msg.Round != 2 || msg.Role != model.RoleSkeptic || msg.Kind != model.KindRebuttal {
		t.Errorf("degraded header = %d/%s/%s", msg.Round, msg.Role, msg.Kind)
	}
	if msg.Content != fallbackContent {
		t.Errorf("content = %q, want fallback text", msg.Content)
	}
	if msg.Confidence != 0 || len(msg.Sources) != 0 {
		t.Errorf("degraded message = conf %v, %d sources, want 0/0", msg.Confidence, len(msg.Sources))
	}
}

func TestResearcherSearchBudget(t *testing.T) {
	searcher := &fakeSearcher{results: searchHits()}
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: "position"}, nil
	})

	adv := NewAdvocate(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "claim", model.Entities{}, model.CategoryOther)

	ctx := context.Background()
	budget := NewSearchBudget(2)
	_, _ = adv.InitialStatement(ctx, claim, budget)
	_, _ = adv.Respond(ctx, claim, nil, 1, budget)
	msg, err := adv.Respond(ctx, claim, nil, 2, budget)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if len(searcher.queries) != 2 {
		t.Errorf("searches = %d, want budget of 2", len(searcher.queries))
	}
	// Over budget the role still argues, just without new evidence.
	if len(msg.Sources) != 0 {
		t.Errorf("sources after budget = %d, want 0", len(msg.Sources))
	}

	// A fresh budget opens the tap again; spend never sticks to the agent.
	msg, err = adv.Respond(ctx, claim, nil, 3, NewSearchBudget(2))
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(msg.Sources) == 0 {
		t.Error("a new budget must allow searching again")
	}
}

func TestSearchBudgetConcurrentTakes(t *testing.T) {
	budget := NewSearchBudget(5)

	var taken atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if budget.Take() {
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := taken.Load(); got != 5 {
		t.Errorf("granted = %d, want exactly the budget of 5", got)
	}
}

func TestSearchBudgetUnlimited(t *testing.T) {
	for _, b := range []*SearchBudget{nil, NewSearchBudget(0), NewSearchBudget(-1)} {
		for i := 0; i < 10; i++ {
			if !b.Take() {
				t.Fatal("unlimited budget must always grant")
			}
		}
	}
}

func TestResearcherRespondSeesTranscript(t *testing.T) {
	searcher := &fakeSearcher{results: searchHits()}
	var captured llm.GenerateRequest
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		captured = req
		return &llm.GenerateResponse{Text: "rebuttal"}, nil
	})

	sk := NewSkeptic(gen, newTestToolset(searcher), debateCfg())
	claim := model.NewClaim("raw", "claim", model.Entities{}, model.CategoryOther)
	transcript := []model.DebateMessage{
		{Round: 0, Role: model.RoleAdvocate, Kind: model.KindOpening, Content: "a very specific argument"},
	}

	if _, err := sk.Respond(context.Background(), claim, transcript, 1, nil); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(captured.Prompt, "a very specific argument") {
		t.Error("prompt must include the opponent's prior message")
	}
}
