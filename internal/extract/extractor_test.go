package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
	"github.com/veritaskit/veritas/internal/tools"
)

type generatorFunc func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error)

func (f generatorFunc) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return f(ctx, req)
}

type fakeFetcher struct {
	result *tools.FetchResult
	err    error
	url    string
}

func (f *fakeFetcher) FetchContent(ctx context.Context, rawURL string) (*tools.FetchResult, error) {
	f.url = rawURL
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

const extractionJSON = `{
	"core_claim": "The Colosseum was completed in 80 AD",
	"entities": {"people": ["Titus"], "places": ["Rome"], "dates": ["80 AD"], "organizations": []},
	"category": "other"
}`

func TestExtractFromText(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: "```json\n" + extractionJSON + "\n```"}, nil
	})
	e := NewExtractor(gen, nil, time.Second)

	claim, err := e.Extract(context.Background(), "i heard the colosseum was finished in 80 ad??", model.InputText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if claim.CoreClaim != "The Colosseum was completed in 80 AD" {
		t.Errorf("core claim = %q", claim.CoreClaim)
	}
	if claim.RawInput != "i heard the colosseum was finished in 80 ad??" {
		t.Errorf("raw input = %q", claim.RawInput)
	}
	if claim.Entities.Count() != 3 {
		t.Errorf("entity count = %d, want 3", claim.Entities.Count())
	}
	if claim.Category != model.CategoryOther {
		t.Errorf("category = %s, want other", claim.Category)
	}
	if claim.ID.String() == "" {
		t.Error("claim must carry an identifier")
	}
}

func TestExtractFromURL(t *testing.T) {
	fetcher := &fakeFetcher{result: &tools.FetchResult{
		Title: "History of the Colosseum",
		Text:  "The amphitheatre was completed in 80 AD under Titus.",
	}}
	var captured llm.GenerateRequest
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		captured = req
		return &llm.GenerateResponse{Text: extractionJSON}, nil
	})
	e := NewExtractor(gen, fetcher, time.Second)

	claim, err := e.Extract(context.Background(), "https://history.example/colosseum", model.InputURL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if fetcher.url != "https://history.example/colosseum" {
		t.Errorf("fetched %q", fetcher.url)
	}
	if !strings.Contains(captured.Prompt, "completed in 80 AD under Titus") {
		t.Error("prompt must carry the fetched article text")
	}
	if claim.RawInput != "https://history.example/colosseum" {
		t.Errorf("raw input = %q, want the URL", claim.RawInput)
	}
}

func TestExtractURLFetchFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("404")}
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		t.Error("no generation may run when the fetch fails")
		return nil, nil
	})
	e := NewExtractor(gen, fetcher, time.Second)

	if _, err := e.Extract(context.Background(), "https://gone.example", model.InputURL); err == nil {
		t.Fatal("fetch failure must propagate")
	}
}

func TestExtractGenerationFailurePropagates(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return nil, errors.New("provider down")
	})
	e := NewExtractor(gen, nil, time.Second)

	if _, err := e.Extract(context.Background(), "some claim", model.InputText); err == nil {
		t.Fatal("generation failure must propagate")
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	e := NewExtractor(nil, nil, time.Second)
	if _, err := e.Extract(context.Background(), "   ", model.InputText); err == nil {
		t.Fatal("blank input must be rejected")
	}
}

func TestExtractRejectsMissingCoreClaim(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
		return &llm.GenerateResponse{Text: `{"core_claim": "", "category": "other"}`}, nil
	})
	e := NewExtractor(gen, nil, time.Second)

	if _, err := e.Extract(context.Background(), "something", model.InputText); err == nil {
		t.Fatal("empty core claim must be rejected")
	}
}

func TestCategorizeFallsBackToKeywords(t *testing.T) {
	tests := []struct {
		label string
		claim string
		want  model.ClaimCategory
	}{
		{"health", "anything", model.CategoryHealth},
		{"not-a-category", "the vaccine rollout was delayed", model.CategoryHealth},
		{"", "inflation reached 8 percent last year", model.CategoryEconomy},
		{"", "the president dissolved parliament", model.CategoryPolitics},
		{"", "a new study measured the species decline", model.CategoryScience},
		{"", "the cat sat on the mat", model.CategoryOther},
	}

	for _, tt := range tests {
		if got := categorize(tt.label, tt.claim); got != tt.want {
			t.Errorf("categorize(%q, %q) = %s, want %s", tt.label, tt.claim, got, tt.want)
		}
	}
}
