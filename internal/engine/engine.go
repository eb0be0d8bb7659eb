// Package engine assembles the verification stack from configuration: the
// LLM provider, the shared tool cache, the research toolset, and the debate
// controller. The CLI and batch processor only talk to this package.
package engine

import (
	"context"
	"fmt"

	"github.com/veritaskit/veritas/internal/cache"
	"github.com/veritaskit/veritas/internal/debate"
	"github.com/veritaskit/veritas/internal/extract"
	"github.com/veritaskit/veritas/internal/llm"
	"github.com/veritaskit/veritas/internal/model"
	"github.com/veritaskit/veritas/internal/tools"
)

// Engine owns a fully wired verification stack.
type Engine struct {
	cfg        *model.Config
	controller *debate.Controller
	toolset    *tools.Toolset
	provider   llm.Provider
}

// NewEngine wires an engine from the given configuration.
func NewEngine(cfg *model.Config) (*Engine, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	toolCache := buildToolCache(cfg.Cache)
	toolset := tools.NewToolset(cfg, toolCache)

	extractor := extract.NewExtractor(provider, toolset, cfg.Debate.CallTimeout)
	advocate := debate.NewAdvocate(provider, toolset, cfg.Debate)
	skeptic := debate.NewSkeptic(provider, toolset, cfg.Debate)
	judge := debate.NewAdjudicator(provider, cfg.Debate)

	return &Engine{
		cfg:        cfg,
		controller: debate.NewController(cfg.Debate, extractor, advocate, skeptic, judge),
		toolset:    toolset,
		provider:   provider,
	}, nil
}

// buildToolCache constructs the shared cache. A configured disk directory
// adds a persistent backing layer behind the in-memory LRU.
func buildToolCache(cfg model.CacheConfig) *cache.ToolCache {
	if !cfg.Enabled {
		return cache.NewToolCache(0, 0, nil)
	}

	var backing cache.Store
	if cfg.DiskDir != "" {
		backing = cache.NewLayeredStore(cfg.TTL, cfg.DiskDir, cfg.TTL)
	}
	return cache.NewToolCache(cfg.MaxEntries, cfg.TTL, backing)
}

// SetLogf forwards a progress logger to the controller.
func (e *Engine) SetLogf(logf func(format string, args ...any)) {
	e.controller.SetLogf(logf)
}

// Run executes one verification session to completion.
func (e *Engine) Run(ctx context.Context, rawInput string, kind model.InputKind) (*model.DebateSession, error) {
	return e.controller.Run(ctx, rawInput, kind)
}

// Start runs a session in the background and returns its event stream.
func (e *Engine) Start(ctx context.Context, rawInput string, kind model.InputKind) *debate.SessionHandle {
	return e.controller.StartSession(ctx, rawInput, kind)
}

// CacheStats reports tool cache hit and miss counts.
func (e *Engine) CacheStats() (hits, misses uint64) {
	return e.toolset.CacheStats()
}

// ProviderAvailable reports whether the configured LLM backend responds.
func (e *Engine) ProviderAvailable(ctx context.Context) bool {
	return e.provider.IsAvailable(ctx)
}
