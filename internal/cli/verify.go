package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritaskit/veritas/internal/debate"
	"github.com/veritaskit/veritas/internal/engine"
	"github.com/veritaskit/veritas/internal/model"
)

var (
	asURL          bool
	maxRounds      int
	maxSearches    int
	language       string
	earlyStop      bool
	sessionTimeout time.Duration
	callTimeout    time.Duration
	searchProvider string
	llmProvider    string
	llmModel       string
	noCache        bool
	cacheDir       string
	jsonOut        bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim or url>",
	Short: "Verify a factual claim through an adversarial debate",
	Long: `Verify runs a full verification session for one claim:
- Extract the core verifiable claim from text or from an article URL
- Research it from two opposing perspectives in parallel
- Exchange rebuttals over a bounded number of debate rounds
- Adjudicate the transcript into a verdict with confidence and sources

Example:
  veritas verify "The Great Wall of China is visible from space"
  veritas verify --url https://example.com/article
  veritas verify "..." --max-rounds 2 --language Italian --json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Input flags
	verifyCmd.Flags().BoolVar(&asURL, "url", false, "treat the argument as an article URL")

	// Debate flags
	verifyCmd.Flags().IntVar(&maxRounds, "max-rounds", 3, "rebuttal round limit")
	verifyCmd.Flags().IntVar(&maxSearches, "max-searches", -1, "per-role web search budget (-1 = unlimited)")
	verifyCmd.Flags().StringVar(&language, "language", "English", "output language for arguments and verdict")
	verifyCmd.Flags().BoolVar(&earlyStop, "early-stop", false, "stop early when both sides cite identical evidence")
	verifyCmd.Flags().DurationVar(&sessionTimeout, "timeout", 5*time.Minute, "overall session timeout")
	verifyCmd.Flags().DurationVar(&callTimeout, "call-timeout", 10*time.Second, "timeout per external call")

	// Search flags
	verifyCmd.Flags().StringVar(&searchProvider, "search", "", "search backend (brave, newsapi, duckduckgo; default picks brave when a key is set)")

	// LLM flags
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")

	// Cache flags
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the tool cache (force fresh lookups)")
	verifyCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist cached lookups to this directory")

	// Output flags
	verifyCmd.Flags().BoolVar(&jsonOut, "json", false, "print the full session as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	input := args[0]
	kind := model.InputText
	if asURL || looksLikeURL(input) {
		kind = model.InputURL
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}
	if verbose {
		eng.SetLogf(func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		})
	}

	ctx := context.Background()

	if jsonOut {
		session, runErr := eng.Run(ctx, input, kind)
		if err := renderJSON(os.Stdout, session, runErr); err != nil {
			return err
		}
		if runErr != nil && verbose {
			fmt.Fprintf(os.Stderr, "session error: %v\n", runErr)
		}
		return debate.SanitizeFailure(runErr)
	}

	handle := eng.Start(ctx, input, kind)
	for ev := range handle.Events() {
		renderEvent(os.Stderr, ev)
	}

	session, runErr := handle.Wait()
	if runErr != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "session error: %v\n", runErr)
		}
		return debate.SanitizeFailure(runErr)
	}

	renderVerdict(os.Stdout, session)

	if verbose {
		hits, misses := eng.CacheStats()
		fmt.Fprintf(os.Stderr, "cache: %d hits, %d misses\n", hits, misses)
	}
	return nil
}

// buildConfig merges defaults with environment and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Debate.MaxRounds = maxRounds
	cfg.Debate.MaxSearches = maxSearches
	cfg.Debate.Language = language
	cfg.Debate.EarlyStop = earlyStop
	cfg.Debate.SessionTimeout = sessionTimeout
	cfg.Debate.CallTimeout = callTimeout
	cfg.Output.Verbose = verbose
	cfg.Output.JSON = jsonOut

	if noCache {
		cfg.Cache.Enabled = false
	}
	if cacheDir != "" {
		cfg.Cache.DiskDir = cacheDir
	}

	cfg.Search.BraveAPIKey = os.Getenv("BRAVE_API_KEY")
	cfg.Search.NewsAPIAPIKey = os.Getenv("NEWS_API_KEY")
	if searchProvider != "" {
		cfg.Search.Provider = searchProvider
	} else if cfg.Search.BraveAPIKey == "" {
		cfg.Search.Provider = "duckduckgo"
	}
	if cfg.Search.Provider == "brave" && cfg.Search.BraveAPIKey == "" {
		return nil, fmt.Errorf("BRAVE_API_KEY environment variable not set")
	}
	if cfg.Search.Provider == "newsapi" && cfg.Search.NewsAPIAPIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY environment variable not set")
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	// Get API key from environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// renderEvent prints one progress line per session event.
func renderEvent(w io.Writer, ev debate.Event) {
	switch ev.Kind {
	case debate.EventStateChange:
		fmt.Fprintf(w, "state: %s\n", ev.State)
	case debate.EventMessage:
		msg := ev.Message
		fmt.Fprintf(w, "[round %d] %s (%s, %d sources)\n", msg.Round, msg.Role, msg.Kind, len(msg.Sources))
	case debate.EventVerdict:
		fmt.Fprintf(w, "verdict ready\n")
	case debate.EventFailure:
		fmt.Fprintf(w, "failed: %v\n", ev.Failure)
	}
}
