package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritaskit/veritas/internal/debate"
	"github.com/veritaskit/veritas/internal/engine"
	"github.com/veritaskit/veritas/internal/worker"
)

var (
	batchWorkers int
	batchOutJSON string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file concurrently",
	Long: `Batch reads claims from a file (one per line, # for comments) and
runs a full verification session for each, in parallel.

Lines starting with http:// or https:// are treated as article URLs;
everything else is treated as claim text.

Example:
  veritas batch claims.txt
  veritas batch claims.txt --workers 8 --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent verification sessions")
	batchCmd.Flags().StringVar(&batchOutJSON, "json", "", "write results to this JSON file")

	// Shared with verify
	batchCmd.Flags().IntVar(&maxRounds, "max-rounds", 3, "rebuttal round limit")
	batchCmd.Flags().IntVar(&maxSearches, "max-searches", -1, "per-role web search budget (-1 = unlimited)")
	batchCmd.Flags().StringVar(&language, "language", "English", "output language for arguments and verdicts")
	batchCmd.Flags().StringVar(&searchProvider, "search", "", "search backend (brave, newsapi, duckduckgo)")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist cached lookups to this directory")
}

// batchLine is one row of the JSON results file.
type batchLine struct {
	Input      string  `json:"input"`
	Verdict    string  `json:"verdict,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Summary    string  `json:"summary,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = batchWorkers

	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(eng, batchWorkers)
	results, err := processor.ProcessFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	lines := make([]batchLine, 0, len(results))
	failed := 0
	for _, res := range results {
		line := batchLine{Input: res.Input}
		if res.Error != nil {
			line.Error = debate.SanitizeFailure(res.Error).Error()
			failed++
			if verbose {
				fmt.Fprintf(os.Stderr, "%s: %v\n", res.Input, res.Error)
			}
		} else if v := res.Session.Verdict(); v != nil {
			line.Verdict = string(v.Category)
			line.Confidence = v.Confidence
			line.Summary = v.Summary
		}
		lines = append(lines, line)

		if line.Error != "" {
			fmt.Printf("✗ %s: %s\n", line.Input, line.Error)
		} else {
			fmt.Printf("✓ %s: %s (%.0f)\n", line.Input, line.Verdict, line.Confidence)
		}
	}

	fmt.Printf("\n%d verified, %d failed\n", len(results)-failed, failed)

	if batchOutJSON != "" {
		if err := writeBatchJSON(batchOutJSON, lines); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "wrote %s\n", batchOutJSON)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

func writeBatchJSON(path string, lines []batchLine) error {
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
