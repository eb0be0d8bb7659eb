package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/veritaskit/veritas/internal/model"
)

// Verifier runs one full verification session for a claim.
type Verifier interface {
	Run(ctx context.Context, rawInput string, kind model.InputKind) (*model.DebateSession, error)
}

// VerifyJob verifies a single claim line from a batch file.
type VerifyJob struct {
	Input    string
	Kind     model.InputKind
	Verifier Verifier
}

// Execute runs the verification session for this job's input.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	session, err := j.Verifier.Run(ctx, j.Input, j.Kind)
	return &VerifyResult{
		Input:   j.Input,
		Session: session,
		Error:   err,
	}
}

// VerifyResult pairs a batch input with its finished session.
type VerifyResult struct {
	Input   string
	Session *model.DebateSession
	Error   error
}

// GetError returns the session error, if any.
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many claims concurrently, one session per claim.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a processor running up to concurrency sessions
// at a time.
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessClaims verifies the given inputs concurrently. Lines that look like
// URLs are fetched and extracted; everything else is treated as claim text.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, inputs []string) []*VerifyResult {
	if len(inputs) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, input := range inputs {
		pool.Submit(&VerifyJob{
			Input:    input,
			Kind:     classifyInput(input),
			Verifier: b.verifier,
		})
	}

	results := pool.Wait()

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		verifyResults[i] = result.(*VerifyResult)
	}
	return verifyResults
}

// ProcessFile reads claims from a file (one per line) and verifies them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	inputs, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.ProcessClaims(ctx, inputs), nil
}

// ReadClaimsFromFile reads one claim or URL per line, skipping blanks,
// comments and duplicates.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return inputs, nil
}

func classifyInput(line string) model.InputKind {
	if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
		return model.InputURL
	}
	return model.InputText
}
