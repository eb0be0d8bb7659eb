package debate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/veritaskit/veritas/internal/model"
)

// ErrExtractionFailed marks a session that terminated because the claim
// could not be extracted from the raw input.
var ErrExtractionFailed = errors.New("claim extraction failed")

// ErrSessionTimeout marks a session that exceeded its overall deadline.
var ErrSessionTimeout = errors.New("session deadline exceeded")

// ClaimExtractor turns raw user input into a structured claim.
type ClaimExtractor interface {
	Extract(ctx context.Context, raw string, kind model.InputKind) (model.Claim, error)
}

// Controller drives a debate session through its lifecycle: extraction,
// parallel initial research, the rebuttal loop, and adjudication. A single
// Controller is safe to reuse across sessions.
type Controller struct {
	cfg       model.DebateConfig
	extractor ClaimExtractor
	advocate  Researcher
	skeptic   Researcher
	judge     *Adjudicator

	// logf receives degradation notices and state transitions. Defaults
	// to a no-op; the CLI installs a stderr logger in verbose mode.
	logf func(format string, args ...any)
}

// NewController wires a controller from its collaborators.
func NewController(cfg model.DebateConfig, extractor ClaimExtractor, advocate, skeptic Researcher, judge *Adjudicator) *Controller {
	return &Controller{
		cfg:       cfg,
		extractor: extractor,
		advocate:  advocate,
		skeptic:   skeptic,
		judge:     judge,
		logf:      func(string, ...any) {},
	}
}

// SetLogf installs a logger for progress and degradation notices.
func (c *Controller) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		c.logf = logf
	}
}

// Run executes a full verification session for the given input. On success
// the returned session is in StateDone and carries a verdict. On failure the
// session is in StateFailed and the error wraps one of the sentinel errors
// above.
func (c *Controller) Run(ctx context.Context, rawInput string, kind model.InputKind) (*model.DebateSession, error) {
	session := model.NewDebateSession()

	if c.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SessionTimeout)
		defer cancel()
	}

	if err := c.run(ctx, session, rawInput, kind); err != nil {
		session.SetState(model.StateFailed)
		return session, err
	}
	session.SetState(model.StateDone)
	return session, nil
}

func (c *Controller) run(ctx context.Context, session *model.DebateSession, rawInput string, kind model.InputKind) error {
	session.SetState(model.StateExtracting)
	c.logf("extracting claim from input")

	claim, err := c.extractor.Extract(ctx, rawInput, kind)
	if err != nil {
		if deadlineExceeded(ctx) {
			return fmt.Errorf("%w: during extraction", ErrSessionTimeout)
		}
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	session.SetClaim(claim)
	c.logf("claim: %s (category=%s)", claim.CoreClaim, claim.Category)

	// Search budgets are scoped to this run; a reused controller starts
	// every session with full budgets.
	advBudget := NewSearchBudget(c.cfg.MaxSearches)
	skBudget := NewSearchBudget(c.cfg.MaxSearches)

	session.SetState(model.StateResearching)
	c.logf("running initial research")
	if err := c.initialResearch(ctx, session, claim, advBudget, skBudget); err != nil {
		return err
	}

	session.SetState(model.StateDebating)
	if err := c.debateLoop(ctx, session, claim, advBudget, skBudget); err != nil {
		return err
	}

	session.SetState(model.StateAdjudicating)
	c.logf("adjudicating after %d rounds", session.Round())

	verdict := c.judge.Adjudicate(ctx, claim, session.Transcript(), session.Round(), session.StartedAt)
	session.SetVerdict(verdict)
	c.logf("verdict: %s (%.0f)", verdict.Category, verdict.Confidence)
	return nil
}

// initialResearch runs both researchers concurrently and joins before
// recording either statement. The advocate's opening is always appended
// first so the transcript order is deterministic.
func (c *Controller) initialResearch(ctx context.Context, session *model.DebateSession, claim model.Claim, advBudget, skBudget *SearchBudget) error {
	var (
		wg     sync.WaitGroup
		advMsg model.DebateMessage
		skMsg  model.DebateMessage
		advErr error
		skErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		advMsg, advErr = c.advocate.InitialStatement(ctx, claim, advBudget)
	}()
	go func() {
		defer wg.Done()
		skMsg, skErr = c.skeptic.InitialStatement(ctx, claim, skBudget)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: during research", ErrSessionTimeout)
	}
	if advErr != nil {
		c.logf("advocate degraded: %v", advErr)
	}
	if skErr != nil {
		c.logf("skeptic degraded: %v", skErr)
	}

	session.Append(advMsg)
	session.Append(skMsg)
	return nil
}

// debateLoop alternates rebuttal and defense until the round bound is hit
// or, when early stop is enabled, the two sides cite identical evidence.
func (c *Controller) debateLoop(ctx context.Context, session *model.DebateSession, claim model.Claim, advBudget, skBudget *SearchBudget) error {
	for session.Round() < c.cfg.MaxRounds {
		// Openings are round 0; rebuttal rounds run 1..MaxRounds.
		round := session.Round() + 1
		c.logf("debate round %d", round)

		skMsg, skErr := c.skeptic.Respond(ctx, claim, session.Transcript(), round, skBudget)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: during debate", ErrSessionTimeout)
		}
		if skErr != nil {
			c.logf("skeptic degraded: %v", skErr)
		}
		session.Append(skMsg)

		advMsg, advErr := c.advocate.Respond(ctx, claim, session.Transcript(), round, advBudget)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: during debate", ErrSessionTimeout)
		}
		if advErr != nil {
			c.logf("advocate degraded: %v", advErr)
		}
		session.Append(advMsg)

		session.AdvanceRound()

		if c.cfg.EarlyStop && session.Round() >= 1 && converged(skMsg, advMsg) {
			c.logf("evidence converged after round %d", session.Round())
			return nil
		}
	}
	return nil
}

// converged reports whether both turns cite the same non-empty URL set.
func converged(a, b model.DebateMessage) bool {
	setA := a.SourceURLSet()
	setB := b.SourceURLSet()
	if len(setA) == 0 || len(setA) != len(setB) {
		return false
	}
	for u := range setA {
		if !setB[u] {
			return false
		}
	}
	return true
}

// deadlineExceeded reports whether the session's own deadline has passed.
// A per-call timeout inside a collaborator does not count: only the session
// context decides between a timeout and an ordinary failure.
func deadlineExceeded(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
