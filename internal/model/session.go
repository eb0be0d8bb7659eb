package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState is the state of the verification state machine
type SessionState string

const (
	StateInit         SessionState = "init"
	StateExtracting   SessionState = "extracting"
	StateResearching  SessionState = "researching"
	StateDebating     SessionState = "debating"
	StateAdjudicating SessionState = "adjudicating"
	StateDone         SessionState = "done"
	StateFailed       SessionState = "failed"
)

// DebateSession is the aggregate root for one verification request.
// It owns the claim, the append-only transcript, the round counter, and
// the final verdict. One session exists per request; a single round
// controller execution drives all mutations. The mutex guards against
// readers (event consumers, tests) observing a partially appended message.
type DebateSession struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu         sync.Mutex
	state      SessionState
	claim      *Claim
	transcript []DebateMessage
	round      int
	verdict    *Verdict
	observer   func(state SessionState, msg *DebateMessage)
}

// NewDebateSession creates a session in the initial state.
func NewDebateSession() *DebateSession {
	return &DebateSession{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		state:     StateInit,
	}
}

// State returns the current state machine state.
func (s *DebateSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the session to the given state.
func (s *DebateSession) SetState(state SessionState) {
	s.mu.Lock()
	s.state = state
	observer := s.observer
	s.mu.Unlock()
	if observer != nil {
		observer(state, nil)
	}
}

// Observe installs a callback invoked on every state change and transcript
// append. The callback runs outside the session lock and must be set before
// the session starts mutating.
func (s *DebateSession) Observe(fn func(state SessionState, msg *DebateMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// SetClaim attaches the extracted claim. Set once, never replaced.
func (s *DebateSession) SetClaim(c Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claim == nil {
		s.claim = &c
	}
}

// Claim returns the extracted claim, or nil before extraction completes.
func (s *DebateSession) Claim() *Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claim
}

// Append adds a fully constructed message to the transcript. Messages are
// never edited or removed afterward. Confidence is clamped on the way in so
// the invariant holds regardless of what a provider produced.
func (s *DebateSession) Append(msg DebateMessage) {
	msg.Confidence = ClampConfidence(msg.Confidence)
	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	state := s.state
	observer := s.observer
	s.mu.Unlock()
	if observer != nil {
		observer(state, &msg)
	}
}

// Transcript returns a copy of the message sequence observed so far.
// Any snapshot is a strict prefix of every later snapshot.
func (s *DebateSession) Transcript() []DebateMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DebateMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Round returns the number of completed rebuttal rounds.
func (s *DebateSession) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// AdvanceRound increments the round counter and returns the new value.
// The counter is monotonically non-decreasing for the session's lifetime.
func (s *DebateSession) AdvanceRound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round++
	return s.round
}

// SetVerdict attaches the terminal verdict. Set once, never replaced.
func (s *DebateSession) SetVerdict(v Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verdict == nil {
		s.verdict = &v
	}
}

// Verdict returns the final verdict, or nil before adjudication.
func (s *DebateSession) Verdict() *Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// TotalSources counts distinct source URLs across the whole transcript.
func (s *DebateSession) TotalSources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	for _, msg := range s.transcript {
		for _, src := range msg.Sources {
			if src.URL != "" {
				seen[src.URL] = true
			}
		}
	}
	return len(seen)
}
