package debate

import (
	"context"
	"errors"

	"github.com/veritaskit/veritas/internal/model"
)

// EventKind classifies session progress notifications.
type EventKind string

const (
	EventStateChange EventKind = "state"
	EventMessage     EventKind = "message"
	EventVerdict     EventKind = "verdict"
	EventFailure     EventKind = "failure"
)

// Event is a single progress notification emitted while a session runs.
type Event struct {
	Kind    EventKind
	State   model.SessionState
	Message *model.DebateMessage
	Verdict *model.Verdict
	Failure error
}

// ErrVerificationFailed is the generic description for failures that are
// neither extraction nor timeout.
var ErrVerificationFailed = errors.New("verification failed")

// SanitizeFailure reduces a session error to one of the generic
// descriptions safe to show callers: extraction failed, session timed out,
// or verification failed. The detailed cause stays with Run's return value
// for logging.
func SanitizeFailure(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSessionTimeout):
		return ErrSessionTimeout
	case errors.Is(err, ErrExtractionFailed):
		return ErrExtractionFailed
	default:
		return ErrVerificationFailed
	}
}

// SessionHandle exposes a running session's event stream and final result.
type SessionHandle struct {
	events  chan Event
	done    chan struct{}
	session *model.DebateSession
	err     error
}

// Events returns the stream of progress events. The channel is closed when
// the session finishes.
func (h *SessionHandle) Events() <-chan Event {
	return h.events
}

// Wait blocks until the session completes and returns its final state.
func (h *SessionHandle) Wait() (*model.DebateSession, error) {
	<-h.done
	return h.session, h.err
}

// StartSession runs a session in the background, mirroring transcript
// appends, state transitions and the final verdict onto an event channel.
// Callers must drain Events or the session will block.
func (c *Controller) StartSession(ctx context.Context, rawInput string, kind model.InputKind) *SessionHandle {
	handle := &SessionHandle{
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(handle.done)
		defer close(handle.events)

		obs := &observingController{Controller: c, events: handle.events}
		session, err := obs.runObserved(ctx, rawInput, kind)
		handle.session = session
		handle.err = err

		if err != nil {
			handle.events <- Event{Kind: EventFailure, State: session.State(), Failure: SanitizeFailure(err)}
		} else if v := session.Verdict(); v != nil {
			handle.events <- Event{Kind: EventVerdict, State: session.State(), Verdict: v}
		}
	}()

	return handle
}

// observingController wraps a controller so each transcript append and state
// transition is echoed to an event channel without changing Run semantics.
type observingController struct {
	*Controller
	events chan Event
}

func (o *observingController) runObserved(ctx context.Context, rawInput string, kind model.InputKind) (*model.DebateSession, error) {
	session := observedSession(o.events)

	if o.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SessionTimeout)
		defer cancel()
	}

	if err := o.run(ctx, session, rawInput, kind); err != nil {
		session.SetState(model.StateFailed)
		return session, err
	}
	session.SetState(model.StateDone)
	return session, nil
}

func observedSession(events chan Event) *model.DebateSession {
	session := model.NewDebateSession()
	session.Observe(func(state model.SessionState, msg *model.DebateMessage) {
		if msg != nil {
			events <- Event{Kind: EventMessage, State: state, Message: msg}
			return
		}
		events <- Event{Kind: EventStateChange, State: state}
	})
	return session
}
