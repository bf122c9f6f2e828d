package registration

import (
	"fmt"

	"github.com/m3rciful/boardbot/internal/catalog"
)

// Event is one selection delivered for a prompt.
type Event struct {
	OwnerID int64
	Tag     PromptTag
	Game    string
	Value   int
}

// Status classifies what Step did with an event.
type Status int

const (
	// Stale events are ignored; the session is unchanged.
	Stale Status = iota
	// Advanced events moved the session on and produced the next prompt.
	Advanced
	// Completed events resolved the last game; Entries are ready to commit.
	Completed
)

func (s Status) String() string {
	switch s {
	case Stale:
		return "stale"
	case Advanced:
		return "advanced"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Stale reasons reported in Outcome.Reason.
const (
	ReasonNoSession       = "no_session"
	ReasonOwnerMismatch   = "owner_mismatch"
	ReasonSessionMismatch = "session_mismatch"
	ReasonCursorMismatch  = "cursor_mismatch"
	ReasonFieldMismatch   = "field_mismatch"
	ReasonGameMismatch    = "game_mismatch"
)

// Outcome is the result of one Step.
type Outcome struct {
	Status Status
	// Reason explains a Stale outcome.
	Reason string
	// Session is the next session state for Advanced and Completed.
	Session *Session
	// Prompt is set for Advanced.
	Prompt *Prompt
	// Entries is set for Completed.
	Entries []catalog.Entry
}

// RangeError reports a value outside the choices that were offered.
type RangeError struct {
	Field Field
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("registration: %s value %d outside %d..%d", e.Field, e.Value, e.Min, e.Max)
}

// Code lets the router summary log an err_code.
func (e *RangeError) Code() string { return "VALUE_OUT_OF_RANGE" }

func stale(reason string) Outcome {
	return Outcome{Status: Stale, Reason: reason}
}

// Step applies ev to s without touching s. Events that do not answer the
// outstanding prompt are Stale. Values outside the offered range return a
// *RangeError and leave the session as it was.
func Step(s *Session, ev Event) (Outcome, error) {
	if s == nil {
		return stale(ReasonNoSession), nil
	}
	if ev.OwnerID != s.OwnerID {
		return stale(ReasonOwnerMismatch), nil
	}
	if ev.Tag.SessionID != "" && ev.Tag.SessionID != s.ID {
		return stale(ReasonSessionMismatch), nil
	}
	if ev.Tag.Index != s.Cursor {
		return stale(ReasonCursorMismatch), nil
	}
	if ev.Tag.Kind != s.Expected {
		return stale(ReasonFieldMismatch), nil
	}
	game, ok := s.Current()
	if !ok || ev.Game != game {
		return stale(ReasonGameMismatch), nil
	}

	next := s.Clone()
	switch s.Expected {
	case AwaitingMin:
		if ev.Value < MinPlayers || ev.Value > MaxPlayers {
			return Outcome{}, &RangeError{Field: AwaitingMin, Value: ev.Value, Min: MinPlayers, Max: MaxPlayers}
		}
		v := ev.Value
		next.PendingMin = &v
		next.Expected = AwaitingMax
		p := maxPrompt(next, v)
		return Outcome{Status: Advanced, Session: next, Prompt: &p}, nil

	case AwaitingMax:
		if s.PendingMin == nil {
			return Outcome{}, fmt.Errorf("registration: session %s awaits max without a pending min", s.ID)
		}
		lo := *s.PendingMin
		if ev.Value < lo || ev.Value > MaxPlayers {
			return Outcome{}, &RangeError{Field: AwaitingMax, Value: ev.Value, Min: lo, Max: MaxPlayers}
		}
		next.Completed = append(next.Completed, Selection{Name: game, Min: lo, Max: ev.Value})
		next.PendingMin = nil
		next.Cursor++
		next.Expected = AwaitingMin
		if !next.Done() {
			p := minPrompt(next)
			return Outcome{Status: Advanced, Session: next, Prompt: &p}, nil
		}
		return Outcome{Status: Completed, Session: next, Entries: next.Entries()}, nil
	}
	return Outcome{}, fmt.Errorf("registration: session %s has unknown expected field %q", s.ID, s.Expected)
}
