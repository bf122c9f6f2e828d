// Package registration drives the multi-game registration wizard: one
// session per user, advanced by min/max player-count selections and
// committed to the catalog once every queued game is resolved.
package registration

import (
	"time"

	"github.com/m3rciful/boardbot/internal/catalog"
)

// Player-count bounds offered by the prompts.
const (
	MinPlayers = 2
	MaxPlayers = 10
)

// Field names the answer a session is waiting for.
type Field string

const (
	AwaitingMin Field = "min"
	AwaitingMax Field = "max"
)

// Valid reports whether f is one of the two prompt kinds.
func (f Field) Valid() bool {
	return f == AwaitingMin || f == AwaitingMax
}

// Selection is one fully resolved game of the batch.
type Selection struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// Owner identifies who started a wizard and where prompts go.
type Owner struct {
	UserID int64
	ChatID int64
}

// Target addresses gateway output for one session.
type Target struct {
	UserID    int64
	ChatID    int64
	SessionID string
}

// Session is one user's in-flight wizard run.
//
// Between events len(Completed) == Cursor, and PendingMin is set exactly
// when Expected is AwaitingMax.
type Session struct {
	ID         string      `json:"id"`
	OwnerID    int64       `json:"ownerId"`
	ChatID     int64       `json:"chatId"`
	Queue      []string    `json:"queue"`
	Cursor     int         `json:"cursor"`
	Completed  []Selection `json:"completed"`
	Expected   Field       `json:"expectedField"`
	PendingMin *int        `json:"pendingMin,omitempty"`
	StartedAt  time.Time   `json:"startedAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Queue = append([]string(nil), s.Queue...)
	cp.Completed = append([]Selection{}, s.Completed...)
	if s.PendingMin != nil {
		v := *s.PendingMin
		cp.PendingMin = &v
	}
	return &cp
}

// Current returns the game at the cursor.
func (s *Session) Current() (string, bool) {
	if s == nil || s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return "", false
	}
	return s.Queue[s.Cursor], true
}

// Done reports whether every queued game has been resolved.
func (s *Session) Done() bool {
	return s.Cursor >= len(s.Queue)
}

// Target returns the gateway address for this session.
func (s *Session) Target() Target {
	return Target{UserID: s.OwnerID, ChatID: s.ChatID, SessionID: s.ID}
}

// Entries maps completed selections onto catalog entries in queue order.
func (s *Session) Entries() []catalog.Entry {
	out := make([]catalog.Entry, 0, len(s.Completed))
	for _, sel := range s.Completed {
		out = append(out, catalog.NewEntry(sel.Name, sel.Min, sel.Max))
	}
	return out
}
