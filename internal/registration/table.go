package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrNoGameNames rejects a begin without any game name.
var ErrNoGameNames = errors.New("registration: no game names given")

// DefaultIdleTimeout evicts sessions nobody touched for this long.
const DefaultIdleTimeout = 30 * time.Minute

// sessionIDAlphabet keeps ids free of the choice separator.
const (
	sessionIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	sessionIDLength   = 10
)

// Table holds at most one session per owner. Sessions handed out are copies;
// callers persist changes with Update.
type Table interface {
	// Begin replaces any session of owner with a fresh one at cursor 0 awaiting a minimum.
	Begin(ctx context.Context, owner Owner, names []string) (*Session, error)
	Get(ctx context.Context, ownerID int64) (*Session, bool, error)
	Update(ctx context.Context, s *Session) error
	Remove(ctx context.Context, ownerID int64) error
	Len(ctx context.Context) (int, error)
}

func newSessionID() (string, error) {
	return gonanoid.Generate(sessionIDAlphabet, sessionIDLength)
}

func newSession(owner Owner, names []string, now time.Time) (*Session, error) {
	if len(names) == 0 {
		return nil, ErrNoGameNames
	}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("registration: game name %d is empty", i)
		}
	}
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("registration: session id: %w", err)
	}
	return &Session{
		ID:        id,
		OwnerID:   owner.UserID,
		ChatID:    owner.ChatID,
		Queue:     append([]string(nil), names...),
		Cursor:    0,
		Completed: []Selection{},
		Expected:  AwaitingMin,
		StartedAt: now,
		UpdatedAt: now,
	}, nil
}
