package registration

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/boardbot/core/logger"
)

// MemoryTable keeps sessions in process memory. Sessions idle longer than the
// timeout are dropped lazily on access and by Sweep.
type MemoryTable struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	idle     time.Duration
	now      func() time.Time
}

var _ Table = (*MemoryTable)(nil)

// NewMemoryTable creates a table. idle <= 0 disables eviction.
func NewMemoryTable(idle time.Duration) *MemoryTable {
	return &MemoryTable{
		sessions: make(map[int64]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

func (t *MemoryTable) Begin(_ context.Context, owner Owner, names []string) (*Session, error) {
	s, err := newSession(owner, names, t.now())
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[owner.UserID] = s
	return s.Clone(), nil
}

func (t *MemoryTable) Get(_ context.Context, ownerID int64) (*Session, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[ownerID]
	if !ok {
		return nil, false, nil
	}
	if t.expiredLocked(s, t.now()) {
		delete(t.sessions, ownerID)
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (t *MemoryTable) Update(_ context.Context, s *Session) error {
	cp := s.Clone()
	cp.UpdatedAt = t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[cp.OwnerID] = cp
	return nil
}

func (t *MemoryTable) Remove(_ context.Context, ownerID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, ownerID)
	return nil
}

func (t *MemoryTable) Len(_ context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions), nil
}

// Sweep drops every expired session and returns how many went.
func (t *MemoryTable) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	n := 0
	for id, s := range t.sessions {
		if t.expiredLocked(s, now) {
			delete(t.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor sweeps every interval until ctx is done.
func (t *MemoryTable) StartJanitor(ctx context.Context, interval time.Duration) {
	if t.idle <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := t.Sweep(); n > 0 {
					logger.LogEvent(ctx, logger.SVCRegistration, slog.LevelInfo, "session.evicted",
						slog.Int("count", n),
						slog.Duration("idle_timeout", t.idle),
					)
				}
			}
		}
	}()
}

func (t *MemoryTable) expiredLocked(s *Session, now time.Time) bool {
	return t.idle > 0 && now.Sub(s.UpdatedAt) > t.idle
}
