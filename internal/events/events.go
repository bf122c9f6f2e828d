// Package events announces catalog changes to other processes.
package events

import (
	"context"
	"time"

	"github.com/m3rciful/boardbot/internal/catalog"
)

// Subject suffixes appended to the configured prefix.
const (
	SuffixRegistered = "registered"
	SuffixRemoved    = "removed"
)

// GamesRegistered is published after a batch commit.
type GamesRegistered struct {
	Entries []catalog.Entry `json:"entries"`
	Count   int             `json:"count"`
	At      time.Time       `json:"at"`
}

// GameRemoved is published after a delete removed an entry.
type GameRemoved struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}

// Subject joins prefix and suffix with a dot.
func Subject(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "." + suffix
}
