// Package catalog keeps the shared list of registered board games.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Entry is one registered game. The JSON names match the historic gameList.json layout.
type Entry struct {
	Name       string `json:"name" db:"name"`
	MinPlayers int    `json:"minPlayers" db:"min_players"`
	MaxPlayers int    `json:"maxPlayers" db:"max_players"`
	Players    string `json:"players" db:"players"`
}

// NewEntry builds an entry with its "min~max" display range.
func NewEntry(name string, minPlayers, maxPlayers int) Entry {
	return Entry{
		Name:       name,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Players:    fmt.Sprintf("%d~%d", minPlayers, maxPlayers),
	}
}

// Store is the durable catalog. Implementations serialise their own writers.
type Store interface {
	// LoadAll returns every entry in registration order, initialising storage when absent.
	LoadAll(ctx context.Context) ([]Entry, error)
	// AppendAndPersist appends entries in order. Either all of them become visible or none.
	AppendAndPersist(ctx context.Context, entries []Entry) error
	// RemoveByName drops the first entry whose name matches exactly.
	RemoveByName(ctx context.Context, name string) (bool, error)
	Close() error
}

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("catalog: store closed")
