package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/m3rciful/boardbot/core/logger"
)

// ImportFile appends every entry of a JSON catalog file to dst in one batch.
// It is how a gameList.json from the file backend moves into Postgres.
// A missing source file is an error rather than an empty catalog.
func ImportFile(ctx context.Context, dst Store, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("catalog: import source: %w", err)
	}
	src := NewFileStore(path)
	defer src.Close()

	entries, err := src.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: import load: %w", err)
	}
	for i, e := range entries {
		if e.Name == "" || e.MinPlayers < 1 || e.MaxPlayers < e.MinPlayers {
			return 0, fmt.Errorf("catalog: import entry %d (%q) has an invalid player range", i, e.Name)
		}
		if e.Players == "" {
			entries[i] = NewEntry(e.Name, e.MinPlayers, e.MaxPlayers)
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := dst.AppendAndPersist(ctx, entries); err != nil {
		return 0, fmt.Errorf("catalog: import append: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.import",
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Int("count", len(entries)),
	)
	return len(entries), nil
}
