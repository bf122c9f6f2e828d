package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/boardbot/core/logger"
)

const (
	selectEntriesSQL = `SELECT name, min_players, max_players, players FROM games ORDER BY id`
	insertEntrySQL   = `INSERT INTO games (name, min_players, max_players, players) VALUES ($1, $2, $3, $4)`
	deleteFirstSQL   = `DELETE FROM games WHERE id = (SELECT id FROM games WHERE name = $1 ORDER BY id LIMIT 1)`
)

// PostgresStore keeps the catalog in the games table. Order is insertion order (id).
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open connection. The schema is owned by core/database migrations.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LoadAll(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, selectEntriesSQL); err != nil {
		return nil, fmt.Errorf("catalog: select games: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) AppendAndPersist(ctx context.Context, entries []Entry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, e := range entries {
		if _, err = tx.ExecContext(ctx, insertEntrySQL, e.Name, e.MinPlayers, e.MaxPlayers, e.Players); err != nil {
			return fmt.Errorf("catalog: insert %q: %w", e.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.append",
		slog.String("backend", "postgres"),
		slog.Int("count", len(entries)),
	)
	return nil
}

func (s *PostgresStore) RemoveByName(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, deleteFirstSQL, name)
	if err != nil {
		return false, fmt.Errorf("catalog: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("catalog: rows affected: %w", err)
	}
	if n > 0 {
		logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.remove",
			slog.String("backend", "postgres"),
			slog.String("game", name),
		)
	}
	return n > 0, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
