package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/m3rciful/boardbot/core/logger"
)

// FileStore keeps the catalog as an indented JSON array in a single file.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries []Entry
	loaded  bool
	closed  bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by path. Nothing is read until first use.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path reports the backing file.
func (s *FileStore) Path() string { return s.path }

// LoadAll returns a copy of the catalog, creating the file with "[]" when it is missing.
func (s *FileStore) LoadAll(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return append([]Entry(nil), s.entries...), nil
}

// AppendAndPersist writes the extended list and only then makes it visible.
func (s *FileStore) AppendAndPersist(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	next := make([]Entry, 0, len(s.entries)+len(entries))
	next = append(next, s.entries...)
	next = append(next, entries...)
	if err := s.writeLocked(next); err != nil {
		return err
	}
	s.entries = next
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.append",
		slog.String("backend", "file"),
		slog.Int("count", len(entries)),
		slog.Int("entries", len(next)),
	)
	return nil
}

// RemoveByName drops the first exact match and rewrites the file.
func (s *FileStore) RemoveByName(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return false, err
	}
	idx := -1
	for i, e := range s.entries {
		if e.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	next := make([]Entry, 0, len(s.entries)-1)
	next = append(next, s.entries[:idx]...)
	next = append(next, s.entries[idx+1:]...)
	if err := s.writeLocked(next); err != nil {
		return false, err
	}
	s.entries = next
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.remove",
		slog.String("backend", "file"),
		slog.String("game", name),
		slog.Int("entries", len(next)),
	)
	return true, nil
}

// Close marks the store unusable. The file is always consistent on disk.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) ensureLoadedLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := s.writeLocked([]Entry{}); err != nil {
			return err
		}
		s.entries = []Entry{}
		s.loaded = true
		logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelInfo, "catalog.init",
			slog.String("backend", "file"),
			slog.String("path", s.path),
		)
		return nil
	case err != nil:
		return fmt.Errorf("catalog: read %s: %w", s.path, err)
	}

	var entries []Entry
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("catalog: parse %s: %w", s.path, err)
		}
	}
	if entries == nil {
		entries = []Entry{}
	}
	s.entries = entries
	s.loaded = true
	logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelDebug, "catalog.load",
		slog.String("backend", "file"),
		slog.String("path", s.path),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// writeLocked replaces the file via a temp file and rename so readers never see a torn list.
func (s *FileStore) writeLocked(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("catalog: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("catalog: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("catalog: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("catalog: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("catalog: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("catalog: replace %s: %w", s.path, err)
	}
	return nil
}
