package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestImportFileCopiesEntries(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gameList.json")
	data := `[{"name":"가이아 프로젝트","minPlayers":1,"maxPlayers":4,"players":"1~4"},{"name":"Root","minPlayers":2,"maxPlayers":4}]`
	if err := os.WriteFile(src, []byte(data), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	dst := NewFileStore(filepath.Join(dir, "dst.json"))
	defer dst.Close()

	n, err := ImportFile(context.Background(), dst, src)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}
	got, err := dst.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 || got[1].Players != "2~4" {
		t.Fatalf("imported entries = %+v", got)
	}
}

func TestImportFileMissingSource(t *testing.T) {
	dst := NewFileStore(filepath.Join(t.TempDir(), "dst.json"))
	if _, err := ImportFile(context.Background(), dst, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestImportFileRejectsInvalidRange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(src, []byte(`[{"name":"X","minPlayers":5,"maxPlayers":3}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := NewFileStore(filepath.Join(dir, "dst.json"))
	if _, err := ImportFile(context.Background(), dst, src); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	got, _ := dst.LoadAll(context.Background())
	if len(got) != 0 {
		t.Fatalf("destination modified: %+v", got)
	}
}
