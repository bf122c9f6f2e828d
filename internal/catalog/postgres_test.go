package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

var entryColumns = []string{"name", "min_players", "max_players", "players"}

func TestPostgresStoreLoadAll(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectEntriesSQL)).WillReturnRows(
		sqlmock.NewRows(entryColumns).
			AddRow("Gaia", 3, 5, "3~5").
			AddRow("Root", 2, 4, "2~4"),
	)

	entries, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(entries) != 2 || entries[0] != NewEntry("Gaia", 3, 5) || entries[1] != NewEntry("Root", 2, 4) {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestPostgresStoreLoadAllEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectEntriesSQL)).WillReturnRows(sqlmock.NewRows(entryColumns))

	entries, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestPostgresStoreAppendCommitsOnce(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs("Gaia", 3, 5, "3~5").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs("Root", 2, 4, "2~4").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.AppendAndPersist(context.Background(), []Entry{NewEntry("Gaia", 3, 5), NewEntry("Root", 2, 4)})
	if err != nil {
		t.Fatalf("AppendAndPersist: %v", err)
	}
}

func TestPostgresStoreAppendRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs("Gaia", 3, 5, "3~5").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertEntrySQL)).
		WithArgs("Root", 2, 4, "2~4").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.AppendAndPersist(context.Background(), []Entry{NewEntry("Gaia", 3, 5), NewEntry("Root", 2, 4)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestPostgresStoreAppendNothing(t *testing.T) {
	s, _ := newMockStore(t)
	if err := s.AppendAndPersist(context.Background(), nil); err != nil {
		t.Fatalf("AppendAndPersist(nil): %v", err)
	}
}

func TestPostgresStoreRemoveByName(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(deleteFirstSQL)).
		WithArgs("Root").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteFirstSQL)).
		WithArgs("Missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.RemoveByName(context.Background(), "Root")
	if err != nil || !removed {
		t.Fatalf("RemoveByName(Root) = %v, %v", removed, err)
	}
	removed, err = s.RemoveByName(context.Background(), "Missing")
	if err != nil || removed {
		t.Fatalf("RemoveByName(Missing) = %v, %v", removed, err)
	}
}
