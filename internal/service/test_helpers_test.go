package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/db"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
)

const testUser = "user-1"

// 2026-10-18 is a Sunday.
var testNow = time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func newTestRepo(t *testing.T) *repo.SQLite {
	t.Helper()
	return repo.NewSQLite(newTestDB(t))
}

func day(d, hour int) time.Time {
	return time.Date(2026, 10, d, hour, 0, 0, 0, time.UTC)
}
