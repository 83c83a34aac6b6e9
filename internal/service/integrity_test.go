package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prajyotrote/coaching-os-sub000/internal/db"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "coach.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	_ = sqldb.Close()

	backupDir := filepath.Join(dir, "backups")
	info, err := service.CreateBackup(dbPath, filepath.Join(backupDir, service.BackupFileName(testNow)))
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if filepath.Base(info.Path) != "coach-20261018-180000.db" || len(info.Checksum) != 64 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	items, err := service.ListBackups(backupDir)
	if err != nil || len(items) != 1 || items[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v err=%v", items, err)
	}

	if err := service.RestoreBackup(info.Path, dbPath, false); err == nil {
		t.Fatalf("expected restore over existing db without force to fail")
	}
	restored := filepath.Join(dir, "restored", "coach.db")
	if err := service.RestoreBackup(info.Path, restored, false); err != nil {
		t.Fatalf("restore backup: %v", err)
	}

	if err := os.WriteFile(info.Path+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("corrupt checksum: %v", err)
	}
	if err := service.RestoreBackup(info.Path, restored, true); err == nil {
		t.Fatalf("expected checksum mismatch to fail")
	}

	empty, err := service.ListBackups(filepath.Join(dir, "missing"))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list for missing dir, got %+v err=%v", empty, err)
	}
}

func TestDoctorDetectsAndFixes(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	stmts := []string{
		`INSERT INTO water_logs(user_id, ml, logged_at) VALUES('user-1', 250, 'yesterday')`,
		`INSERT INTO water_logs(user_id, ml, logged_at) VALUES('user-1', 250, '2026-10-18T09:00:00Z')`,
		`INSERT INTO meal_logs(user_id, calories, logged_at) VALUES('stranger', 300, '2026-10-18T09:00:00Z')`,
		`INSERT INTO sleep_daily(user_id, date, total_sleep_minutes) VALUES('user-1', '2026-10-18', 2000)`,
	}
	for _, stmt := range stmts {
		if _, err := sqldb.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	report, err := service.RunDoctor(sqldb, testUser, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.InvalidTimestamps != 1 || report.ImplausibleSleep != 1 || report.ForeignUserRows != 1 || report.Clean() {
		t.Fatalf("unexpected report %+v", report)
	}

	fixed, err := service.RunDoctor(sqldb, testUser, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if fixed.FixedRows != 2 {
		t.Fatalf("expected 2 fixed rows, got %+v", fixed)
	}
	after, err := service.RunDoctor(sqldb, testUser, false)
	if err != nil {
		t.Fatalf("doctor recheck: %v", err)
	}
	if after.InvalidTimestamps != 0 || after.ImplausibleSleep != 0 || after.ForeignUserRows != 1 {
		t.Fatalf("unexpected report after fix %+v", after)
	}
}
