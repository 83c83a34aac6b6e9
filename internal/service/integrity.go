package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	InvalidTimestamps int `json:"invalid_timestamps"`
	ImplausibleSleep  int `json:"implausible_sleep"`
	ForeignUserRows   int `json:"foreign_user_rows"`
	FixedRows         int `json:"fixed_rows,omitempty"`
}

func (r DoctorReport) Clean() bool {
	return r.InvalidTimestamps == 0 && r.ImplausibleSleep == 0 && r.ForeignUserRows == 0
}

func BackupFileName(now time.Time) string {
	return fmt.Sprintf("coach-%s.db", now.Format("20060102-150405"))
}

func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup verifies the sidecar checksum when present before copying.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var timestampedTables = []string{"activity_logs", "workout_logs", "water_logs", "meal_logs"}

// RunDoctor checks stored rows against what the engine can read. With fix it
// deletes rows with unparseable timestamps and clamps sleep longer than a day.
func RunDoctor(db *sql.DB, userID string, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	invalid := map[string][]int64{}
	for _, table := range timestampedTables {
		rows, err := db.Query(`SELECT id, logged_at FROM ` + table)
		if err != nil {
			return report, fmt.Errorf("doctor timestamp query on %s: %w", table, err)
		}
		for rows.Next() {
			var id int64
			var raw string
			if err := rows.Scan(&id, &raw); err != nil {
				_ = rows.Close()
				return report, fmt.Errorf("doctor timestamp scan on %s: %w", table, err)
			}
			if _, err := time.Parse(time.RFC3339, raw); err != nil {
				report.InvalidTimestamps++
				invalid[table] = append(invalid[table], id)
			}
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor timestamp iterate on %s: %w", table, err)
		}
		_ = rows.Close()

		var foreign int
		if err := db.QueryRow(`SELECT COUNT(1) FROM `+table+` WHERE user_id <> ?`, userID).Scan(&foreign); err != nil {
			return report, fmt.Errorf("doctor user check on %s: %w", table, err)
		}
		report.ForeignUserRows += foreign
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM sleep_daily WHERE total_sleep_minutes > 1440`).Scan(&report.ImplausibleSleep); err != nil {
		return report, fmt.Errorf("doctor sleep check: %w", err)
	}

	if !fix || (report.InvalidTimestamps == 0 && report.ImplausibleSleep == 0) {
		return report, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	for table, ids := range invalid {
		for _, id := range ids {
			if _, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix %s row %d: %w", table, id, err)
			}
			report.FixedRows++
		}
	}
	res, err := tx.Exec(`UPDATE sleep_daily SET total_sleep_minutes = 1440, updated_at = CURRENT_TIMESTAMP WHERE total_sleep_minutes > 1440`)
	if err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("doctor fix sleep rows: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		report.FixedRows += int(n)
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
