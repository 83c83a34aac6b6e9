package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
)

const (
	ConfigUserID              = "user_id"
	ConfigStreakLookbackDays  = "streak_lookback_days"
	ConfigKcalStreakThreshold = "kcal_streak_threshold"
	ConfigRecoveryStrategy    = "recovery_strategy"
)

var settableKeys = []string{ConfigStreakLookbackDays, ConfigKcalStreakThreshold, ConfigRecoveryStrategy}

type Settings struct {
	UserID              string                   `json:"user_id"`
	StreakLookbackDays  int                      `json:"streak_lookback_days"`
	KcalStreakThreshold int                      `json:"kcal_streak_threshold"`
	RecoveryStrategy    metrics.RecoveryStrategy `json:"recovery_strategy"`
}

func (s Settings) DayOptions() metrics.DayOptions {
	return metrics.DayOptions{Recovery: s.RecoveryStrategy, Streaks: s.StreakOptions()}
}

func (s Settings) StreakOptions() metrics.StreakOptions {
	return metrics.StreakOptions{LookbackDays: s.StreakLookbackDays, KcalThreshold: s.KcalStreakThreshold}
}

// SetConfig stores a user setting after validating it. The user id is not settable.
func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)
	if key == "" {
		return fmt.Errorf("config key is required")
	}
	if err := validateSetting(key, value); err != nil {
		return err
	}
	return putConfig(db, key, value)
}

func validateSetting(key, value string) error {
	switch key {
	case ConfigStreakLookbackDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 365 {
			return fmt.Errorf("%s must be an integer between 1 and 365", key)
		}
	case ConfigKcalStreakThreshold:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be an integer >= 0", key)
		}
	case ConfigRecoveryStrategy:
		if _, err := metrics.ParseRecoveryStrategy(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown config key %q (expected one of %s)", key, strings.Join(settableKeys, ", "))
	}
	return nil
}

func putConfig(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// EnsureUserID returns the local user id, generating one on first use.
func EnsureUserID(db *sql.DB) (string, error) {
	id, ok, err := GetConfig(db, ConfigUserID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if _, err := db.Exec(`INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, ConfigUserID, id); err != nil {
		return "", fmt.Errorf("store user id: %w", err)
	}
	// Another process may have won the insert.
	stored, _, err := GetConfig(db, ConfigUserID)
	if err != nil {
		return "", err
	}
	return stored, nil
}

func LoadSettings(db *sql.DB) (Settings, error) {
	userID, err := EnsureUserID(db)
	if err != nil {
		return Settings{}, err
	}
	all, err := ListConfig(db)
	if err != nil {
		return Settings{}, err
	}
	out := Settings{
		UserID:              userID,
		StreakLookbackDays:  metrics.DefaultStreakLookbackDays,
		KcalStreakThreshold: metrics.DefaultKcalStreakThreshold,
		RecoveryStrategy:    metrics.RecoverySleepOnly,
	}
	if v, ok := all[ConfigStreakLookbackDays]; ok {
		if out.StreakLookbackDays, err = strconv.Atoi(v); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", ConfigStreakLookbackDays, err)
		}
	}
	if v, ok := all[ConfigKcalStreakThreshold]; ok {
		if out.KcalStreakThreshold, err = strconv.Atoi(v); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", ConfigKcalStreakThreshold, err)
		}
	}
	if v, ok := all[ConfigRecoveryStrategy]; ok {
		if out.RecoveryStrategy, err = metrics.ParseRecoveryStrategy(v); err != nil {
			return Settings{}, err
		}
	}
	return out, nil
}
