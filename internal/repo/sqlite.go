package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
	"github.com/prajyotrote/coaching-os-sub000/internal/platform/logger"
)

const dateLayout = "2006-01-02"

// SQLite is the local backend. Timestamps are stored as UTC RFC3339 text so
// range filters can compare strings.
type SQLite struct {
	db   *sql.DB
	feed Feed
	log  *logger.Logger
	now  func() time.Time
}

type Option func(*SQLite)

func WithFeed(feed Feed) Option {
	return func(s *SQLite) { s.feed = feed }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *SQLite) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *SQLite) { s.now = now }
}

func NewSQLite(db *sql.DB, opts ...Option) *SQLite {
	s := &SQLite{db: db, feed: NewLocalFeed(), log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLite) DB() *sql.DB { return s.db }

func (s *SQLite) Subscribe(table Table, onChange func(Change)) func() {
	return s.feed.Subscribe(table, onChange)
}

// publish never fails a write that already committed.
func (s *SQLite) publish(ctx context.Context, table Table, userID string, op Op, id string) {
	c := Change{Table: table, UserID: userID, Op: op, ID: id, At: s.now().UTC()}
	if err := s.feed.Publish(ctx, c); err != nil {
		s.log.Warn("publish change failed", "table", table, "user_id", userID, "error", err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return t, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (s *SQLite) insert(ctx context.Context, table Table, userID, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve %s id: %w", table, err)
	}
	s.publish(ctx, table, userID, OpInsert, strconv.FormatInt(id, 10))
	return id, nil
}

func (s *SQLite) InsertActivity(ctx context.Context, userID string, in model.ActivityLog) (int64, error) {
	return s.insert(ctx, TableActivity, userID,
		`INSERT INTO activity_logs(user_id, steps, logged_at) VALUES(?, ?, ?)`,
		userID, in.Steps, formatTime(in.Timestamp))
}

func (s *SQLite) InsertWorkout(ctx context.Context, userID string, in model.WorkoutLog) (int64, error) {
	return s.insert(ctx, TableWorkouts, userID,
		`INSERT INTO workout_logs(user_id, completed, kind, duration_min, logged_at) VALUES(?, ?, ?, ?, ?)`,
		userID, boolToInt(in.Completed), in.Kind, in.DurationMin, formatTime(in.Timestamp))
}

func (s *SQLite) InsertWater(ctx context.Context, userID string, in model.WaterLog) (int64, error) {
	return s.insert(ctx, TableWater, userID,
		`INSERT INTO water_logs(user_id, ml, logged_at) VALUES(?, ?, ?)`,
		userID, in.Milliliters, formatTime(in.Timestamp))
}

func (s *SQLite) InsertMeal(ctx context.Context, userID string, in model.MealLog) (int64, error) {
	return s.insert(ctx, TableMeals, userID, `
INSERT INTO meal_logs(user_id, name, calories, protein_g, carbs_g, fat_g, logged_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, userID, in.Name, in.Calories, in.ProteinG, in.CarbsG, in.FatG, formatTime(in.Timestamp))
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// UpsertSleep replaces the record for its date.
func (s *SQLite) UpsertSleep(ctx context.Context, userID string, in model.SleepDailyRecord) error {
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return fmt.Errorf("invalid sleep date %q, expected YYYY-MM-DD", in.Date)
	}
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO sleep_daily(user_id, date, total_sleep_minutes, bedtime, wake_time, awake_minutes, rem_minutes, light_minutes, deep_minutes, bedtime_variance_minutes, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(user_id, date) DO UPDATE SET
  total_sleep_minutes = excluded.total_sleep_minutes,
  bedtime = excluded.bedtime,
  wake_time = excluded.wake_time,
  awake_minutes = excluded.awake_minutes,
  rem_minutes = excluded.rem_minutes,
  light_minutes = excluded.light_minutes,
  deep_minutes = excluded.deep_minutes,
  bedtime_variance_minutes = excluded.bedtime_variance_minutes,
  updated_at = CURRENT_TIMESTAMP
`, userID, in.Date, in.TotalSleepMinutes, nullableTime(in.Bedtime), nullableTime(in.WakeTime),
		in.AwakeMinutes, in.RemMinutes, in.LightMinutes, in.DeepMinutes, in.BedtimeVarianceMinutes); err != nil {
		return fmt.Errorf("upsert sleep record: %w", err)
	}
	s.publish(ctx, TableSleep, userID, OpUpdate, in.Date)
	return nil
}

func (s *SQLite) SaveTargets(ctx context.Context, userID string, in model.ProfileTargets) error {
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO profile_targets(user_id, step_target, water_target_ml, calorie_target, workout_target, sleep_target_minutes, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  step_target = excluded.step_target,
  water_target_ml = excluded.water_target_ml,
  calorie_target = excluded.calorie_target,
  workout_target = excluded.workout_target,
  sleep_target_minutes = excluded.sleep_target_minutes,
  updated_at = excluded.updated_at
`, userID, in.StepTarget, in.WaterTargetMl, in.CalorieTarget, in.WorkoutTarget, in.SleepTargetMinutes, formatTime(s.now())); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	s.publish(ctx, TableTargets, userID, OpUpdate, userID)
	return nil
}

func (s *SQLite) SaveProfile(ctx context.Context, userID string, in model.OnboardingProfile) error {
	conditions := in.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	raw, err := json.Marshal(conditions)
	if err != nil {
		return fmt.Errorf("encode conditions: %w", err)
	}
	dob := ""
	if !in.DOB.IsZero() {
		dob = in.DOB.Format(dateLayout)
	}
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO onboarding_profiles(user_id, gender, dob, height_cm, weight_kg, activity_multiplier, smokes, drinks, conditions_json, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  gender = excluded.gender,
  dob = excluded.dob,
  height_cm = excluded.height_cm,
  weight_kg = excluded.weight_kg,
  activity_multiplier = excluded.activity_multiplier,
  smokes = excluded.smokes,
  drinks = excluded.drinks,
  conditions_json = excluded.conditions_json,
  updated_at = excluded.updated_at
`, userID, in.Gender, dob, in.HeightCm, in.WeightKg, in.ActivityMultiplier, boolToInt(in.Smokes), boolToInt(in.Drinks), string(raw), formatTime(s.now())); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.publish(ctx, TableProfile, userID, OpUpdate, userID)
	return nil
}

// DeleteLog removes one row from a timestamped log table owned by userID.
func (s *SQLite) DeleteLog(ctx context.Context, table Table, userID string, id int64) error {
	switch table {
	case TableActivity, TableWorkouts, TableWater, TableMeals:
	default:
		return fmt.Errorf("cannot delete rows from %s", table)
	}
	if id <= 0 {
		return fmt.Errorf("log id must be > 0")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+string(table)+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s row: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s row %d not found", table, id)
	}
	s.publish(ctx, table, userID, OpDelete, strconv.FormatInt(id, 10))
	return nil
}

func (s *SQLite) FetchActivity(ctx context.Context, userID string, since time.Time) ([]model.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, steps, logged_at FROM activity_logs
WHERE user_id = ? AND logged_at >= ?
ORDER BY logged_at ASC, id ASC
`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("fetch activity logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.ActivityLog, 0)
	for rows.Next() {
		var item model.ActivityLog
		var raw string
		if err := rows.Scan(&item.ID, &item.Steps, &raw); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		if item.Timestamp, err = parseTime("activity logged_at", raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity logs: %w", err)
	}
	return items, nil
}

func (s *SQLite) FetchWorkouts(ctx context.Context, userID string, since time.Time) ([]model.WorkoutLog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, completed, kind, duration_min, logged_at FROM workout_logs
WHERE user_id = ? AND logged_at >= ?
ORDER BY logged_at ASC, id ASC
`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("fetch workout logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.WorkoutLog, 0)
	for rows.Next() {
		var item model.WorkoutLog
		var completed int
		var raw string
		if err := rows.Scan(&item.ID, &completed, &item.Kind, &item.DurationMin, &raw); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		item.Completed = completed == 1
		if item.Timestamp, err = parseTime("workout logged_at", raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout logs: %w", err)
	}
	return items, nil
}

func (s *SQLite) FetchWater(ctx context.Context, userID string, since time.Time) ([]model.WaterLog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, ml, logged_at FROM water_logs
WHERE user_id = ? AND logged_at >= ?
ORDER BY logged_at ASC, id ASC
`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("fetch water logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.WaterLog, 0)
	for rows.Next() {
		var item model.WaterLog
		var raw string
		if err := rows.Scan(&item.ID, &item.Milliliters, &raw); err != nil {
			return nil, fmt.Errorf("scan water log: %w", err)
		}
		if item.Timestamp, err = parseTime("water logged_at", raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water logs: %w", err)
	}
	return items, nil
}

func (s *SQLite) FetchMeals(ctx context.Context, userID string, since time.Time) ([]model.MealLog, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, calories, protein_g, carbs_g, fat_g, logged_at FROM meal_logs
WHERE user_id = ? AND logged_at >= ?
ORDER BY logged_at ASC, id ASC
`, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("fetch meal logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.MealLog, 0)
	for rows.Next() {
		var item model.MealLog
		var raw string
		if err := rows.Scan(&item.ID, &item.Name, &item.Calories, &item.ProteinG, &item.CarbsG, &item.FatG, &raw); err != nil {
			return nil, fmt.Errorf("scan meal log: %w", err)
		}
		if item.Timestamp, err = parseTime("meal logged_at", raw); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal logs: %w", err)
	}
	return items, nil
}

func (s *SQLite) FetchSleep(ctx context.Context, userID string, sinceDate string) ([]model.SleepDailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT date, total_sleep_minutes, IFNULL(bedtime, ''), IFNULL(wake_time, ''), awake_minutes, rem_minutes, light_minutes, deep_minutes, bedtime_variance_minutes
FROM sleep_daily
WHERE user_id = ? AND date >= ?
ORDER BY date ASC
`, userID, sinceDate)
	if err != nil {
		return nil, fmt.Errorf("fetch sleep records: %w", err)
	}
	defer rows.Close()

	items := make([]model.SleepDailyRecord, 0)
	for rows.Next() {
		var item model.SleepDailyRecord
		var bedRaw, wakeRaw string
		if err := rows.Scan(&item.Date, &item.TotalSleepMinutes, &bedRaw, &wakeRaw, &item.AwakeMinutes, &item.RemMinutes, &item.LightMinutes, &item.DeepMinutes, &item.BedtimeVarianceMinutes); err != nil {
			return nil, fmt.Errorf("scan sleep record: %w", err)
		}
		if bedRaw != "" {
			t, err := parseTime("bedtime", bedRaw)
			if err != nil {
				return nil, err
			}
			item.Bedtime = &t
		}
		if wakeRaw != "" {
			t, err := parseTime("wake_time", wakeRaw)
			if err != nil {
				return nil, err
			}
			item.WakeTime = &t
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sleep records: %w", err)
	}
	return items, nil
}

func (s *SQLite) Targets(ctx context.Context, userID string) (*model.ProfileTargets, error) {
	var out model.ProfileTargets
	var updatedRaw string
	err := s.db.QueryRowContext(ctx, `
SELECT step_target, water_target_ml, calorie_target, workout_target, sleep_target_minutes, updated_at
FROM profile_targets WHERE user_id = ?
`, userID).Scan(&out.StepTarget, &out.WaterTargetMl, &out.CalorieTarget, &out.WorkoutTarget, &out.SleepTargetMinutes, &updatedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	out.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &out, nil
}

func (s *SQLite) Profile(ctx context.Context, userID string) (*model.OnboardingProfile, error) {
	var out model.OnboardingProfile
	var dobRaw, conditionsRaw, updatedRaw string
	var smokes, drinks int
	err := s.db.QueryRowContext(ctx, `
SELECT gender, dob, height_cm, weight_kg, activity_multiplier, smokes, drinks, conditions_json, updated_at
FROM onboarding_profiles WHERE user_id = ?
`, userID).Scan(&out.Gender, &dobRaw, &out.HeightCm, &out.WeightKg, &out.ActivityMultiplier, &smokes, &drinks, &conditionsRaw, &updatedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	out.Smokes = smokes == 1
	out.Drinks = drinks == 1
	if dobRaw != "" {
		dob, err := time.Parse(dateLayout, dobRaw)
		if err != nil {
			return nil, fmt.Errorf("parse dob: %w", err)
		}
		out.DOB = dob
	}
	if err := json.Unmarshal([]byte(conditionsRaw), &out.Conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	out.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &out, nil
}

var _ Source = (*SQLite)(nil)
