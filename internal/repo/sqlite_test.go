package repo_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/db"
	"github.com/prajyotrote/coaching-os-sub000/internal/model"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
)

func newTestRepo(t *testing.T, opts ...repo.Option) *repo.SQLite {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "coach.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return repo.NewSQLite(sqldb, opts...)
}

func TestFetchFiltersByUserAndSince(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	for _, in := range []struct {
		user string
		at   time.Time
	}{
		{"u1", base},
		{"u1", base.AddDate(0, 0, -10)},
		{"u2", base},
	} {
		if _, err := r.InsertActivity(ctx, in.user, model.ActivityLog{Timestamp: in.at, Steps: 1000}); err != nil {
			t.Fatalf("insert activity: %v", err)
		}
	}
	got, err := r.FetchActivity(ctx, "u1", base.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("fetch activity: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(base) || got[0].Steps != 1000 {
		t.Fatalf("unexpected activity rows %+v", got)
	}
}

func TestLogRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, 10, 18, 8, 15, 0, 0, loc)
	since := at.Add(-time.Hour)

	if _, err := r.InsertWorkout(ctx, "u", model.WorkoutLog{Timestamp: at, Completed: true, Kind: "run", DurationMin: 30}); err != nil {
		t.Fatalf("insert workout: %v", err)
	}
	if _, err := r.InsertWater(ctx, "u", model.WaterLog{Timestamp: at, Milliliters: 250}); err != nil {
		t.Fatalf("insert water: %v", err)
	}
	if _, err := r.InsertMeal(ctx, "u", model.MealLog{Timestamp: at, Name: "oats", Calories: 350, ProteinG: 12.5}); err != nil {
		t.Fatalf("insert meal: %v", err)
	}

	workouts, err := r.FetchWorkouts(ctx, "u", since)
	if err != nil || len(workouts) != 1 || !workouts[0].Completed || workouts[0].Kind != "run" || !workouts[0].Timestamp.Equal(at) {
		t.Fatalf("unexpected workouts %+v err=%v", workouts, err)
	}
	water, err := r.FetchWater(ctx, "u", since)
	if err != nil || len(water) != 1 || water[0].Milliliters != 250 {
		t.Fatalf("unexpected water %+v err=%v", water, err)
	}
	meals, err := r.FetchMeals(ctx, "u", since)
	if err != nil || len(meals) != 1 || meals[0].Calories != 350 || meals[0].ProteinG != 12.5 {
		t.Fatalf("unexpected meals %+v err=%v", meals, err)
	}
}

func TestUpsertSleepReplacesDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	wake := time.Date(2026, 10, 18, 6, 30, 0, 0, time.UTC)

	if err := r.UpsertSleep(ctx, "u", model.SleepDailyRecord{Date: "2026-10-18", TotalSleepMinutes: 300}); err != nil {
		t.Fatalf("upsert sleep: %v", err)
	}
	if err := r.UpsertSleep(ctx, "u", model.SleepDailyRecord{Date: "2026-10-18", TotalSleepMinutes: 420, WakeTime: &wake, DeepMinutes: 90}); err != nil {
		t.Fatalf("upsert sleep again: %v", err)
	}
	if err := r.UpsertSleep(ctx, "u", model.SleepDailyRecord{Date: "2026-10-01", TotalSleepMinutes: 400}); err != nil {
		t.Fatalf("upsert older sleep: %v", err)
	}
	got, err := r.FetchSleep(ctx, "u", "2026-10-12")
	if err != nil {
		t.Fatalf("fetch sleep: %v", err)
	}
	if len(got) != 1 || got[0].TotalSleepMinutes != 420 || got[0].DeepMinutes != 90 || got[0].WakeTime == nil || !got[0].WakeTime.Equal(wake) || got[0].Bedtime != nil {
		t.Fatalf("unexpected sleep rows %+v", got)
	}
	if err := r.UpsertSleep(ctx, "u", model.SleepDailyRecord{Date: "18/10/2026"}); err == nil {
		t.Fatalf("expected malformed date to fail")
	}
}

func TestTargetsAndProfileAbsentThenSaved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)

	targets, err := r.Targets(ctx, "u")
	if err != nil || targets != nil {
		t.Fatalf("expected no targets, got %+v err=%v", targets, err)
	}
	profile, err := r.Profile(ctx, "u")
	if err != nil || profile != nil {
		t.Fatalf("expected no profile, got %+v err=%v", profile, err)
	}

	if err := r.SaveTargets(ctx, "u", model.ProfileTargets{StepTarget: 12000, WaterTargetMl: 2500}); err != nil {
		t.Fatalf("save targets: %v", err)
	}
	if err := r.SaveTargets(ctx, "u", model.ProfileTargets{StepTarget: 9000}); err != nil {
		t.Fatalf("overwrite targets: %v", err)
	}
	targets, err = r.Targets(ctx, "u")
	if err != nil || targets == nil || targets.StepTarget != 9000 || targets.WaterTargetMl != 0 {
		t.Fatalf("unexpected targets %+v err=%v", targets, err)
	}

	dob := time.Date(1997, 3, 4, 0, 0, 0, 0, time.UTC)
	if err := r.SaveProfile(ctx, "u", model.OnboardingProfile{Gender: "female", DOB: dob, HeightCm: 165, WeightKg: 60, Smokes: true, Conditions: []string{"asthma"}}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	profile, err = r.Profile(ctx, "u")
	if err != nil || profile == nil {
		t.Fatalf("load profile: %+v err=%v", profile, err)
	}
	if !profile.DOB.Equal(dob) || !profile.Smokes || profile.Drinks || len(profile.Conditions) != 1 || profile.Conditions[0] != "asthma" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestWritesPublishChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r := newTestRepo(t, repo.WithClock(func() time.Time { return fixed }))

	var seen []repo.Change
	unsubscribe := r.Subscribe(repo.TableWater, func(c repo.Change) { seen = append(seen, c) })
	id, err := r.InsertWater(ctx, "u", model.WaterLog{Timestamp: fixed, Milliliters: 500})
	if err != nil {
		t.Fatalf("insert water: %v", err)
	}
	if _, err := r.InsertActivity(ctx, "u", model.ActivityLog{Timestamp: fixed, Steps: 10}); err != nil {
		t.Fatalf("insert activity: %v", err)
	}
	if err := r.DeleteLog(ctx, repo.TableWater, "u", id); err != nil {
		t.Fatalf("delete water: %v", err)
	}
	unsubscribe()
	if _, err := r.InsertWater(ctx, "u", model.WaterLog{Timestamp: fixed, Milliliters: 500}); err != nil {
		t.Fatalf("insert water after unsubscribe: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected insert and delete on water only, got %+v", seen)
	}
	if seen[0].Op != repo.OpInsert || seen[1].Op != repo.OpDelete || seen[0].UserID != "u" || !seen[0].At.Equal(fixed) {
		t.Fatalf("unexpected changes %+v", seen)
	}
}

func TestDeleteLogGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newTestRepo(t)
	id, err := r.InsertMeal(ctx, "owner", model.MealLog{Timestamp: time.Now(), Calories: 100})
	if err != nil {
		t.Fatalf("insert meal: %v", err)
	}
	if err := r.DeleteLog(ctx, repo.TableMeals, "intruder", id); err == nil {
		t.Fatalf("expected delete by another user to fail")
	}
	if err := r.DeleteLog(ctx, repo.TableSleep, "owner", id); err == nil {
		t.Fatalf("expected delete on sleep table to fail")
	}
}
