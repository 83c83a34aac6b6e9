package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/model"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

func seedFullDay(t *testing.T, r *repo.SQLite, d int) {
	t.Helper()
	ctx := context.Background()
	if _, err := service.LogSteps(ctx, r, testUser, service.StepsInput{Steps: 10000, At: day(d, 9)}); err != nil {
		t.Fatalf("log steps: %v", err)
	}
	if _, err := service.LogWorkout(ctx, r, testUser, service.WorkoutInput{Kind: "run", DurationMin: 30, At: day(d, 7)}); err != nil {
		t.Fatalf("log workout: %v", err)
	}
	if _, err := service.LogWater(ctx, r, testUser, service.WaterInput{Milliliters: 3000, At: day(d, 10)}); err != nil {
		t.Fatalf("log water: %v", err)
	}
	if _, err := service.LogMeal(ctx, r, testUser, service.MealInput{Name: "lunch", Calories: 2000, At: day(d, 12)}); err != nil {
		t.Fatalf("log meal: %v", err)
	}
	date := day(d, 0).Format("2006-01-02")
	if err := service.RecordSleep(ctx, r, testUser, service.SleepInput{Date: date, TotalSleepMinutes: 480}); err != nil {
		t.Fatalf("record sleep: %v", err)
	}
}

func TestTodayCombinesAllSources(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	seedFullDay(t, r, 16)
	seedFullDay(t, r, 17)
	seedFullDay(t, r, 18)

	report, err := service.Today(context.Background(), r, testUser, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if report.Date != "2026-10-18" || report.DailyScore.Total != 100 || report.Recovery != 100 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Totals.Steps != 10000 || report.Totals.WaterMl != 3000 || report.Totals.SleepMinutes != 480 {
		t.Fatalf("unexpected totals %+v", report.Totals)
	}
	if report.Streaks.Workout.Current != 3 || report.Streaks.Steps.Current != 3 || report.Streaks.Hydration.Current != 3 {
		t.Fatalf("unexpected streaks %+v", report.Streaks)
	}
	if report.Insight.ID != "strong_day" {
		t.Fatalf("expected fallback insight, got %+v", report.Insight)
	}
}

func TestTodayIgnoresOtherUsers(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	if _, err := service.LogWater(ctx, r, "someone-else", service.WaterInput{Milliliters: 3000, At: day(18, 9)}); err != nil {
		t.Fatalf("log water: %v", err)
	}
	report, err := service.Today(ctx, r, testUser, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if report.Totals.WaterMl != 0 || report.Insight.ID != "hydration" {
		t.Fatalf("expected empty day with hydration insight, got %+v / %+v", report.Totals, report.Insight)
	}
}

func TestHistoryUsesRangeWindow(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	seedFullDay(t, r, 10)
	seedFullDay(t, r, 15)

	h, err := service.History(context.Background(), r, testUser, metrics.MetricSteps, metrics.RangeWeek, testNow, metrics.RecoverySleepOnly)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Chart) != 7 || h.Summary.Total != 10000 || h.Chart[3].Value != 10000 {
		t.Fatalf("unexpected week history %+v", h)
	}

	month, err := service.History(context.Background(), r, testUser, metrics.MetricKcal, metrics.RangeMonth, testNow, metrics.RecoverySleepOnly)
	if err != nil {
		t.Fatalf("month history: %v", err)
	}
	if month.Breakdown["steps"] != 800 || month.Breakdown["workouts"] != 600 {
		t.Fatalf("unexpected kcal breakdown %+v", month.Breakdown)
	}
}

func TestStreaksReport(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	seedFullDay(t, r, 12)
	seedFullDay(t, r, 13)
	seedFullDay(t, r, 17)

	got, err := service.Streaks(context.Background(), r, testUser, testNow, metrics.StreakOptions{})
	if err != nil {
		t.Fatalf("streaks: %v", err)
	}
	if got.Streaks.Workout.Current != 1 || got.Streaks.Workout.Longest != 2 || got.Streaks.Logging.Current != 1 {
		t.Fatalf("unexpected streaks %+v", got.Streaks)
	}
}

func TestLongestStreakSpansFullHistory(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	logWorkout := func(at time.Time) {
		t.Helper()
		if _, err := service.LogWorkout(ctx, r, testUser, service.WorkoutInput{Kind: "run", At: at}); err != nil {
			t.Fatalf("log workout: %v", err)
		}
	}
	// Ten days in a row two months back, twelve in a row more than a year back, and today.
	for i := 51; i <= 60; i++ {
		logWorkout(testNow.AddDate(0, 0, -i))
	}
	for i := 389; i <= 400; i++ {
		logWorkout(testNow.AddDate(0, 0, -i))
	}
	logWorkout(testNow)

	today, err := service.Today(ctx, r, testUser, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	streaks, err := service.Streaks(ctx, r, testUser, testNow, metrics.StreakOptions{})
	if err != nil {
		t.Fatalf("streaks: %v", err)
	}
	if today.Streaks.Workout != (metrics.Streak{Current: 1, Longest: 12}) {
		t.Fatalf("unexpected workout streak in day report %+v", today.Streaks.Workout)
	}
	if streaks.Streaks != today.Streaks {
		t.Fatalf("expected streak report to match day report, got %+v vs %+v", streaks.Streaks, today.Streaks)
	}
}

func TestRecoveryIgnoresSleepTarget(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	if err := service.SetTargets(ctx, r, testUser, model.ProfileTargets{SleepTargetMinutes: 420}); err != nil {
		t.Fatalf("set targets: %v", err)
	}
	if err := service.RecordSleep(ctx, r, testUser, service.SleepInput{Date: "2026-10-18", TotalSleepMinutes: 420}); err != nil {
		t.Fatalf("record sleep: %v", err)
	}
	report, err := service.Today(ctx, r, testUser, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	// 420 of a 480 minute night.
	if report.Recovery != 88 || report.Targets.SleepTargetMinutes != 420 {
		t.Fatalf("expected recovery 88 with a 420 minute target, got %d (%+v)", report.Recovery, report.Targets)
	}
	h, err := service.History(ctx, r, testUser, metrics.MetricRecovery, metrics.RangeWeek, testNow, metrics.RecoverySleepOnly)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if h.Chart[6].Value != 88 {
		t.Fatalf("expected recovery history 88 today, got %d", h.Chart[6].Value)
	}
}

func TestBodyRequiresProfile(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	if _, err := service.Body(ctx, r, testUser, testNow); !errors.Is(err, service.ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
	if err := service.SetProfile(ctx, r, testUser, service.ProfileInput{Gender: "male", DOB: "1996-05-01", HeightCm: 175, WeightKg: 70}, testNow); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	body, err := service.Body(ctx, r, testUser, testNow)
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.BMI != 22.9 || body.AgeYears != 30 || body.BMICategory != "Healthy" {
		t.Fatalf("unexpected body summary %+v", body)
	}
}
