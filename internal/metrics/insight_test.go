package metrics_test

import (
	"testing"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

func TestSelectInsightPrefersHydration(t *testing.T) {
	t.Parallel()
	got := metrics.SelectInsight(metrics.InsightInput{
		WaterRatio:   0.2,
		CalorieRatio: 0.1,
		SleepHours:   4,
		HasSleep:     true,
		Steps:        100,
		Hour:         10,
	})
	if got.ID != "hydration" || got.Priority != 1 {
		t.Fatalf("expected hydration insight, got %+v", got)
	}
}

func TestCandidatesOrderedByPriority(t *testing.T) {
	t.Parallel()
	got := metrics.Candidates(metrics.InsightInput{
		WaterRatio:   0.1,
		CalorieRatio: 0.1,
		WorkoutCount: 0,
		SleepHours:   5,
		HasSleep:     true,
		Steps:        1000,
		Hour:         17,
	})
	want := []string{"hydration", "nutrition", "workout", "recovery", "movement"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("candidate %d: expected %s, got %s", i, want[i], got[i].ID)
		}
	}
}

func TestTimeGatedTriggers(t *testing.T) {
	t.Parallel()
	in := metrics.InsightInput{WaterRatio: 1, CalorieRatio: 0.1, SleepHours: 8, Steps: 1000, Hour: 11}
	if got := metrics.SelectInsight(in); got.ID != "strong_day" || got.Priority != 99 {
		t.Fatalf("expected fallback before noon, got %+v", got)
	}
	in.Hour = 12
	if got := metrics.SelectInsight(in); got.ID != "nutrition" {
		t.Fatalf("expected nutrition at noon, got %+v", got)
	}
	in.CalorieRatio = 1
	in.Hour = 15
	if got := metrics.SelectInsight(in); got.ID != "workout" {
		t.Fatalf("expected workout prompt at 15h, got %+v", got)
	}
	in.WorkoutCount = 1
	in.Hour = 16
	if got := metrics.SelectInsight(in); got.ID != "movement" {
		t.Fatalf("expected walk prompt at 16h, got %+v", got)
	}
}

func TestInsightInputForUsesDefaults(t *testing.T) {
	t.Parallel()
	in := metrics.InsightInputFor(model.DailyTotals{WaterMl: 1500, Calories: 500, SleepMinutes: 390, Steps: 42}, model.ProfileTargets{}, testNow)
	if in.WaterRatio != 0.5 || in.CalorieRatio != 0.25 || in.SleepHours != 6.5 || !in.HasSleep || in.Hour != 14 || in.Steps != 42 {
		t.Fatalf("unexpected insight input %+v", in)
	}
}

func TestEvaluateDay(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	logs := metrics.LogSet{
		Activity: []model.ActivityLog{{Timestamp: at(18, 7), Steps: 8000}},
		Workouts: []model.WorkoutLog{{Timestamp: at(18, 8), Completed: true}},
		Water:    []model.WaterLog{{Timestamp: at(18, 8), Milliliters: 3000}},
		Meals:    []model.MealLog{{Timestamp: at(18, 8), Calories: 2000}},
		Sleep:    []model.SleepDailyRecord{{Date: "2026-10-18", TotalSleepMinutes: 480}},
	}
	got, err := metrics.EvaluateDay(logs, nil, now, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("evaluate day: %v", err)
	}
	if got.DailyScore.Total != 100 || got.Recovery != 100 || got.Readiness != metrics.BandGreen {
		t.Fatalf("unexpected scores %+v", got)
	}
	// 48 from steps plus 20 for one session.
	if got.Strain != metrics.StrainModerate {
		t.Fatalf("expected moderate strain, got %s", got.Strain)
	}
	if got.KcalBurned != (metrics.KcalBurned{FromSteps: 320, FromWorkouts: 300, Total: 620}) {
		t.Fatalf("unexpected kcal split %+v", got.KcalBurned)
	}
	if got.Insight.ID != "strong_day" || got.Strategy != metrics.RecoverySleepOnly {
		t.Fatalf("unexpected insight/strategy %+v %s", got.Insight, got.Strategy)
	}
	if got.Streaks.Workout.Current != 1 || got.Streaks.Steps.Current != 0 {
		t.Fatalf("unexpected streaks %+v", got.Streaks)
	}
}

func TestEvaluateDayRecoveryUsesFullNight(t *testing.T) {
	t.Parallel()
	logs := metrics.LogSet{
		Sleep: []model.SleepDailyRecord{{Date: "2026-10-18", TotalSleepMinutes: 420}},
	}
	targets := &model.ProfileTargets{SleepTargetMinutes: 420}
	for _, s := range []metrics.RecoveryStrategy{metrics.RecoverySleepOnly, metrics.RecoveryComposite} {
		got, err := metrics.EvaluateDay(logs, targets, testNow, metrics.DayOptions{Recovery: s})
		if err != nil {
			t.Fatalf("evaluate day: %v", err)
		}
		// 420/480 = 0.875: 88 sleep-only, 45 + 55*0.875 = 93 composite.
		want := map[metrics.RecoveryStrategy]int{metrics.RecoverySleepOnly: 88, metrics.RecoveryComposite: 93}[s]
		if got.Recovery != want {
			t.Fatalf("%s: expected recovery %d, got %d", s, want, got.Recovery)
		}
	}
}

func TestShortNightNeedsLoggedSleep(t *testing.T) {
	t.Parallel()
	in := metrics.InsightInput{WaterRatio: 1, CalorieRatio: 1, WorkoutCount: 1, Steps: 9000, Hour: 10}
	if got := metrics.SelectInsight(in); got.ID != "strong_day" {
		t.Fatalf("expected fallback with no sleep logged, got %+v", got)
	}
	in.HasSleep = true
	in.SleepHours = 5
	if got := metrics.SelectInsight(in); got.ID != "recovery" {
		t.Fatalf("expected short night insight, got %+v", got)
	}

	logs := metrics.LogSet{
		Water:    []model.WaterLog{{Timestamp: at(18, 8), Milliliters: 3000}},
		Meals:    []model.MealLog{{Timestamp: at(18, 8), Calories: 2000}},
		Workouts: []model.WorkoutLog{{Timestamp: at(18, 7), Completed: true}},
		Activity: []model.ActivityLog{{Timestamp: at(18, 9), Steps: 9000}},
	}
	report, err := metrics.EvaluateDay(logs, nil, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("evaluate day: %v", err)
	}
	if report.Insight.ID != "strong_day" {
		t.Fatalf("expected fallback without a sleep record, got %+v", report.Insight)
	}
	logs.Sleep = []model.SleepDailyRecord{{Date: "2026-10-18", TotalSleepMinutes: 0}}
	report, err = metrics.EvaluateDay(logs, nil, testNow, metrics.DayOptions{})
	if err != nil {
		t.Fatalf("evaluate day: %v", err)
	}
	if report.Insight.ID != "recovery" {
		t.Fatalf("expected short night for a logged zero-minute night, got %+v", report.Insight)
	}
}
