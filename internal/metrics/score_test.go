package metrics_test

import (
	"math"
	"testing"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
)

func TestDailyScoreFullTargetsIsHundred(t *testing.T) {
	t.Parallel()
	got := metrics.DailyScore(metrics.DailyScoreInput{
		WaterMl:       3000,
		Calories:      2000,
		Steps:         8000,
		Workouts:      1,
		RecoveryScore: 100,
		WaterTargetMl: 3000,
		CalorieTarget: 2000,
		WorkoutTarget: 1,
	})
	if got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestDailyScoreCapsEachComponent(t *testing.T) {
	t.Parallel()
	got := metrics.ScoreDay(metrics.DailyScoreInput{
		WaterMl:       1500,
		Calories:      9000,
		Steps:         4000,
		Workouts:      0,
		RecoveryScore: 50,
		WaterTargetMl: 3000,
		CalorieTarget: 2000,
		WorkoutTarget: 1,
	})
	// 10 + 20 + 7.5 + 15
	if got.Total != 53 {
		t.Fatalf("expected 53, got %+v", got)
	}
	if got.Nutrition != 20 {
		t.Fatalf("expected nutrition capped at 20, got %v", got.Nutrition)
	}
}

func TestScoresStayInRangeForPathologicalInput(t *testing.T) {
	t.Parallel()
	inputs := []metrics.DailyScoreInput{
		{WaterMl: -500, Calories: -1, Steps: -8000, Workouts: -3, RecoveryScore: -40},
		{WaterMl: 1e6, Calories: 1e6, Steps: 1e7, Workouts: 50, RecoveryScore: 500, WaterTargetMl: 1, CalorieTarget: 1, WorkoutTarget: 1},
		{WaterMl: 100, Calories: 100, Steps: 100, Workouts: 1},
	}
	for i, in := range inputs {
		if got := metrics.DailyScore(in); got < 0 || got > 100 {
			t.Fatalf("input %d: daily score %d out of range", i, got)
		}
	}
	for _, s := range []metrics.RecoveryStrategy{metrics.RecoverySleepOnly, metrics.RecoveryComposite} {
		for _, in := range []metrics.RecoveryInput{
			{SleepMinutes: -100},
			{SleepMinutes: 5000, Steps: 1e6, Workouts: 40},
			{SleepMinutes: 0, Steps: 100000, Workouts: 10},
		} {
			if got := metrics.RecoveryScore(s, in); got < 0 || got > 100 {
				t.Fatalf("%s recovery %d out of range for %+v", s, got, in)
			}
		}
	}
	for _, bmi := range []float64{-5, 0, 10, 45, math.Inf(1)} {
		if got := metrics.HealthScore(true, true, bmi); got < 0 || got > 100 {
			t.Fatalf("health score %d out of range for bmi %v", got, bmi)
		}
	}
}

func TestRecoverySleepOnly(t *testing.T) {
	t.Parallel()
	cases := map[int]int{0: 0, 240: 50, 480: 100, 600: 100, 100: 21}
	for minutes, want := range cases {
		if got := metrics.RecoveryScore(metrics.RecoverySleepOnly, metrics.RecoveryInput{SleepMinutes: minutes}); got != want {
			t.Fatalf("sleep %d: expected %d, got %d", minutes, want, got)
		}
	}
}

func TestRecoveryCompositePenalties(t *testing.T) {
	t.Parallel()
	got := metrics.RecoveryScore(metrics.RecoveryComposite, metrics.RecoveryInput{
		SleepMinutes: 288,
		Steps:        7500,
	})
	// 45 + 33 - 4
	if got != 74 {
		t.Fatalf("expected 74, got %d", got)
	}
	got = metrics.RecoveryScore(metrics.RecoveryComposite, metrics.RecoveryInput{
		SleepMinutes: 480,
		Steps:        40000,
		Workouts:     6,
	})
	if got != 62 {
		t.Fatalf("expected penalties capped at 38 points, got %d", got)
	}
}

func TestParseRecoveryStrategy(t *testing.T) {
	t.Parallel()
	if s, err := metrics.ParseRecoveryStrategy(""); err != nil || s != metrics.RecoverySleepOnly {
		t.Fatalf("expected default sleep strategy, got %q %v", s, err)
	}
	if _, err := metrics.ParseRecoveryStrategy("hrv"); err == nil {
		t.Fatalf("expected unknown strategy to fail")
	}
}

func TestReadinessBands(t *testing.T) {
	t.Parallel()
	cases := map[int]metrics.Band{100: metrics.BandGreen, 70: metrics.BandGreen, 69: metrics.BandYellow, 40: metrics.BandYellow, 39: metrics.BandRed, 0: metrics.BandRed}
	for score, want := range cases {
		if got := metrics.Readiness(score); got != want {
			t.Fatalf("score %d: expected %s, got %s", score, want, got)
		}
	}
}

func TestStrainLabels(t *testing.T) {
	t.Parallel()
	cases := []struct {
		steps, workouts int
		want            metrics.StrainLevel
	}{
		{0, 0, metrics.StrainLow},
		{5000, 0, metrics.StrainLow},
		{6000, 0, metrics.StrainModerate},
		{10000, 0, metrics.StrainModerate},
		{10000, 1, metrics.StrainHigh},
		{0, 3, metrics.StrainModerate},
		{0, 9, metrics.StrainModerate},
		{2000, 3, metrics.StrainHigh},
	}
	for _, tc := range cases {
		if got := metrics.Strain(tc.steps, tc.workouts); got != tc.want {
			t.Fatalf("steps=%d workouts=%d: expected %s, got %s", tc.steps, tc.workouts, tc.want, got)
		}
	}
}
