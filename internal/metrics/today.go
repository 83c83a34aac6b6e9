package metrics

import (
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

type KcalBurned struct {
	FromSteps    int `json:"from_steps"`
	FromWorkouts int `json:"from_workouts"`
	Total        int `json:"total"`
}

type DayReport struct {
	Date        string               `json:"date"`
	Totals      model.DailyTotals    `json:"totals"`
	Targets     model.ProfileTargets `json:"targets"`
	DailyScore  DailyScoreBreakdown  `json:"daily_score"`
	Recovery    int                  `json:"recovery_score"`
	Strategy    RecoveryStrategy     `json:"recovery_strategy"`
	Readiness   Band                 `json:"readiness"`
	Strain      StrainLevel          `json:"strain"`
	KcalBurned  KcalBurned           `json:"kcal_burned"`
	Streaks     Streaks              `json:"streaks"`
	Insight     Insight              `json:"insight"`
	Suggestions []Insight            `json:"suggestions"`
}

type DayOptions struct {
	Recovery RecoveryStrategy
	Streaks  StreakOptions
}

// EvaluateDay computes every "today" figure from already-joined logs.
func EvaluateDay(logs LogSet, targets *model.ProfileTargets, now time.Time, opts DayOptions) (*DayReport, error) {
	resolved := ResolveTargets(targets)
	date := now.Format(dateLayout)
	totals := TotalsFor(date, logs, now.Location())

	recovery := RecoveryScore(opts.Recovery, RecoveryInput{
		SleepMinutes: totals.SleepMinutes,
		Steps:        totals.Steps,
		Workouts:     totals.WorkoutCount,
	})
	streaks, err := ComputeStreaks(logs, resolved, now, opts.Streaks)
	if err != nil {
		return nil, err
	}
	strategy := opts.Recovery
	if strategy == "" {
		strategy = RecoverySleepOnly
	}

	burned := KcalBurned{
		FromSteps:    stepKcal(totals.Steps),
		FromWorkouts: workoutKcal(totals.WorkoutCount),
	}
	burned.Total = burned.FromSteps + burned.FromWorkouts

	insightIn := InsightInputFor(totals, resolved, now)
	insightIn.HasSleep = hasSleepRecord(logs.Sleep, date)
	suggestions := Candidates(insightIn)
	return &DayReport{
		Date:    date,
		Totals:  totals,
		Targets: resolved,
		DailyScore: ScoreDay(DailyScoreInput{
			WaterMl:       totals.WaterMl,
			Calories:      totals.Calories,
			Steps:         totals.Steps,
			Workouts:      totals.WorkoutCount,
			RecoveryScore: recovery,
			WaterTargetMl: resolved.WaterTargetMl,
			CalorieTarget: resolved.CalorieTarget,
			WorkoutTarget: resolved.WorkoutTarget,
		}),
		Recovery:    recovery,
		Strategy:    strategy,
		Readiness:   Readiness(recovery),
		Strain:      Strain(totals.Steps, totals.WorkoutCount),
		KcalBurned:  burned,
		Streaks:     streaks,
		Insight:     suggestions[0],
		Suggestions: suggestions,
	}, nil
}

func hasSleepRecord(records []model.SleepDailyRecord, date string) bool {
	for _, r := range records {
		if r.Date == date {
			return true
		}
	}
	return false
}
