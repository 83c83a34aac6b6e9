package metrics

import (
	"fmt"
	"math"
	"strings"
)

const activityStepsBaseline = 8000

func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ratio returns value/target capped to [0,1]; a non-positive target yields 0.
func ratio(value, target float64) float64 {
	if target <= 0 || math.IsNaN(value) || value <= 0 {
		return 0
	}
	return math.Min(1, value/target)
}

type DailyScoreInput struct {
	WaterMl       int
	Calories      int
	Steps         int
	Workouts      int
	RecoveryScore int

	WaterTargetMl int
	CalorieTarget int
	WorkoutTarget int
}

type DailyScoreBreakdown struct {
	Hydration float64 `json:"hydration"`
	Nutrition float64 `json:"nutrition"`
	Activity  float64 `json:"activity"`
	Recovery  float64 `json:"recovery"`
	Total     int     `json:"total"`
}

func DailyScore(in DailyScoreInput) int {
	return ScoreDay(in).Total
}

// ScoreDay weights hydration 20, nutrition 20, activity 30 and recovery 30.
func ScoreDay(in DailyScoreInput) DailyScoreBreakdown {
	hydration := ratio(float64(in.WaterMl), float64(in.WaterTargetMl))
	nutrition := ratio(float64(in.Calories), float64(in.CalorieTarget))
	activity := (ratio(float64(in.Steps), activityStepsBaseline) + ratio(float64(in.Workouts), float64(in.WorkoutTarget))) / 2
	recovery := ratio(float64(in.RecoveryScore), 100)

	out := DailyScoreBreakdown{
		Hydration: hydration * 20,
		Nutrition: nutrition * 20,
		Activity:  activity * 30,
		Recovery:  recovery * 30,
	}
	out.Total = ClampScore(int(math.Round(out.Hydration + out.Nutrition + out.Activity + out.Recovery)))
	return out
}

type RecoveryStrategy string

const (
	RecoverySleepOnly RecoveryStrategy = "sleep"
	RecoveryComposite RecoveryStrategy = "composite"
)

func ParseRecoveryStrategy(s string) (RecoveryStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sleep", "sleep-only":
		return RecoverySleepOnly, nil
	case "composite":
		return RecoveryComposite, nil
	default:
		return "", fmt.Errorf("invalid recovery strategy %q (use sleep or composite)", s)
	}
}

type RecoveryInput struct {
	SleepMinutes int
	Steps        int
	Workouts     int
}

const (
	// Recovery compares sleep with a fixed full night, not the user's sleep target.
	recoverySleepMinutes = 480.0

	compositeSleepWeight     = 55.0
	compositeStepPenalty     = 8.0
	compositeWorkoutPenalty  = 30.0
	compositeStepCeiling     = 15000.0
	compositeWorkoutsCeiling = 3.0
)

func RecoveryScore(strategy RecoveryStrategy, in RecoveryInput) int {
	sleep := ratio(float64(in.SleepMinutes), recoverySleepMinutes)

	if strategy != RecoveryComposite {
		return ClampScore(int(math.Round(sleep * 100)))
	}

	v := (100 - compositeSleepWeight) + compositeSleepWeight*sleep
	v -= compositeStepPenalty * ratio(float64(in.Steps), compositeStepCeiling)
	v -= compositeWorkoutPenalty * ratio(float64(in.Workouts), compositeWorkoutsCeiling)
	return ClampScore(int(math.Round(v)))
}

type Band string

const (
	BandGreen  Band = "Green"
	BandYellow Band = "Yellow"
	BandRed    Band = "Red"
)

func Readiness(score int) Band {
	switch {
	case score >= 70:
		return BandGreen
	case score >= 40:
		return BandYellow
	default:
		return BandRed
	}
}

type StrainLevel string

const (
	StrainLow      StrainLevel = "Low"
	StrainModerate StrainLevel = "Moderate"
	StrainHigh     StrainLevel = "High"
)

func Strain(steps, workouts int) StrainLevel {
	stepScore := ratio(float64(steps), 10000) * 60
	w := workouts
	if w > 3 {
		w = 3
	}
	if w < 0 {
		w = 0
	}
	total := stepScore + float64(w*20)
	switch {
	case total >= 70:
		return StrainHigh
	case total >= 35:
		return StrainModerate
	default:
		return StrainLow
	}
}
