package model

import "time"

type ActivityLog struct {
	ID        int64
	Timestamp time.Time
	Steps     int
}

type WorkoutLog struct {
	ID          int64
	Timestamp   time.Time
	Completed   bool
	Kind        string
	DurationMin int
}

type WaterLog struct {
	ID          int64
	Timestamp   time.Time
	Milliliters int
}

// MealLog holds the totals of one logged meal. A day's intake is the sum of its meals.
type MealLog struct {
	ID        int64
	Timestamp time.Time
	Name      string
	Calories  int
	ProteinG  float64
	CarbsG    float64
	FatG      float64
}

// SleepDailyRecord is keyed by calendar date; there is at most one per date.
type SleepDailyRecord struct {
	Date                   string
	TotalSleepMinutes      int
	Bedtime                *time.Time
	WakeTime               *time.Time
	AwakeMinutes           int
	RemMinutes             int
	LightMinutes           int
	DeepMinutes            int
	BedtimeVarianceMinutes int
}

type ProfileTargets struct {
	StepTarget         int
	WaterTargetMl      int
	CalorieTarget      int
	WorkoutTarget      int
	SleepTargetMinutes int
	UpdatedAt          time.Time
}

type OnboardingProfile struct {
	Gender             string
	DOB                time.Time
	HeightCm           float64
	WeightKg           float64
	ActivityMultiplier float64
	Smokes             bool
	Drinks             bool
	Conditions         []string
	UpdatedAt          time.Time
}

type DailyTotals struct {
	Date         string `json:"date"`
	Steps        int    `json:"steps"`
	WorkoutCount int    `json:"workout_count"`
	WaterMl      int    `json:"water_ml"`
	Calories     int    `json:"calories"`
	SleepMinutes int    `json:"sleep_minutes"`
}
