package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

// LogWriter is the write side of a backend.
type LogWriter interface {
	InsertActivity(ctx context.Context, userID string, in model.ActivityLog) (int64, error)
	InsertWorkout(ctx context.Context, userID string, in model.WorkoutLog) (int64, error)
	InsertWater(ctx context.Context, userID string, in model.WaterLog) (int64, error)
	InsertMeal(ctx context.Context, userID string, in model.MealLog) (int64, error)
	UpsertSleep(ctx context.Context, userID string, in model.SleepDailyRecord) error
	SaveTargets(ctx context.Context, userID string, in model.ProfileTargets) error
	SaveProfile(ctx context.Context, userID string, in model.OnboardingProfile) error
}

type StepsInput struct {
	Steps int
	At    time.Time
}

type WorkoutInput struct {
	Kind        string
	DurationMin int
	Skipped     bool
	At          time.Time
}

type WaterInput struct {
	Milliliters int
	At          time.Time
}

type MealInput struct {
	Name     string
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
	At       time.Time
}

type SleepInput struct {
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

type ProfileInput struct {
	Gender             string
	DOB                string
	HeightCm           float64
	WeightKg           float64
	ActivityMultiplier float64
	Smokes             bool
	Drinks             bool
	Conditions         []string
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

func LogSteps(ctx context.Context, w LogWriter, userID string, in StepsInput) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if err := validateNonNegativeInt("steps", in.Steps); err != nil {
		return 0, err
	}
	return w.InsertActivity(ctx, userID, model.ActivityLog{Timestamp: orNow(in.At, time.Now()), Steps: in.Steps})
}

func LogWorkout(ctx context.Context, w LogWriter, userID string, in WorkoutInput) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if err := validateNonNegativeInt("duration", in.DurationMin); err != nil {
		return 0, err
	}
	return w.InsertWorkout(ctx, userID, model.WorkoutLog{
		Timestamp:   orNow(in.At, time.Now()),
		Completed:   !in.Skipped,
		Kind:        strings.TrimSpace(strings.ToLower(in.Kind)),
		DurationMin: in.DurationMin,
	})
}

func LogWater(ctx context.Context, w LogWriter, userID string, in WaterInput) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if in.Milliliters <= 0 {
		return 0, fmt.Errorf("water amount must be > 0")
	}
	return w.InsertWater(ctx, userID, model.WaterLog{Timestamp: orNow(in.At, time.Now()), Milliliters: in.Milliliters})
}

func LogMeal(ctx context.Context, w LogWriter, userID string, in MealInput) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return 0, err
	}
	for name, v := range map[string]float64{"protein": in.ProteinG, "carbs": in.CarbsG, "fat": in.FatG} {
		if err := validateNonNegativeFloat(name, v); err != nil {
			return 0, err
		}
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "meal"
	}
	return w.InsertMeal(ctx, userID, model.MealLog{
		Timestamp: orNow(in.At, time.Now()),
		Name:      name,
		Calories:  in.Calories,
		ProteinG:  in.ProteinG,
		CarbsG:    in.CarbsG,
		FatG:      in.FatG,
	})
}

// RecordSleep replaces the sleep record for in.Date.
func RecordSleep(ctx context.Context, w LogWriter, userID string, in SleepInput) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := validateDate("sleep date", in.Date); err != nil {
		return err
	}
	fields := []struct {
		name  string
		value int
	}{
		{"sleep minutes", in.TotalSleepMinutes},
		{"awake minutes", in.AwakeMinutes},
		{"rem minutes", in.RemMinutes},
		{"light minutes", in.LightMinutes},
		{"deep minutes", in.DeepMinutes},
		{"bedtime variance", in.BedtimeVarianceMinutes},
	}
	for _, f := range fields {
		if err := validateNonNegativeInt(f.name, f.value); err != nil {
			return err
		}
	}
	if in.TotalSleepMinutes > 24*60 {
		return fmt.Errorf("sleep minutes must be <= 1440")
	}
	if in.RemMinutes+in.LightMinutes+in.DeepMinutes > in.TotalSleepMinutes {
		return fmt.Errorf("sleep stages exceed total sleep minutes")
	}
	if in.Bedtime != nil && in.WakeTime != nil && !in.WakeTime.After(*in.Bedtime) {
		return fmt.Errorf("wake time must be after bedtime")
	}
	return w.UpsertSleep(ctx, userID, model.SleepDailyRecord{
		Date:                   in.Date,
		TotalSleepMinutes:      in.TotalSleepMinutes,
		Bedtime:                in.Bedtime,
		WakeTime:               in.WakeTime,
		AwakeMinutes:           in.AwakeMinutes,
		RemMinutes:             in.RemMinutes,
		LightMinutes:           in.LightMinutes,
		DeepMinutes:            in.DeepMinutes,
		BedtimeVarianceMinutes: in.BedtimeVarianceMinutes,
	})
}

// SetTargets stores targets as given. Zero fields fall back to defaults when read.
func SetTargets(ctx context.Context, w LogWriter, userID string, in model.ProfileTargets) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	for name, v := range map[string]int{
		"step target":    in.StepTarget,
		"water target":   in.WaterTargetMl,
		"calorie target": in.CalorieTarget,
		"workout target": in.WorkoutTarget,
		"sleep target":   in.SleepTargetMinutes,
	} {
		if err := validateNonNegativeInt(name, v); err != nil {
			return err
		}
	}
	return w.SaveTargets(ctx, userID, in)
}

func SetProfile(ctx context.Context, w LogWriter, userID string, in ProfileInput, now time.Time) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if in.HeightCm <= 0 {
		return fmt.Errorf("height must be > 0")
	}
	if in.WeightKg <= 0 {
		return fmt.Errorf("weight must be > 0")
	}
	if in.ActivityMultiplier != 0 && (in.ActivityMultiplier < 1 || in.ActivityMultiplier > 2.5) {
		return fmt.Errorf("activity multiplier must be between 1 and 2.5")
	}
	gender := strings.TrimSpace(strings.ToLower(in.Gender))
	switch gender {
	case "", "male", "female", "other":
	default:
		return fmt.Errorf("gender must be male, female, or other")
	}
	var dob time.Time
	if strings.TrimSpace(in.DOB) != "" {
		if err := validateDate("date of birth", in.DOB); err != nil {
			return err
		}
		dob, _ = time.Parse(dateLayout, in.DOB)
		if dob.After(now) {
			return fmt.Errorf("date of birth must not be in the future")
		}
	}
	conditions := make([]string, 0, len(in.Conditions))
	for _, c := range in.Conditions {
		if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
			conditions = append(conditions, c)
		}
	}
	return w.SaveProfile(ctx, userID, model.OnboardingProfile{
		Gender:             gender,
		DOB:                dob,
		HeightCm:           in.HeightCm,
		WeightKg:           in.WeightKg,
		ActivityMultiplier: in.ActivityMultiplier,
		Smokes:             in.Smokes,
		Drinks:             in.Drinks,
		Conditions:         conditions,
	})
}
