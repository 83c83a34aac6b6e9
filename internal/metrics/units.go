package metrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	DefaultStepTarget         = 10000
	DefaultWaterTargetMl      = 3000
	DefaultCalorieTarget      = 2000
	DefaultWorkoutTarget      = 1
	DefaultSleepTargetMinutes = 480
	DefaultActivityMultiplier = 1.2

	kcalPerStep    = 0.04
	kcalPerWorkout = 300
)

// ResolveTargets fills absent or non-positive targets with the defaults.
func ResolveTargets(t *model.ProfileTargets) model.ProfileTargets {
	out := model.ProfileTargets{}
	if t != nil {
		out = *t
	}
	if out.StepTarget <= 0 {
		out.StepTarget = DefaultStepTarget
	}
	if out.WaterTargetMl <= 0 {
		out.WaterTargetMl = DefaultWaterTargetMl
	}
	if out.CalorieTarget <= 0 {
		out.CalorieTarget = DefaultCalorieTarget
	}
	if out.WorkoutTarget <= 0 {
		out.WorkoutTarget = DefaultWorkoutTarget
	}
	if out.SleepTargetMinutes <= 0 {
		out.SleepTargetMinutes = DefaultSleepTargetMinutes
	}
	return out
}

func ResolveActivityMultiplier(m float64) float64 {
	if m <= 0 || math.IsNaN(m) {
		return DefaultActivityMultiplier
	}
	return m
}

func BMI(heightCm, weightKg float64) (float64, error) {
	if err := validatePositive("height", heightCm); err != nil {
		return 0, err
	}
	if err := validatePositive("weight", weightKg); err != nil {
		return 0, err
	}
	h := heightCm / 100
	return roundTo(weightKg/(h*h), 1), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Healthy"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BMR uses Mifflin-St Jeor. Any gender other than male takes the female constant.
func BMR(gender string, age int, heightCm, weightKg float64) (int, error) {
	if err := validatePositive("height", heightCm); err != nil {
		return 0, err
	}
	if err := validatePositive("weight", weightKg); err != nil {
		return 0, err
	}
	if age < 0 {
		return 0, fmt.Errorf("%w: age must be >= 0", ErrInvalidInput)
	}
	v := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if isMale(gender) {
		v += 5
	} else {
		v -= 161
	}
	return int(math.Round(v)), nil
}

func TDEE(bmr int, activityMultiplier float64) (int, error) {
	if bmr < 0 {
		return 0, fmt.Errorf("%w: bmr must be >= 0", ErrInvalidInput)
	}
	return int(math.Round(float64(bmr) * ResolveActivityMultiplier(activityMultiplier))), nil
}

// ProteinTargetGrams applies the +0.2 g/kg bonus once when the user smokes, drinks, or both.
func ProteinTargetGrams(weightKg float64, smokes, drinks bool) (float64, error) {
	if err := validatePositive("weight", weightKg); err != nil {
		return 0, err
	}
	perKg := 1.8
	if smokes || drinks {
		perKg += 0.2
	}
	return weightKg * perKg, nil
}

func HealthScore(smokes, drinks bool, bmi float64) int {
	score := 100
	if smokes {
		score -= 10
	}
	if drinks {
		score -= 5
	}
	if bmi < 18.5 || bmi > 30 {
		score -= 10
	}
	return ClampScore(score)
}

func KcalFromSteps(steps int) (int, error) {
	if steps < 0 {
		return 0, fmt.Errorf("%w: steps must be >= 0", ErrInvalidInput)
	}
	return stepKcal(steps), nil
}

func KcalFromWorkouts(count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: workout count must be >= 0", ErrInvalidInput)
	}
	return workoutKcal(count), nil
}

// stepKcal and workoutKcal serve aggregated totals, where a negative sum counts as nothing burned.
func stepKcal(steps int) int {
	if steps <= 0 {
		return 0
	}
	return int(math.Round(float64(steps) * kcalPerStep))
}

func workoutKcal(count int) int {
	if count <= 0 {
		return 0
	}
	return count * kcalPerWorkout
}

func Age(dob, now time.Time) int {
	if dob.IsZero() {
		return 0
	}
	age := now.Year() - dob.Year()
	if now.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

type BodySummary struct {
	AgeYears           int     `json:"age_years"`
	BMI                float64 `json:"bmi"`
	BMICategory        string  `json:"bmi_category"`
	BMR                int     `json:"bmr"`
	TDEE               int     `json:"tdee"`
	ActivityMultiplier float64 `json:"activity_multiplier"`
	ProteinTargetG     float64 `json:"protein_target_g"`
	HealthScore        int     `json:"health_score"`
}

func SummarizeBody(p model.OnboardingProfile, now time.Time) (BodySummary, error) {
	bmi, err := BMI(p.HeightCm, p.WeightKg)
	if err != nil {
		return BodySummary{}, err
	}
	age := Age(p.DOB, now)
	bmr, err := BMR(p.Gender, age, p.HeightCm, p.WeightKg)
	if err != nil {
		return BodySummary{}, err
	}
	mult := ResolveActivityMultiplier(p.ActivityMultiplier)
	tdee, err := TDEE(bmr, mult)
	if err != nil {
		return BodySummary{}, err
	}
	protein, err := ProteinTargetGrams(p.WeightKg, p.Smokes, p.Drinks)
	if err != nil {
		return BodySummary{}, err
	}
	return BodySummary{
		AgeYears:           age,
		BMI:                bmi,
		BMICategory:        BMICategory(bmi),
		BMR:                bmr,
		TDEE:               tdee,
		ActivityMultiplier: mult,
		ProteinTargetG:     roundTo(protein, 1),
		HealthScore:        HealthScore(p.Smokes, p.Drinks, bmi),
	}, nil
}

func isMale(gender string) bool {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "m", "male", "man":
		return true
	default:
		return false
	}
}

func validatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrInvalidInput, name)
	}
	return nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
