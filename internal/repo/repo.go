package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

type Table string

const (
	TableActivity Table = "activity_logs"
	TableWorkouts Table = "workout_logs"
	TableWater    Table = "water_logs"
	TableMeals    Table = "meal_logs"
	TableSleep    Table = "sleep_daily"
	TableTargets  Table = "profile_targets"
	TableProfile  Table = "onboarding_profiles"
)

var Tables = []Table{TableActivity, TableWorkouts, TableWater, TableMeals, TableSleep, TableTargets, TableProfile}

func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown table %q", s)
}

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Change struct {
	Table  Table     `json:"table"`
	UserID string    `json:"user_id"`
	Op     Op        `json:"op"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// Source is the read side the metrics service depends on. Every collection is
// filtered by user and by a lower time bound.
type Source interface {
	FetchActivity(ctx context.Context, userID string, since time.Time) ([]model.ActivityLog, error)
	FetchWorkouts(ctx context.Context, userID string, since time.Time) ([]model.WorkoutLog, error)
	FetchWater(ctx context.Context, userID string, since time.Time) ([]model.WaterLog, error)
	FetchMeals(ctx context.Context, userID string, since time.Time) ([]model.MealLog, error)
	FetchSleep(ctx context.Context, userID string, sinceDate string) ([]model.SleepDailyRecord, error)
	// Targets and Profile return nil, nil when the user has none saved.
	Targets(ctx context.Context, userID string) (*model.ProfileTargets, error)
	Profile(ctx context.Context, userID string) (*model.OnboardingProfile, error)
	Subscribe(table Table, onChange func(Change)) (unsubscribe func())
}

// Feed carries change notifications from writers to subscribers.
type Feed interface {
	Publish(ctx context.Context, c Change) error
	Subscribe(table Table, onChange func(Change)) (unsubscribe func())
}
