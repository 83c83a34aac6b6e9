package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/model"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
)

// Snapshot is everything the engine needs for one user, fetched together.
type Snapshot struct {
	Logs    metrics.LogSet
	Targets *model.ProfileTargets
	Profile *model.OnboardingProfile
}

// FetchSnapshot reads every collection in parallel and joins them before any
// aggregation runs. A failed fetch cancels the others.
func FetchSnapshot(ctx context.Context, src repo.Source, userID string, since time.Time) (*Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var out Snapshot
	sinceDate := since.Format(dateLayout)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := src.FetchActivity(gctx, userID, since)
		out.Logs.Activity = rows
		return err
	})
	g.Go(func() error {
		rows, err := src.FetchWorkouts(gctx, userID, since)
		out.Logs.Workouts = rows
		return err
	})
	g.Go(func() error {
		rows, err := src.FetchWater(gctx, userID, since)
		out.Logs.Water = rows
		return err
	})
	g.Go(func() error {
		rows, err := src.FetchMeals(gctx, userID, since)
		out.Logs.Meals = rows
		return err
	})
	g.Go(func() error {
		rows, err := src.FetchSleep(gctx, userID, sinceDate)
		out.Logs.Sleep = rows
		return err
	})
	g.Go(func() error {
		t, err := src.Targets(gctx, userID)
		out.Targets = t
		return err
	})
	g.Go(func() error {
		p, err := src.Profile(gctx, userID)
		out.Profile = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch user data: %w", err)
	}
	backfill(&out.Logs)
	return &out, nil
}

func FetchLogSet(ctx context.Context, src repo.Source, userID string, since time.Time) (metrics.LogSet, error) {
	snap, err := FetchSnapshot(ctx, src, userID, since)
	if err != nil {
		return metrics.LogSet{}, err
	}
	return snap.Logs, nil
}

func backfill(l *metrics.LogSet) {
	if l.Activity == nil {
		l.Activity = []model.ActivityLog{}
	}
	if l.Workouts == nil {
		l.Workouts = []model.WorkoutLog{}
	}
	if l.Water == nil {
		l.Water = []model.WaterLog{}
	}
	if l.Meals == nil {
		l.Meals = []model.MealLog{}
	}
	if l.Sleep == nil {
		l.Sleep = []model.SleepDailyRecord{}
	}
}
