package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
)

// fullHistory is the fetch lower bound for longest streaks, which span every logged day.
var fullHistory = time.Time{}

func Today(ctx context.Context, src repo.Source, userID string, now time.Time, opts metrics.DayOptions) (*metrics.DayReport, error) {
	snap, err := FetchSnapshot(ctx, src, userID, fullHistory)
	if err != nil {
		return nil, err
	}
	report, err := metrics.EvaluateDay(snap.Logs, snap.Targets, now, opts)
	if err != nil {
		return nil, fmt.Errorf("evaluate day: %w", err)
	}
	return report, nil
}

func History(ctx context.Context, src repo.Source, userID string, metric metrics.Metric, r metrics.Range, now time.Time, recovery metrics.RecoveryStrategy) (*metrics.History, error) {
	buckets, err := metrics.NewBuckets(r, now)
	if err != nil {
		return nil, err
	}
	from, _ := buckets.Window()
	snap, err := FetchSnapshot(ctx, src, userID, from)
	if err != nil {
		return nil, err
	}
	h, err := metrics.BuildHistory(metric, r, now, snap.Logs, metrics.HistoryOptions{Recovery: recovery})
	if err != nil {
		return nil, fmt.Errorf("build %s history: %w", metric, err)
	}
	return h, nil
}

type StreakReport struct {
	Date    string          `json:"date"`
	Streaks metrics.Streaks `json:"streaks"`
}

func Streaks(ctx context.Context, src repo.Source, userID string, now time.Time, opts metrics.StreakOptions) (*StreakReport, error) {
	snap, err := FetchSnapshot(ctx, src, userID, fullHistory)
	if err != nil {
		return nil, err
	}
	streaks, err := metrics.ComputeStreaks(snap.Logs, metrics.ResolveTargets(snap.Targets), now, opts)
	if err != nil {
		return nil, fmt.Errorf("compute streaks: %w", err)
	}
	return &StreakReport{Date: now.Format(dateLayout), Streaks: streaks}, nil
}

var ErrNoProfile = errors.New("no body profile saved; run `coach profile set`")

func Body(ctx context.Context, src repo.Source, userID string, now time.Time) (metrics.BodySummary, error) {
	profile, err := src.Profile(ctx, userID)
	if err != nil {
		return metrics.BodySummary{}, err
	}
	if profile == nil {
		return metrics.BodySummary{}, ErrNoProfile
	}
	return metrics.SummarizeBody(*profile, now)
}
