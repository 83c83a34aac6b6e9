package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

const (
	DefaultStreakLookbackDays  = 30
	DefaultKcalStreakThreshold = 300
)

type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type Streaks struct {
	Workout   Streak `json:"workout"`
	Logging   Streak `json:"logging"`
	Hydration Streak `json:"hydration"`
	Steps     Streak `json:"steps"`
	Kcal      Streak `json:"kcal"`
}

type StreakOptions struct {
	LookbackDays  int
	KcalThreshold int
}

// CurrentStreak walks back from today over at most lookbackDays days. A missing
// today is skipped; any earlier missing day ends the run.
func CurrentStreak(qualifying map[string]bool, now time.Time, lookbackDays int) int {
	if lookbackDays <= 0 {
		lookbackDays = DefaultStreakLookbackDays
	}
	today := beginningOfDay(now)
	count := 0
	for i := 0; i < lookbackDays; i++ {
		key := today.AddDate(0, 0, -i).Format(dateLayout)
		if qualifying[key] {
			count++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return count
}

// LongestStreak finds the longest run of consecutive calendar dates anywhere in dates.
func LongestStreak(dates []string) (int, error) {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, raw := range dates {
		raw = strings.TrimSpace(raw)
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", ErrInvalidInput, raw)
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0, nil
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest, nil
}

func ThresholdDates(totals map[string]model.DailyTotals, predicate func(model.DailyTotals) bool) []string {
	out := make([]string, 0, len(totals))
	for _, date := range sortedDates(totals) {
		if predicate(totals[date]) {
			out = append(out, date)
		}
	}
	return out
}

// KcalDates qualifies a day on steps-kcal plus workout-kcal combined.
func KcalDates(totals map[string]model.DailyTotals, threshold int) []string {
	return ThresholdDates(totals, func(d model.DailyTotals) bool {
		return stepKcal(d.Steps)+workoutKcal(d.WorkoutCount) >= threshold
	})
}

func StreakOf(dates []string, now time.Time, lookbackDays int) (Streak, error) {
	longest, err := LongestStreak(dates)
	if err != nil {
		return Streak{}, err
	}
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[strings.TrimSpace(d)] = true
	}
	return Streak{
		Current: CurrentStreak(set, now, lookbackDays),
		Longest: longest,
	}, nil
}

type streakSource struct {
	dst   *Streak
	dates []string
}

func ComputeStreaks(logs LogSet, targets model.ProfileTargets, now time.Time, opts StreakOptions) (Streaks, error) {
	targets = ResolveTargets(&targets)
	if opts.KcalThreshold <= 0 {
		opts.KcalThreshold = DefaultKcalStreakThreshold
	}
	totals := DailyTotalsByDate(logs, now.Location())

	logged := make([]string, 0)
	for _, m := range logs.Meals {
		logged = append(logged, dateKey(m.Timestamp, now.Location()))
	}

	out := Streaks{}
	sets := []streakSource{
		{&out.Workout, ThresholdDates(totals, func(d model.DailyTotals) bool { return d.WorkoutCount > 0 })},
		{&out.Logging, logged},
		{&out.Hydration, ThresholdDates(totals, func(d model.DailyTotals) bool { return d.WaterMl >= targets.WaterTargetMl })},
		{&out.Steps, ThresholdDates(totals, func(d model.DailyTotals) bool { return d.Steps >= targets.StepTarget })},
		{&out.Kcal, KcalDates(totals, opts.KcalThreshold)},
	}
	for _, s := range sets {
		v, err := StreakOf(s.dates, now, opts.LookbackDays)
		if err != nil {
			return Streaks{}, err
		}
		*s.dst = v
	}
	return out, nil
}
