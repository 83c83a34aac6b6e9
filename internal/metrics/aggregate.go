package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

// LogSet is every raw collection the engine reads, already scoped to one user.
type LogSet struct {
	Activity []model.ActivityLog
	Workouts []model.WorkoutLog
	Water    []model.WaterLog
	Meals    []model.MealLog
	Sleep    []model.SleepDailyRecord
}

type Metric string

const (
	MetricSteps    Metric = "steps"
	MetricKcal     Metric = "kcal"
	MetricWater    Metric = "water"
	MetricCalories Metric = "calories"
	MetricSleep    Metric = "sleep"
	MetricRecovery Metric = "recovery"
)

var Metrics = []Metric{MetricSteps, MetricKcal, MetricWater, MetricCalories, MetricSleep, MetricRecovery}

func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Metrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid metric %q (use steps, kcal, water, calories, sleep, recovery)", s)
}

type Summary struct {
	Total int `json:"total"`
	Avg   int `json:"avg"`
	Best  int `json:"best"`
	Low   int `json:"low"`
}

type History struct {
	Range     Range          `json:"range"`
	Metric    Metric         `json:"metric"`
	Chart     []Bucket       `json:"chart"`
	Summary   Summary        `json:"summary"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

type HistoryOptions struct {
	Recovery RecoveryStrategy
}

func BuildHistory(metric Metric, r Range, now time.Time, logs LogSet, opts HistoryOptions) (*History, error) {
	buckets, err := NewBuckets(r, now)
	if err != nil {
		return nil, err
	}
	switch metric {
	case MetricSteps:
		return StepsHistory(buckets, logs.Activity), nil
	case MetricKcal:
		return KcalHistory(buckets, logs.Activity, logs.Workouts), nil
	case MetricWater:
		return WaterHistory(buckets, logs.Water), nil
	case MetricCalories:
		return CaloriesHistory(buckets, logs.Meals), nil
	case MetricSleep:
		return SleepHistory(buckets, logs.Sleep), nil
	case MetricRecovery:
		return RecoveryHistory(buckets, logs, opts), nil
	default:
		return nil, fmt.Errorf("invalid metric %q", metric)
	}
}

type reducer int

const (
	reduceSum reducer = iota
	reduceMean
)

type accumulator struct {
	buckets *Buckets
	reduce  reducer
	sums    []float64
	counts  []int
}

func newAccumulator(b *Buckets, r reducer) *accumulator {
	return &accumulator{
		buckets: b,
		reduce:  r,
		sums:    make([]float64, b.Len()),
		counts:  make([]int, b.Len()),
	}
}

func (a *accumulator) add(t time.Time, v float64) bool {
	i, ok := a.buckets.Index(t)
	if !ok {
		return false
	}
	a.sums[i] += v
	a.counts[i]++
	return true
}

func (a *accumulator) value(i int) int {
	if a.reduce == reduceMean {
		if a.counts[i] == 0 {
			return 0
		}
		return int(math.Round(a.sums[i] / float64(a.counts[i])))
	}
	return int(math.Round(a.sums[i]))
}

func (a *accumulator) chart() []Bucket {
	out := make([]Bucket, a.buckets.Len())
	copy(out, a.buckets.Items)
	for i := range out {
		out[i].Value = a.value(i)
	}
	return out
}

func newHistory(b *Buckets, metric Metric, chart []Bucket) *History {
	return &History{
		Range:   b.Range,
		Metric:  metric,
		Chart:   chart,
		Summary: Summarize(chart),
	}
}

// Summarize averages over every bucket, zero-valued ones included.
func Summarize(chart []Bucket) Summary {
	if len(chart) == 0 {
		return Summary{}
	}
	out := Summary{Best: chart[0].Value, Low: chart[0].Value}
	for _, b := range chart {
		out.Total += b.Value
		if b.Value > out.Best {
			out.Best = b.Value
		}
		if b.Value < out.Low {
			out.Low = b.Value
		}
	}
	out.Avg = int(math.Round(float64(out.Total) / float64(len(chart))))
	return out
}

func StepsHistory(b *Buckets, logs []model.ActivityLog) *History {
	acc := newAccumulator(b, reduceSum)
	for _, l := range logs {
		acc.add(l.Timestamp, float64(l.Steps))
	}
	return newHistory(b, MetricSteps, acc.chart())
}

func WaterHistory(b *Buckets, logs []model.WaterLog) *History {
	acc := newAccumulator(b, reduceSum)
	for _, l := range logs {
		acc.add(l.Timestamp, float64(l.Milliliters))
	}
	return newHistory(b, MetricWater, acc.chart())
}

func CaloriesHistory(b *Buckets, logs []model.MealLog) *History {
	acc := newAccumulator(b, reduceSum)
	for _, l := range logs {
		acc.add(l.Timestamp, float64(l.Calories))
	}
	return newHistory(b, MetricCalories, acc.chart())
}

// KcalHistory converts steps and completed workouts per bucket and keeps the per-source split.
func KcalHistory(b *Buckets, activity []model.ActivityLog, workouts []model.WorkoutLog) *History {
	steps := newAccumulator(b, reduceSum)
	for _, l := range activity {
		steps.add(l.Timestamp, float64(l.Steps))
	}
	sessions := newAccumulator(b, reduceSum)
	for _, w := range workouts {
		if w.Completed {
			sessions.add(w.Timestamp, 1)
		}
	}

	chart := make([]Bucket, b.Len())
	copy(chart, b.Items)
	fromSteps, fromWorkouts := 0, 0
	for i := range chart {
		s := stepKcal(steps.value(i))
		w := workoutKcal(sessions.value(i))
		chart[i].Value = s + w
		fromSteps += s
		fromWorkouts += w
	}
	h := newHistory(b, MetricKcal, chart)
	h.Breakdown = map[string]int{
		"steps":    fromSteps,
		"workouts": fromWorkouts,
	}
	return h
}

func SleepHistory(b *Buckets, records []model.SleepDailyRecord) *History {
	acc := newAccumulator(b, reduceMean)
	for _, r := range records {
		at, ok := sleepTimestamp(r, b.loc)
		if !ok {
			continue
		}
		acc.add(at, float64(r.TotalSleepMinutes))
	}
	return newHistory(b, MetricSleep, acc.chart())
}

// RecoveryHistory scores each night, then averages the nightly scores per bucket.
func RecoveryHistory(b *Buckets, logs LogSet, opts HistoryOptions) *History {
	totals := DailyTotalsByDate(logs, b.loc)
	acc := newAccumulator(b, reduceMean)
	sleepMinutes, scored := 0, 0
	for _, r := range logs.Sleep {
		at, ok := sleepTimestamp(r, b.loc)
		if !ok {
			continue
		}
		day := totals[r.Date]
		score := RecoveryScore(opts.Recovery, RecoveryInput{
			SleepMinutes: r.TotalSleepMinutes,
			Steps:        day.Steps,
			Workouts:     day.WorkoutCount,
		})
		if acc.add(at, float64(score)) {
			sleepMinutes += r.TotalSleepMinutes
			scored++
		}
	}
	h := newHistory(b, MetricRecovery, acc.chart())
	h.Breakdown = map[string]int{
		"sleep_minutes": sleepMinutes,
		"days_scored":   scored,
	}
	return h
}

// sleepTimestamp places a nightly record on its calendar date, at the wake hour when known.
func sleepTimestamp(r model.SleepDailyRecord, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.Date), loc)
	if err != nil {
		return time.Time{}, false
	}
	if r.WakeTime != nil {
		wake := r.WakeTime.In(loc)
		if wake.Format(dateLayout) == r.Date {
			return wake, true
		}
	}
	return day, true
}

func DailyTotalsByDate(logs LogSet, loc *time.Location) map[string]model.DailyTotals {
	out := map[string]model.DailyTotals{}
	get := func(key string) model.DailyTotals {
		d, ok := out[key]
		if !ok {
			d.Date = key
		}
		return d
	}
	for _, l := range logs.Activity {
		key := dateKey(l.Timestamp, loc)
		d := get(key)
		d.Steps += l.Steps
		out[key] = d
	}
	for _, w := range logs.Workouts {
		if !w.Completed {
			continue
		}
		key := dateKey(w.Timestamp, loc)
		d := get(key)
		d.WorkoutCount++
		out[key] = d
	}
	for _, l := range logs.Water {
		key := dateKey(l.Timestamp, loc)
		d := get(key)
		d.WaterMl += l.Milliliters
		out[key] = d
	}
	for _, m := range logs.Meals {
		key := dateKey(m.Timestamp, loc)
		d := get(key)
		d.Calories += m.Calories
		out[key] = d
	}
	for _, s := range logs.Sleep {
		key := strings.TrimSpace(s.Date)
		if key == "" {
			continue
		}
		d := get(key)
		d.SleepMinutes = s.TotalSleepMinutes
		out[key] = d
	}
	return out
}

// TotalsFor returns the totals of one calendar date; a date without rows is all zeros.
func TotalsFor(date string, logs LogSet, loc *time.Location) model.DailyTotals {
	if d, ok := DailyTotalsByDate(logs, loc)[date]; ok {
		return d
	}
	return model.DailyTotals{Date: date}
}

func sortedDates(totals map[string]model.DailyTotals) []string {
	out := make([]string, 0, len(totals))
	for k := range totals {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
