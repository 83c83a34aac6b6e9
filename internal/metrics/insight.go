package metrics

import (
	"sort"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/model"
)

type InsightInput struct {
	WaterRatio   float64
	CalorieRatio float64
	WorkoutCount int
	SleepHours   float64
	HasSleep     bool
	Steps        int
	Hour         int
}

type Insight struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
}

const fallbackPriority = 99

// InsightInputFor derives ratios against the resolved targets. A day with no
// sleep minutes is treated as unlogged.
func InsightInputFor(totals model.DailyTotals, targets model.ProfileTargets, now time.Time) InsightInput {
	targets = ResolveTargets(&targets)
	return InsightInput{
		WaterRatio:   float64(totals.WaterMl) / float64(targets.WaterTargetMl),
		CalorieRatio: float64(totals.Calories) / float64(targets.CalorieTarget),
		WorkoutCount: totals.WorkoutCount,
		SleepHours:   float64(totals.SleepMinutes) / 60,
		HasSleep:     totals.SleepMinutes > 0,
		Steps:        totals.Steps,
		Hour:         now.Hour(),
	}
}

// Candidates returns every insight whose trigger holds, most urgent first.
func Candidates(in InsightInput) []Insight {
	out := make([]Insight, 0, 6)
	if in.WaterRatio < 0.35 {
		out = append(out, Insight{
			ID:       "hydration",
			Priority: 1,
			Title:    "Hydration is low",
			Message:  "You are well behind on water today. Log 500 ml now.",
			Action:   "log_water_500",
		})
	}
	if in.Hour >= 12 && in.CalorieRatio < 0.35 {
		out = append(out, Insight{
			ID:       "nutrition",
			Priority: 2,
			Title:    "Fuel up",
			Message:  "It is past noon and intake is light. Log a meal of about 400 kcal.",
			Action:   "log_meal_400",
		})
	}
	if in.WorkoutCount == 0 && in.Hour >= 15 {
		out = append(out, Insight{
			ID:       "workout",
			Priority: 3,
			Title:    "No session yet",
			Message:  "There is still time for a workout today. Start a session.",
			Action:   "start_workout",
		})
	}
	if in.HasSleep && in.SleepHours < 6 {
		out = append(out, Insight{
			ID:       "recovery",
			Priority: 4,
			Title:    "Short night",
			Message:  "You slept under 6 hours. Keep training intensity light today.",
			Action:   "light_intensity",
		})
	}
	if in.Steps < 3000 && in.Hour >= 16 {
		out = append(out, Insight{
			ID:       "movement",
			Priority: 5,
			Title:    "Get moving",
			Message:  "Step count is low this afternoon. A short walk will help.",
			Action:   "short_walk",
		})
	}
	if len(out) == 0 {
		out = append(out, Insight{
			ID:       "strong_day",
			Priority: fallbackPriority,
			Title:    "Strong day",
			Message:  "Everything is on track. Keep it up.",
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

func SelectInsight(in InsightInput) Insight {
	return Candidates(in)[0]
}
