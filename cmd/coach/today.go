package coach

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var (
	todayJSON   bool
	insightJSON bool
	insightAll  bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's totals, scores, and streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			report, err := service.Today(cmd.Context(), s.repo, s.settings.UserID, s.now, s.settings.DayOptions())
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printDayReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Show the coaching insight for right now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			report, err := service.Today(cmd.Context(), s.repo, s.settings.UserID, s.now, s.settings.DayOptions())
			if err != nil {
				return err
			}
			insights := []metrics.Insight{report.Insight}
			if insightAll && len(report.Suggestions) > 0 {
				insights = report.Suggestions
			}
			if insightJSON {
				if insightAll {
					return printJSON(cmd.OutOrStdout(), insights)
				}
				return printJSON(cmd.OutOrStdout(), report.Insight)
			}
			for _, in := range insights {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s: %s\n", in.Priority, in.Title, in.Message)
			}
			return nil
		})
	},
}

func printDayReport(w io.Writer, r *metrics.DayReport) {
	t, g := r.Totals, r.Targets
	fmt.Fprintf(w, "Date: %s\n", r.Date)
	fmt.Fprintf(w, "Steps: %d / %d\n", t.Steps, g.StepTarget)
	fmt.Fprintf(w, "Water: %d / %d ml\n", t.WaterMl, g.WaterTargetMl)
	fmt.Fprintf(w, "Calories: %d / %d kcal\n", t.Calories, g.CalorieTarget)
	fmt.Fprintf(w, "Workouts: %d / %d\n", t.WorkoutCount, g.WorkoutTarget)
	fmt.Fprintf(w, "Sleep: %s\n", formatMinutes(t.SleepMinutes))
	fmt.Fprintf(w, "Burned: %d kcal (steps %d, workouts %d)\n", r.KcalBurned.Total, r.KcalBurned.FromSteps, r.KcalBurned.FromWorkouts)
	fmt.Fprintf(w, "Daily score: %d\n", r.DailyScore.Total)
	fmt.Fprintf(w, "Recovery: %d (%s, %s)\n", r.Recovery, r.Readiness, r.Strategy)
	fmt.Fprintf(w, "Strain: %s\n", r.Strain)
	fmt.Fprintf(w, "Streaks: workout %d, logging %d, hydration %d, steps %d, kcal %d\n",
		r.Streaks.Workout.Current, r.Streaks.Logging.Current, r.Streaks.Hydration.Current,
		r.Streaks.Steps.Current, r.Streaks.Kcal.Current)
	fmt.Fprintf(w, "Insight: %s\n", r.Insight.Message)
}

func init() {
	rootCmd.AddCommand(todayCmd, insightCmd)
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
	insightCmd.Flags().BoolVar(&insightJSON, "json", false, "Output JSON")
	insightCmd.Flags().BoolVar(&insightAll, "all", false, "List every applicable insight in priority order")
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
