package coach

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/model"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage daily targets",
}

var (
	targetSteps    int
	targetWater    int
	targetCalories int
	targetWorkouts int
	targetSleep    int
	targetsJSON    bool
)

var targetsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily targets (unset flags keep their current value)",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := map[string]*int{
			"steps":    &targetSteps,
			"water":    &targetWater,
			"calories": &targetCalories,
			"workouts": &targetWorkouts,
			"sleep":    &targetSleep,
		}
		changed := 0
		for name := range flags {
			if cmd.Flags().Changed(name) {
				changed++
			}
		}
		if changed == 0 {
			return fmt.Errorf("set at least one flag")
		}
		return withSession(cmd.Context(), func(s *session) error {
			current, err := s.repo.Targets(cmd.Context(), s.settings.UserID)
			if err != nil {
				return err
			}
			next := model.ProfileTargets{}
			if current != nil {
				next = *current
			}
			dst := map[string]*int{
				"steps":    &next.StepTarget,
				"water":    &next.WaterTargetMl,
				"calories": &next.CalorieTarget,
				"workouts": &next.WorkoutTarget,
				"sleep":    &next.SleepTargetMinutes,
			}
			for name, v := range flags {
				if cmd.Flags().Changed(name) {
					*dst[name] = *v
				}
			}
			if err := service.SetTargets(cmd.Context(), s.repo, s.settings.UserID, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d target(s)\n", changed)
			return nil
		})
	},
}

var targetsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			stored, err := s.repo.Targets(cmd.Context(), s.settings.UserID)
			if err != nil {
				return err
			}
			t := metrics.ResolveTargets(stored)
			if targetsJSON {
				return printJSON(cmd.OutOrStdout(), map[string]int{
					"steps":         t.StepTarget,
					"water_ml":      t.WaterTargetMl,
					"calories":      t.CalorieTarget,
					"workouts":      t.WorkoutTarget,
					"sleep_minutes": t.SleepTargetMinutes,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Steps: %d\n", t.StepTarget)
			fmt.Fprintf(cmd.OutOrStdout(), "Water: %d ml\n", t.WaterTargetMl)
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %d kcal\n", t.CalorieTarget)
			fmt.Fprintf(cmd.OutOrStdout(), "Workouts: %d\n", t.WorkoutTarget)
			fmt.Fprintf(cmd.OutOrStdout(), "Sleep: %d min\n", t.SleepTargetMinutes)
			if stored == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "(defaults; set your own with `coach targets set`)")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsSetCmd, targetsShowCmd)

	targetsSetCmd.Flags().IntVar(&targetSteps, "steps", 0, "Daily step target")
	targetsSetCmd.Flags().IntVar(&targetWater, "water", 0, "Daily water target in ml")
	targetsSetCmd.Flags().IntVar(&targetCalories, "calories", 0, "Daily calorie target")
	targetsSetCmd.Flags().IntVar(&targetWorkouts, "workouts", 0, "Daily workout target")
	targetsSetCmd.Flags().IntVar(&targetSleep, "sleep", 0, "Nightly sleep target in minutes")
	targetsShowCmd.Flags().BoolVar(&targetsJSON, "json", false, "Output JSON")
}
