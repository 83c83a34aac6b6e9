package coach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log steps, workouts, water, and sleep",
}

var (
	logDate string
	logTime string
)

var logStepsCmd = &cobra.Command{
	Use:   "steps <count>",
	Short: "Log a step count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseIntArg("steps", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(s *session) error {
			at, err := parseDateTimeOrNow(logDate, logTime, s.now)
			if err != nil {
				return err
			}
			id, err := service.LogSteps(cmd.Context(), s.repo, s.settings.UserID, service.StepsInput{Steps: steps, At: at})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d steps (id %d)\n", steps, id)
			return nil
		})
	},
}

var (
	workoutKind     string
	workoutDuration int
	workoutSkipped  bool
)

var logWorkoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log a workout session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			at, err := parseDateTimeOrNow(logDate, logTime, s.now)
			if err != nil {
				return err
			}
			id, err := service.LogWorkout(cmd.Context(), s.repo, s.settings.UserID, service.WorkoutInput{
				Kind:        workoutKind,
				DurationMin: workoutDuration,
				Skipped:     workoutSkipped,
				At:          at,
			})
			if err != nil {
				return err
			}
			status := "completed"
			if workoutSkipped {
				status = "skipped"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s workout (id %d)\n", status, id)
			return nil
		})
	},
}

var logWaterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Log water intake in milliliters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := parseIntArg("water amount", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(s *session) error {
			at, err := parseDateTimeOrNow(logDate, logTime, s.now)
			if err != nil {
				return err
			}
			id, err := service.LogWater(cmd.Context(), s.repo, s.settings.UserID, service.WaterInput{Milliliters: ml, At: at})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d ml water (id %d)\n", ml, id)
			return nil
		})
	},
}

var (
	sleepDate     string
	sleepMinutes  int
	sleepBedtime  string
	sleepWake     string
	sleepAwake    int
	sleepRem      int
	sleepLight    int
	sleepDeep     int
	sleepVariance int
)

var logSleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Record the night's sleep (replaces any record for the date)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			date := strings.TrimSpace(sleepDate)
			if date == "" {
				date = s.now.Format("2006-01-02")
			}
			wake, err := optionalClock(date, sleepWake, s.now.Location())
			if err != nil {
				return err
			}
			bed, err := optionalClock(date, sleepBedtime, s.now.Location())
			if err != nil {
				return err
			}
			// A bedtime later than the wake time belongs to the previous evening.
			if bed != nil && wake != nil && bed.After(*wake) {
				prev := bed.AddDate(0, 0, -1)
				bed = &prev
			}
			if err := service.RecordSleep(cmd.Context(), s.repo, s.settings.UserID, service.SleepInput{
				Date:                   date,
				TotalSleepMinutes:      sleepMinutes,
				Bedtime:                bed,
				WakeTime:               wake,
				AwakeMinutes:           sleepAwake,
				RemMinutes:             sleepRem,
				LightMinutes:           sleepLight,
				DeepMinutes:            sleepDeep,
				BedtimeVarianceMinutes: sleepVariance,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %dh%02dm sleep for %s\n", sleepMinutes/60, sleepMinutes%60, date)
			return nil
		})
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <table> <id>",
	Short: "Delete one log row (activity_logs, workout_logs, water_logs, meal_logs)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := repo.ParseTable(args[0])
		if err != nil {
			return err
		}
		id, err := parseInt64Arg("id", args[1])
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(s *session) error {
			if err := s.repo.DeleteLog(cmd.Context(), table, s.settings.UserID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s row %d\n", table, id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logStepsCmd, logWorkoutCmd, logWaterCmd, logSleepCmd, logDeleteCmd)

	for _, c := range []*cobra.Command{logStepsCmd, logWorkoutCmd, logWaterCmd} {
		c.Flags().StringVar(&logDate, "date", "", "Date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&logTime, "time", "", "Time HH:MM (default now)")
	}
	logWorkoutCmd.Flags().StringVar(&workoutKind, "kind", "", "Workout kind, e.g. run or strength")
	logWorkoutCmd.Flags().IntVar(&workoutDuration, "duration", 0, "Duration in minutes")
	logWorkoutCmd.Flags().BoolVar(&workoutSkipped, "skipped", false, "Record a planned session that was skipped")

	logSleepCmd.Flags().StringVar(&sleepDate, "date", "", "Wake-up date YYYY-MM-DD (default today)")
	logSleepCmd.Flags().IntVar(&sleepMinutes, "minutes", 0, "Total sleep minutes")
	logSleepCmd.Flags().StringVar(&sleepBedtime, "bedtime", "", "Bedtime HH:MM")
	logSleepCmd.Flags().StringVar(&sleepWake, "wake", "", "Wake time HH:MM")
	logSleepCmd.Flags().IntVar(&sleepAwake, "awake", 0, "Minutes awake")
	logSleepCmd.Flags().IntVar(&sleepRem, "rem", 0, "REM minutes")
	logSleepCmd.Flags().IntVar(&sleepLight, "light", 0, "Light sleep minutes")
	logSleepCmd.Flags().IntVar(&sleepDeep, "deep", 0, "Deep sleep minutes")
	logSleepCmd.Flags().IntVar(&sleepVariance, "variance", 0, "Bedtime variance in minutes")
	_ = logSleepCmd.MarkFlagRequired("minutes")
}
