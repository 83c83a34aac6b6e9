package coach

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var streaksJSON bool

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show current and longest streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			report, err := service.Streaks(cmd.Context(), s.repo, s.settings.UserID, s.now, s.settings.StreakOptions())
			if err != nil {
				return err
			}
			if streaksJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "STREAK\tCURRENT\tLONGEST")
			rows := []struct {
				name string
				s    metrics.Streak
			}{
				{"workout", report.Streaks.Workout},
				{"logging", report.Streaks.Logging},
				{"hydration", report.Streaks.Hydration},
				{"steps", report.Streaks.Steps},
				{"kcal", report.Streaks.Kcal},
			}
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%d\n", r.name, r.s.Current, r.s.Longest)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(streaksCmd)
	streaksCmd.Flags().BoolVar(&streaksJSON, "json", false, "Output JSON")
}
