package coach

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var (
	historyRange string
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history <steps|water|calories|kcal|sleep|recovery>",
	Short: "Show bucketed history for a metric",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := metrics.ParseMetric(args[0])
		if err != nil {
			return err
		}
		r, err := metrics.ParseRange(historyRange)
		if err != nil {
			return err
		}
		return withSession(cmd.Context(), func(s *session) error {
			h, err := service.History(cmd.Context(), s.repo, s.settings.UserID, metric, r, s.now, s.settings.RecoveryStrategy)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd.OutOrStdout(), h)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s)\n", h.Metric, h.Range)
			for _, b := range h.Chart {
				marker := " "
				if b.IsActive {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-10s\t%d\n", marker, b.Key, b.Value)
			}
			fmt.Fprintf(w, "total %d  avg %d  best %d  low %d\n", h.Summary.Total, h.Summary.Avg, h.Summary.Best, h.Summary.Low)
			if len(h.Breakdown) > 0 {
				parts := make([]string, 0, len(h.Breakdown))
				for _, k := range sortedKeys(h.Breakdown) {
					parts = append(parts, fmt.Sprintf("%s=%d", k, h.Breakdown[k]))
				}
				fmt.Fprintln(w, strings.Join(parts, "  "))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyRange, "range", "week", "Range: day, week, month, or 6m")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output JSON")
}
