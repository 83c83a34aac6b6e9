package coach

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var watchJSON bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompute today's report whenever logs change",
	Long:  "watch prints today's report and reprints it on every change. Changes from other processes arrive only when redis is configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withSession(ctx, func(s *session) error {
			if rf, ok := s.feed.(*repo.RedisFeed); ok {
				if err := rf.Start(ctx); err != nil {
					return err
				}
			}
			w := cmd.OutOrStdout()
			return service.Watch(ctx, s.repo, s.settings.UserID, clock, s.settings.DayOptions(), func(u service.WatchUpdate) {
				if u.Err != nil {
					log.Warn("refresh failed", "error", u.Err)
					return
				}
				if u.Change != nil {
					log.Info("change received", "table", string(u.Change.Table), "op", string(u.Change.Op))
				}
				if watchJSON {
					if err := printJSON(w, u.Report); err != nil {
						log.Error("encode report", "error", err)
					}
					return
				}
				printDayReport(w, u.Report)
				fmt.Fprintln(w)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "Output JSON per update")
}
