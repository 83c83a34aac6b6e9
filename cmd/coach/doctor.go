package coach

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check stored logs for rows the engine cannot read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			userID, err := service.EnsureUserID(sqldb)
			if err != nil {
				return err
			}
			report, err := service.RunDoctor(sqldb, userID, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invalid timestamps: %d\n", report.InvalidTimestamps)
			fmt.Fprintf(cmd.OutOrStdout(), "Implausible sleep rows: %d\n", report.ImplausibleSleep)
			fmt.Fprintf(cmd.OutOrStdout(), "Rows owned by another user: %d\n", report.ForeignUserRows)
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed rows: %d\n", report.FixedRows)
				report, err = service.RunDoctor(sqldb, userID, false)
				if err != nil {
					return err
				}
			}
			if !report.Clean() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Delete unreadable rows and clamp implausible sleep")
}
