package coach

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local coach database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			userID, err := service.EnsureUserID(sqldb)
			if err != nil {
				return err
			}
			log.Info("database initialized", "path", path, "user_id", userID)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized coach database at %s\n", path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
