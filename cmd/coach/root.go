package coach

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/prajyotrote/coaching-os-sub000/internal/app"
	"github.com/prajyotrote/coaching-os-sub000/internal/config"
	"github.com/prajyotrote/coaching-os-sub000/internal/platform/logger"
)

var (
	dbPath     string
	configPath string
	envPath    string
	logLevel   string
)

var (
	cfg     config.Config
	log     = logger.Nop()
	nowFunc = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "coach turns your health logs into daily scores, streaks, and insights",
	Long:  "coach is a local-first health tracker: log steps, workouts, water, meals, and sleep, then see derived scores, history charts, streaks, and the next best action.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() error {
	yamlPath := configPath
	if yamlPath == "" {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return err
		}
		yamlPath = p
	}
	if envPath == "" {
		envPath = app.DefaultEnvPath()
	}
	loaded, err := config.Load(yamlPath, envPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	l, err := logger.New(logger.Options{Mode: loaded.Log.Mode, Level: loaded.Log.Level, HashSalt: loaded.Log.HashSalt})
	if err != nil {
		return err
	}
	cfg = loaded
	log = l
	return nil
}

// clock returns the current time in the configured zone.
func clock() time.Time {
	loc, err := cfg.Location()
	if err != nil {
		return nowFunc()
	}
	return nowFunc().In(loc)
}

func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", "", "Path to .env file (default ./.env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
