package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/app"
	"github.com/prajyotrote/coaching-os-sub000/internal/db"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
	"github.com/prajyotrote/coaching-os-sub000/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

type session struct {
	db       *sql.DB
	repo     *repo.SQLite
	feed     repo.Feed
	settings service.Settings
	now      time.Time
}

// withSession opens the database, resolves the local user, and attaches a
// change feed. The redis feed is used only when an address is configured.
func withSession(ctx context.Context, run func(*session) error) error {
	return withDB(func(sqldb *sql.DB) error {
		settings, err := service.LoadSettings(sqldb)
		if err != nil {
			return err
		}
		var feed repo.Feed = repo.NewLocalFeed()
		if cfg.Redis.Addr != "" {
			rf, err := repo.NewRedisFeed(ctx, log, repo.RedisOptions{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Channel:  cfg.Redis.Channel,
			})
			if err != nil {
				return err
			}
			defer rf.Close()
			feed = rf
		}
		s := &session{
			db:       sqldb,
			repo:     repo.NewSQLite(sqldb, repo.WithFeed(feed), repo.WithLogger(log), repo.WithClock(clock)),
			feed:     feed,
			settings: settings,
			now:      clock(),
		}
		log.Debug("session ready", "user_id", settings.UserID)
		return run(s)
	})
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseIntArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

// parseDateTimeOrNow interprets --date/--time in the zone of now.
func parseDateTimeOrNow(date, timeStr string, now time.Time) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return now, nil
	}
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func optionalClock(date, clockStr string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(clockStr) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+strings.TrimSpace(clockStr), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q (expected HH:MM)", clockStr)
	}
	return &t, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
