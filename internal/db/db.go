package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas run on every open. The busy timeout lets a running watch share
// the file with another process that is logging.
var pragmas = []struct {
	name string
	stmt string
}{
	{"enable foreign keys", `PRAGMA foreign_keys = ON;`},
	{"set busy timeout", `PRAGMA busy_timeout = 5000;`},
}

// Open opens the sqlite database at path.
func Open(path string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := sqldb.Exec(p.stmt); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return sqldb, nil
}
