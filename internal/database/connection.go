package database

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is the global database connection
var DB *sqlx.DB

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database and makes sure the schema exists
func Connect(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open establishes a connection without touching the global handle
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		// SQLite doesn't support multiple writers, and :memory: lives on one connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

func ensureDataDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				user_id BIGINT PRIMARY KEY,
				username TEXT NOT NULL DEFAULT '',
				full_name TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT 'english',
				level TEXT NOT NULL DEFAULT 'A1',
				xp INTEGER NOT NULL DEFAULT 0,
				streak INTEGER NOT NULL DEFAULT 0,
				last_active TIMESTAMP NULL,
				total_correct INTEGER NOT NULL DEFAULT 0,
				total_questions INTEGER NOT NULL DEFAULT 0,
				notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP NOT NULL
			)`},
		{"vocabulary", `
			CREATE TABLE IF NOT EXISTS vocabulary (
				id ` + serial + `,
				user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
				term TEXT NOT NULL,
				meaning TEXT NOT NULL,
				example TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT 'english',
				ease DOUBLE PRECISION NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 1,
				repetitions INTEGER NOT NULL DEFAULT 0,
				next_due TIMESTAMP NOT NULL,
				added_at TIMESTAMP NOT NULL,
				UNIQUE(user_id, term, language)
			)`},
		{"vocabulary index", `CREATE INDEX IF NOT EXISTS idx_vocabulary_due ON vocabulary(user_id, next_due)`},
		{"user_state", `
			CREATE TABLE IF NOT EXISTS user_state (
				user_id BIGINT PRIMARY KEY,
				kind TEXT NOT NULL,
				payload TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id ` + serial + `,
				user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
				session_id TEXT NOT NULL UNIQUE,
				mode TEXT NOT NULL,
				score INTEGER NOT NULL,
				total INTEGER NOT NULL,
				answers TEXT NOT NULL DEFAULT '[]',
				completed_at TIMESTAMP NOT NULL
			)`},
		{"lesson_progress", `
			CREATE TABLE IF NOT EXISTS lesson_progress (
				user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
				language TEXT NOT NULL,
				lesson_key TEXT NOT NULL,
				score INTEGER NOT NULL,
				total INTEGER NOT NULL,
				completed_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, language, lesson_key)
			)`},
		{"badges", `
			CREATE TABLE IF NOT EXISTS badges (
				user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
				badge_id TEXT NOT NULL,
				earned_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, badge_id)
			)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s", st.name)
		}
	}
	return nil
}
