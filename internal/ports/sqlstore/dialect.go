package sqlstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect covers the differences between the supported SQL backends.
type Dialect interface {
	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// RewriteQuery converts ? placeholders where the backend needs another syntax.
	RewriteQuery(query string) string

	// ConfigureConnection applies pool and session settings to a database this
	// package opened itself.
	ConfigureConnection(db *sql.DB) error
}

// NewDialect returns the dialect registered under name.
func NewDialect(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported sql dialect: %s", name)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite3" }

func (sqliteDialect) RewriteQuery(query string) string { return query }

func (sqliteDialect) ConfigureConnection(db *sql.DB) error {
	// SQLite allows one writer; a single connection turns lock contention
	// into queueing.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return err
	}
	return nil
}
