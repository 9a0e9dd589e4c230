package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite, the default local store
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN adds the busy timeout and WAL journal as connection parameters so
// every pooled connection gets them. In-memory databases keep the
// default journal.
func (d *SQLiteDialect) DSN(config DialectConfig) string {
	dsn := config.Path
	if dsn == "" {
		dsn = "learningtime.db"
	}

	params := []string{"_busy_timeout=5000"}
	if !isSQLiteMemory(dsn) {
		params = append(params, "_journal_mode=WAL")
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	return query
}

// ConfigureConnection pins in-memory databases to one connection, since
// each new connection would otherwise open an empty database
func (d *SQLiteDialect) ConfigureConnection(db *sql.DB, config DialectConfig) error {
	if isSQLiteMemory(config.Path) {
		configurePool(db, 1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		return nil
	}
	configurePool(db, maxOpenConns)
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func isSQLiteMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
