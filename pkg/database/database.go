package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/alimgiray/gdocscope/pkg/logger"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the whole store inside the process. Nothing fetched during
// a run outlives it.
const MemoryDSN = "file::memory:?_foreign_keys=ON"

//go:embed migrations/*.sql
var migrations embed.FS

var DB *sql.DB

// Init initializes the run-scoped SQLite database
func Init() error {
	db, err := Open(MemoryDSN)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open opens a SQLite database and applies the embedded schema
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every new connection to :memory: is a fresh empty database, so the pool
	// must never grow past one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = RunSQLScripts(db); err != nil {
		_ = db.Close()
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

// RunSQLScripts executes the embedded SQL scripts in name order
func RunSQLScripts(db *sql.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		sqlContent, err := migrations.ReadFile(file)
		if err != nil {
			return err
		}

		if _, err = db.Exec(string(sqlContent)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", path.Base(file), err)
		}

		logger.Debugf("Executed SQL script: %s", path.Base(file))
	}

	return nil
}
