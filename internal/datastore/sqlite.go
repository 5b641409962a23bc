package datastore

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface for local SQLite storage
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens a connection to the SQLite database
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open database %s: %w", s.dbPath, err)
	}
	s.db = db
	return nil
}

// CreateTable creates a new table with the given schema if it doesn't exist
func (s *SQLiteStore) CreateTable(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Truncate removes every row from table. Exports replace the previous run's rows.
func (s *SQLiteStore) Truncate(table string) error {
	if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteIdent(table))); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	return nil
}

// BatchInsert inserts multiple records into the specified table inside one
// transaction. Columns are taken from the first record.
func (s *SQLiteStore) BatchInsert(table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a commit is a no-op error
		_ = tx.Rollback()
	}()

	columns := make([]string, 0, len(records[0]))
	for col := range records[0] {
		columns = append(columns, col)
	}
	slices.Sort(columns)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	values := make([]any, len(columns))
	for _, record := range records {
		for i, col := range columns {
			values[i] = record[col]
		}
		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("failed to insert record into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Count returns the number of rows in table.
func (s *SQLiteStore) Count(table string) (int, error) {
	var n int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
