package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const lookupQuery = `SELECT id, name, COALESCE(citizenship, '') AS citizenship, COALESCE(email, '') AS email
FROM students WHERE id = $1`

// SQLRoster looks students up in a PostgreSQL students table.
type SQLRoster struct {
	db *sqlx.DB
}

// NewSQLRoster wraps an open database handle.
func NewSQLRoster(db *sqlx.DB) *SQLRoster {
	return &SQLRoster{db: db}
}

// OpenSQL connects to PostgreSQL using dsn and verifies the connection.
func OpenSQL(ctx context.Context, dsn string) (*SQLRoster, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to roster database: %w", err)
	}
	return NewSQLRoster(db), nil
}

// Lookup implements Roster.
func (r *SQLRoster) Lookup(ctx context.Context, id int64) (Student, error) {
	var s Student
	if err := r.db.GetContext(ctx, &s, lookupQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, fmt.Errorf("%s: %w", FormatID(id), ErrNotFound)
		}
		return Student{}, fmt.Errorf("roster lookup %s: %w", FormatID(id), err)
	}
	return s, nil
}

// Close closes the database handle.
func (r *SQLRoster) Close() error {
	return r.db.Close()
}
