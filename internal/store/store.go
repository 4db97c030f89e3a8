package store

import (
	"database/sql"
	"strings"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface{ Scan(...any) error }

func utcNow() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ownerExists(q querier, ownerID string) (bool, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, ownerID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
