package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const rateLimitsSchema = `
	CREATE TABLE IF NOT EXISTS rate_limits (
		scope VARCHAR(64) NOT NULL,
		client_key VARCHAR(191) NOT NULL,
		count INT NOT NULL,
		reset_at DATETIME(3) NOT NULL,
		PRIMARY KEY (scope, client_key),
		INDEX idx_reset_at (reset_at)
	)`

const (
	errDeadlock    = 1213
	maxHitAttempts = 3
)

var closedWindow = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// MySQLStore keeps counters in the rate_limits table so several instances
// share one budget per client. The DSN must set parseTime=true.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, rateLimitsSchema); err != nil {
		return fmt.Errorf("creating rate_limits table: %w", err)
	}
	return nil
}

func (s *MySQLStore) Hit(ctx context.Context, scope, key string, now time.Time, policy Policy) (Entry, bool, error) {
	for attempt := 1; ; attempt++ {
		entry, allowed, err := s.hit(ctx, scope, key, now, policy)
		if err != nil && isDeadlock(err) && attempt < maxHitAttempts {
			continue
		}
		return entry, allowed, err
	}
}

func isDeadlock(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDeadlock
}

func (s *MySQLStore) hit(ctx context.Context, scope, key string, now time.Time, policy Policy) (Entry, bool, error) {
	now = now.UTC()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Entry{}, false, fmt.Errorf("beginning rate limit transaction: %w", err)
	}
	// Rollback is a no-op after Commit.
	defer tx.Rollback()

	// Ensure the row exists and hold its exclusive lock until commit. The
	// placeholder's window is already closed.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rate_limits (scope, client_key, count, reset_at)
		VALUES (?, ?, 0, ?)
		ON DUPLICATE KEY UPDATE count = count`,
		scope, key, closedWindow,
	)
	if err != nil {
		return Entry{}, false, fmt.Errorf("locking rate limit entry: %w", err)
	}

	var current Entry
	found := true
	err = tx.QueryRowContext(ctx, `
		SELECT count, reset_at
		FROM rate_limits
		WHERE scope = ? AND client_key = ?
		FOR UPDATE`,
		scope, key,
	).Scan(&current.Count, &current.ResetAt)
	if errors.Is(err, sql.ErrNoRows) {
		found = false
	} else if err != nil {
		return Entry{}, false, fmt.Errorf("reading rate limit entry: %w", err)
	}

	next, allowed := decide(current, found, now, policy)

	if allowed {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rate_limits (scope, client_key, count, reset_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE count = VALUES(count), reset_at = VALUES(reset_at)`,
			scope, key, next.Count, next.ResetAt.UTC(),
		)
		if err != nil {
			return Entry{}, false, fmt.Errorf("writing rate limit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("committing rate limit entry: %w", err)
	}

	return next, allowed, nil
}

// Sweep deletes rows whose window closed before now.
func (s *MySQLStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE reset_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired rate limits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting expired rate limits: %w", err)
	}
	return int(n), nil
}
