package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dorebell/internal/testutil"
)

// Unit Tests

func TestNewMySQLStore(t *testing.T) {
	db := &sql.DB{}
	store := NewMySQLStore(db)

	assert.NotNil(t, store)
	assert.Equal(t, db, store.db)
}

func TestIsDeadlock(t *testing.T) {
	assert.True(t, isDeadlock(fmt.Errorf("reading rate limit entry: %w", &mysql.MySQLError{Number: 1213})))
	assert.False(t, isDeadlock(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDeadlock(sql.ErrConnDone))
}

// Integration Tests

func setupMySQLStore(t *testing.T) (*MySQLStore, *sql.DB) {
	db := testutil.SetupTestDB(t)
	store := NewMySQLStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	_, err := db.Exec("DELETE FROM rate_limits")
	require.NoError(t, err)
	return store, db
}

func TestMySQLStore_Hit_WindowRule(t *testing.T) {
	store, db := setupMySQLStore(t)
	defer testutil.CleanupTestDB(t, db, "rate_limits")

	ctx := context.Background()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	policy := Policy{Window: 15 * time.Minute, Max: 5}

	for i := 1; i <= 5; i++ {
		entry, allowed, err := store.Hit(ctx, ScopeOrder, "10.0.0.1", now.Add(time.Duration(i)*time.Second), policy)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, i, entry.Count)
	}

	_, allowed, err := store.Hit(ctx, ScopeOrder, "10.0.0.1", now.Add(time.Minute), policy)
	require.NoError(t, err)
	assert.False(t, allowed)

	entry, allowed, err := store.Hit(ctx, ScopeOrder, "10.0.0.1", now.Add(16*time.Minute), policy)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, entry.Count)
}

func TestMySQLStore_Sweep(t *testing.T) {
	store, db := setupMySQLStore(t)
	defer testutil.CleanupTestDB(t, db, "rate_limits")

	ctx := context.Background()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	_, _, err := store.Hit(ctx, ScopeSearch, "a", now, Policy{Window: time.Minute, Max: 1})
	require.NoError(t, err)
	_, _, err = store.Hit(ctx, ScopeSearch, "b", now, Policy{Window: time.Hour, Max: 1})
	require.NoError(t, err)

	removed, err := store.Sweep(ctx, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var remaining int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM rate_limits").Scan(&remaining))
	assert.Equal(t, 1, remaining)
}

func TestMySQLStore_WithLimiter(t *testing.T) {
	store, db := setupMySQLStore(t)
	defer testutil.CleanupTestDB(t, db, "rate_limits")

	l := New(ScopeContact, Policy{Window: 15 * time.Minute, Max: 3}, store, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "203.0.113.7"))
	}
	assert.False(t, l.Allow(ctx, "203.0.113.7"))
}

func TestMySQLStore_ConcurrentFirstHit(t *testing.T) {
	store, db := setupMySQLStore(t)
	defer testutil.CleanupTestDB(t, db, "rate_limits")

	ctx := context.Background()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	policy := Policy{Window: time.Minute, Max: 1}

	for round := 0; round < 5; round++ {
		key := fmt.Sprintf("198.51.100.%d", round)

		var allowed atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := store.Hit(ctx, ScopeOrder, key, now, policy)
				assert.NoError(t, err)
				if ok {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), allowed.Load(), "key %s", key)

		var count int
		require.NoError(t, db.QueryRow(
			"SELECT count FROM rate_limits WHERE scope = ? AND client_key = ?", ScopeOrder, key,
		).Scan(&count))
		assert.Equal(t, 1, count)
	}
}

func TestMySQLStore_HitAfterSweep(t *testing.T) {
	store, db := setupMySQLStore(t)
	defer testutil.CleanupTestDB(t, db, "rate_limits")

	ctx := context.Background()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	policy := Policy{Window: time.Minute, Max: 1}

	_, allowed, err := store.Hit(ctx, ScopeButton, "a", now, policy)
	require.NoError(t, err)
	require.True(t, allowed)

	later := now.Add(2 * time.Minute)
	_, err = store.Sweep(ctx, later)
	require.NoError(t, err)

	entry, allowed, err := store.Hit(ctx, ScopeButton, "a", later, policy)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, entry.Count)
	assert.Equal(t, later.Add(time.Minute), entry.ResetAt)

	_, allowed, err = store.Hit(ctx, ScopeButton, "a", later.Add(time.Second), policy)
	require.NoError(t, err)
	assert.False(t, allowed)
}
