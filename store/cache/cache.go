/*
Package cache provides a SQLite-backed snapshot cache for upstream catalogs.

PURPOSE:
  The dashboard joins (staff index, then activity adaptation, then
  enrollment reconciliation) would otherwise re-fetch the same slow
  upstream catalogs on every page load. This cache keeps the last fetched
  snapshot of each catalog as a JSON blob with its fetched-at timestamp.

FRESHNESS:
  Read-through with a TTL. A snapshot older than the TTL reads as a miss.
  Every MUTATING upstream call invalidates the affected resources: the
  authoritative state is always re-fetched after a mutation, never merged
  locally.

KEY TABLE:
  snapshots: one row per logical resource, JSON payload + fetched_at

CONCURRENCY:
  sync.RWMutex around the connection, same pattern as the rest of our
  SQLite usage. WAL mode for readers.

USAGE:
  c, err := cache.New("./club-cache.db", time.Minute)
  ...
  if ok, _ := c.Get(ctx, cache.ResourceActivities, &views); !ok {
      // fetch upstream, then c.Put(...)
  }
*/
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Logical resource keys. Using constants keeps invalidation sites honest.
const (
	ResourceStaff       = "staff"
	ResourceActivities  = "actividades"
	ResourceMembers     = "socios"
	ResourceEnrollments = "inscripciones"
	ResourceDues        = "cuotas"
)

// Cache is a SQLite-backed snapshot store with TTL semantics.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex

	// now is replaceable for tests.
	now func() time.Time
}

// New opens (or creates) the cache database. Use ":memory:" for tests.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c := &Cache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		resource TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get loads the snapshot for the resource into out. Returns false on a
// miss: no snapshot, an expired one, or a payload that no longer decodes
// (schema drift reads as a miss, not an error).
func (c *Cache) Get(ctx context.Context, resource string, out any) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var payload, fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM snapshots WHERE resource = ?`, resource,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil || c.now().Sub(at) > c.ttl {
		return false, nil
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, nil
	}
	return true, nil
}

// Put stores a snapshot for the resource, replacing any previous one.
func (c *Cache) Put(ctx context.Context, resource string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO snapshots (resource, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(resource) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		resource, string(payload), c.now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the snapshots for the given resources. Called after
// every mutating upstream call that touches them.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, resource := range resources {
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM snapshots WHERE resource = ?`, resource); err != nil {
			return fmt.Errorf("failed to invalidate snapshot %s: %w", resource, err)
		}
	}
	return nil
}

// SetClock replaces the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }
