package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/tegra-fqd/internal/policy"
)

// DefaultKeep is the number of entries retained when no limit is given.
const DefaultKeep = 500

const schema = `
CREATE TABLE IF NOT EXISTS commits (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    committed_at    TEXT    NOT NULL,
    flags           TEXT    NOT NULL,
    screen_on       INTEGER NOT NULL,
    profile_index   INTEGER NOT NULL,
    unmanaged       INTEGER NOT NULL,
    min_freq        INTEGER NOT NULL,
    max_freq        INTEGER NOT NULL,
    core_cap_level  INTEGER NOT NULL,
    core_cap_state  INTEGER NOT NULL,
    force_accessory INTEGER NOT NULL,
    failed_writes   INTEGER NOT NULL
)`

// Entry is one committed cycle.
type Entry struct {
	ID           int64
	CommittedAt  time.Time
	Flags        []string
	ScreenOn     bool
	ProfileIndex int
	Unmanaged    bool
	Resolved     policy.Resolved
	FailedWrites int
}

// Journal records committed cycles in a SQLite database.
type Journal struct {
	db   *sql.DB
	path string
	keep int
}

// Open creates or opens the journal at path. keep bounds the number of
// retained entries; zero uses DefaultKeep.
func Open(path string, keep int) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite db: %w", err)
	}
	// The daemon is single-threaded; one connection avoids lock contention.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Journal{db: db, path: path, keep: keep}, nil
}

// Path returns the database location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record inserts e and prunes entries beyond the retention limit.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.CommittedAt.IsZero() {
		e.CommittedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO commits (
            committed_at, flags, screen_on, profile_index, unmanaged,
            min_freq, max_freq, core_cap_level, core_cap_state,
            force_accessory, failed_writes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CommittedAt.UTC().Format(time.RFC3339Nano),
		strings.Join(e.Flags, ","),
		boolInt(e.ScreenOn),
		e.ProfileIndex,
		boolInt(e.Unmanaged),
		e.Resolved.MinFreq,
		e.Resolved.MaxFreq,
		e.Resolved.CoreCapLevel,
		e.Resolved.CoreCapState,
		boolInt(e.Resolved.ForceAccessory),
		e.FailedWrites,
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`DELETE FROM commits WHERE id NOT IN (
            SELECT id FROM commits ORDER BY id DESC LIMIT ?
        )`, j.keep)
	if err != nil {
		return fmt.Errorf("journal: prune: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, committed_at, flags, screen_on, profile_index, unmanaged,
                min_freq, max_freq, core_cap_level, core_cap_state,
                force_accessory, failed_writes
         FROM commits ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                          Entry
			ts, flags                  string
			screenOn, unmanaged, force int
		)
		if err := rows.Scan(
			&e.ID, &ts, &flags, &screenOn, &e.ProfileIndex, &unmanaged,
			&e.Resolved.MinFreq, &e.Resolved.MaxFreq,
			&e.Resolved.CoreCapLevel, &e.Resolved.CoreCapState,
			&force, &e.FailedWrites,
		); err != nil {
			return nil, fmt.Errorf("journal: scan row: %w", err)
		}
		e.CommittedAt, _ = time.Parse(time.RFC3339Nano, ts)
		if flags != "" {
			e.Flags = strings.Split(flags, ",")
		}
		e.ScreenOn = screenOn != 0
		e.Unmanaged = unmanaged != 0
		e.Resolved.ForceAccessory = force != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of retained entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
