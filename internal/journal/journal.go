// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/sessionwatch/internal/session"
)

const (
	// queueSize bounds events waiting for the writer.
	queueSize = 256

	// DefaultLimit is used by Recent for a non-positive limit.
	DefaultLimit = 50
)

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("journal closed")
)

// Entry is one journal row.
type Entry struct {
	ID               int64             `json:"id"`
	MonitorID        string            `json:"monitor_id"`
	Kind             session.EventKind `json:"kind"`
	Phase            session.Phase     `json:"phase"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Detail           string            `json:"detail,omitempty"`
	At               time.Time         `json:"at"`
}

// Journal is a SQLite-backed event journal.
type Journal struct {
	db   *sql.DB
	path string

	queue   chan session.Event
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path cannot be empty")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has one writer; the writer goroutine and readers share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	j := &Journal{
		db:    db,
		path:  path,
		queue: make(chan session.Event, queueSize),
		done:  make(chan struct{}),
	}
	go j.writer()
	return j, nil
}

// Path returns the database path.
func (j *Journal) Path() string {
	return j.path
}

// Record writes one event synchronously.
func (j *Journal) Record(ev session.Event) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}
	return j.insert(ev)
}

func (j *Journal) insert(ev session.Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.Exec(
		`INSERT INTO events (monitor_id, kind, phase, remaining, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.MonitorID, string(ev.Kind), ev.Phase.String(), ev.RemainingSeconds, ev.Detail, at.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", ev.Kind, err)
	}
	return nil
}

// Observer returns a session.Observer that queues events for the background
// writer. Events are dropped, and counted, when the queue is full.
func (j *Journal) Observer() session.Observer {
	return func(ev session.Event) {
		j.mu.RLock()
		defer j.mu.RUnlock()
		if j.closed {
			return
		}
		select {
		case j.queue <- ev:
		default:
			j.dropped.Add(1)
		}
	}
}

// Dropped returns how many queued events were lost to a full queue.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

func (j *Journal) writer() {
	defer close(j.done)
	for ev := range j.queue {
		if err := j.insert(ev); err != nil {
			log.Printf("JOURNAL_WRITE_FAILED | %v", err)
		}
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, monitor_id, kind, phase, remaining, detail, at FROM events ORDER BY at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			kind  string
			phase string
			at    int64
		)
		if err := rows.Scan(&e.ID, &e.MonitorID, &kind, &phase, &e.RemainingSeconds, &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Kind = session.EventKind(kind)
		if err := e.Phase.UnmarshalText([]byte(phase)); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns the number of entries per event kind.
func (j *Journal) Counts(ctx context.Context) (map[session.EventKind]int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}

	rows, err := j.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[session.EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[session.EventKind(kind)] = n
	}
	return counts, rows.Err()
}

// Prune deletes entries recorded before cutoff and returns how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}

	res, err := j.db.ExecContext(ctx, `DELETE FROM events WHERE at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return res.RowsAffected()
}

// Close drains queued events and closes the database.
func (j *Journal) Close() error {
	var err error
	j.once.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.queue)
		j.mu.Unlock()

		<-j.done
		err = j.db.Close()
	})
	return err
}
