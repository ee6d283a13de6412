// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the journal database schema.
const Schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per monitor event
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    monitor_id TEXT NOT NULL,
    kind TEXT NOT NULL,          -- started, reset, warning_shown, ...
    phase TEXT NOT NULL,         -- IDLE, WARNING, LOGGED_OUT
    remaining INTEGER NOT NULL,  -- countdown seconds, 0 outside the warning
    detail TEXT NOT NULL DEFAULT '',
    at INTEGER NOT NULL          -- Unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
CREATE INDEX IF NOT EXISTS idx_events_monitor ON events(monitor_id);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
