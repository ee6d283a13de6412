// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package journal stores session monitor events in SQLite.
//
// The journal is the durable record of what a monitor did: when warnings were
// shown, which renewals failed and why each session ended. It uses the pure Go
// modernc.org/sqlite driver with a single connection in WAL mode.
//
// Observer returns a session.Observer that queues events for a background
// writer, so the monitor's event loop never waits on disk I/O. Close drains the
// queue.
//
// # Usage
//
//	j, err := journal.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	monitor, err := session.New(cfg, session.WithObserver(j.Observer()))
//
//	entries, err := j.Recent(ctx, 20)
package journal
