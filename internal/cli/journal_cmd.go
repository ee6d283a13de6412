// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// journal_cmd.go - Journal command implementation.
//
// Command: journal [flags]
// Aliases: log, events
//
// Flags:
//   --limit N        Number of recent events (default: 50)
//   --stats          Event counts by kind
//   --prune-days N   Delete events older than N days
//   --json           Output in JSON format
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/journal"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
	"github.com/jeranaias/sessionwatch/internal/util"
)

var (
	journalTimeStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
	journalIDStyle   = lipgloss.NewStyle().Foreground(styles.TextSecondary)
)

// HandleJournal handles the "journal" command.
func HandleJournal(args Args) error {
	return runJournal(args, os.Stdout)
}

func runJournal(args Args, out io.Writer) error {
	p := NewArgParser(args.Raw)
	jsonMode := args.JSON || p.BoolFlag("json")

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	path, err := cfg.JournalPath()
	if err != nil {
		return err
	}
	if !fileExists(path) {
		return NewCommandError("journal", "open", fmt.Errorf("no journal at %s", path))
	}

	j, err := journal.Open(path)
	if err != nil {
		return NewCommandError("journal", "open", err)
	}
	defer j.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case p.HasFlag("prune-days"):
		days, err := ParseIntWithValidation(p.Flag("prune-days"), "--prune-days")
		if err != nil {
			return &UsageError{Message: err.Error()}
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		removed, err := j.Prune(ctx, cutoff)
		if err != nil {
			return NewCommandError("journal", "prune", err)
		}
		if jsonMode {
			return NewJSONResponse("journal prune", JournalPruneData{Path: path, Cutoff: cutoff, Removed: removed}).Write(out)
		}
		fmt.Fprintf(out, "%s removed %d events older than %s\n",
			configSuccessStyle.Render("[OK]"), removed, cutoff.Format(time.RFC3339))
		return nil

	case p.BoolFlag("stats"):
		counts, err := j.Counts(ctx)
		if err != nil {
			return NewCommandError("journal", "stats", err)
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		if jsonMode {
			return NewJSONResponse("journal stats", JournalStatsData{Path: path, Counts: counts, Total: total}).Write(out)
		}
		printJournalStats(out, counts, total)
		return nil

	default:
		limit := p.FlagIntOrDefault("limit", journal.DefaultLimit)
		if limit <= 0 {
			return &UsageError{Message: fmt.Sprintf("--limit must be positive, got %d", limit)}
		}
		entries, err := j.Recent(ctx, limit)
		if err != nil {
			return NewCommandError("journal", "read", err)
		}
		if jsonMode {
			return NewJSONResponse("journal", JournalData{Path: path, Entries: entries}).Write(out)
		}
		printJournalEntries(out, entries)
		return nil
	}
}

func printJournalEntries(out io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No events recorded.")
		return
	}
	for _, e := range entries {
		phase := lipgloss.NewStyle().Foreground(styles.PhaseColor(e.Phase)).Render(fmt.Sprintf("%-10s", e.Phase))
		line := fmt.Sprintf("%s %s %s %-16s",
			journalTimeStyle.Render(e.At.Local().Format("2006-01-02 15:04:05")),
			journalIDStyle.Render(util.TruncateRunes(e.MonitorID, 8)),
			phase,
			e.Kind)
		if e.Phase == session.PhaseWarning {
			line += " " + session.FormatCountdown(e.RemainingSeconds)
		}
		if e.Detail != "" {
			line += " " + journalIDStyle.Render(e.Detail)
		}
		fmt.Fprintln(out, line)
	}
}

func printJournalStats(out io.Writer, counts map[session.EventKind]int, total int) {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "  %s %d\n", configKeyStyle.Render(fmt.Sprintf("%-16s", k)), counts[session.EventKind(k)])
	}
	fmt.Fprintf(out, "  %s %d\n", configKeyStyle.Render(fmt.Sprintf("%-16s", "total")), total)
}
