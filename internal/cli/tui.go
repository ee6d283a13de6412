// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - The full-screen monitor.

package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sessionwatch/internal/config"
	"github.com/jeranaias/sessionwatch/internal/i18n"
	"github.com/jeranaias/sessionwatch/internal/theme"
	"github.com/jeranaias/sessionwatch/internal/ui/components"
	"github.com/jeranaias/sessionwatch/internal/ui/shell"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
	"github.com/jeranaias/sessionwatch/internal/util"
)

// LogFileName is the log file the TUI writes to inside the config dir.
const LogFileName = "sessionwatch.log"

// HandleTUI runs the Bubble Tea shell until the user quits or the session
// is logged out.
func HandleTUI(args Args) error {
	if err := RequiresTTY("start the full-screen monitor"); err != nil {
		return err
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	// Logs would corrupt the alt screen; send them to a file.
	dir, err := util.AppDir()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	logFile, err := tea.LogToFile(filepath.Join(dir, LogFileName), "sessionwatch")
	if err != nil {
		return NewCommandError("tui", "open log", err)
	}
	defer logFile.Close()
	logger := log.Default()

	rt, err := NewRuntime(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Theme preference
	storePath, err := theme.DefaultPath()
	if err != nil {
		return err
	}
	store := theme.NewStore(storePath)
	settings, err := store.Load()
	if err != nil {
		logger.Printf("THEME_LOAD_ERROR | %v", err)
		settings = theme.DefaultSettings()
	}

	mcfg := cfg.MonitorConfig()
	overlay := components.NewWarningOverlay(rt.Translator, styles.NewTheme(settings), mcfg.WarningDuration)
	activity := shell.NewActivity()

	monitor, err := rt.NewMonitor(overlay, activity)
	if err != nil {
		return err
	}
	defer monitor.Close()

	model := shell.New(shell.Options{
		Monitor:    monitor,
		Overlay:    overlay,
		Activity:   activity,
		Themes:     store,
		Settings:   settings,
		Translator: rt.Translator,
		Logger:     logger,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	program := tea.NewProgram(model, opts...)

	// Settings written by another process reach the shell through the watcher.
	watcher, err := theme.NewWatcher(store, theme.DefaultDebounce, func(s theme.Settings) {
		program.Send(shell.ThemeChangedMsg{Settings: s})
	})
	if err != nil {
		logger.Printf("THEME_WATCH_ERROR | %v", err)
	} else {
		if err := watcher.Watch(); err != nil {
			logger.Printf("THEME_WATCH_ERROR | %v", err)
		}
		defer watcher.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rt.ServeDebug(ctx)

	monitor.Start()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	if m, ok := final.(shell.Model); ok && m.State().Phase.IsTerminal() && !args.Quiet {
		fmt.Println(rt.Translator.T(i18n.LoggedOut))
	}
	return nil
}
