// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// theme_cmd.go - Theme command implementation.
//
// Command: theme [subcommand]
//
// Subcommands:
//   show (default)               Show the stored settings
//   next                         Cycle default -> light -> dark -> default
//   set MODE [--options LIST]    Store a mode and layout options
//   reset                        Clear the stored settings
//
// A running monitor picks up changes through its file watcher.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/sessionwatch/internal/theme"
)

// HandleTheme handles the "theme" command.
func HandleTheme(args Args) error {
	return runTheme(args, os.Stdout)
}

func runTheme(args Args, out io.Writer) error {
	p := NewArgParser(args.Raw)
	jsonMode := args.JSON || p.BoolFlag("json")

	path, err := theme.DefaultPath()
	if err != nil {
		return err
	}
	store := theme.NewStore(path)

	var settings theme.Settings
	switch p.Subcommand() {
	case "", "show":
		settings, err = store.Load()
		if err != nil {
			return NewCommandError("theme", "load", err)
		}
	case "next", "cycle":
		settings, err = store.Cycle()
		if err != nil {
			return NewCommandError("theme", "cycle", err)
		}
	case "set":
		mode, err := theme.ParseMode(p.Positional(1))
		if err != nil {
			return &UsageError{Message: err.Error()}
		}
		settings = theme.Settings{Mode: mode, Options: theme.FilterOptions(p.Flag("options"))}
		if err := store.Save(settings); err != nil {
			return NewCommandError("theme", "set", err)
		}
	case "reset":
		if err := store.Reset(); err != nil {
			return NewCommandError("theme", "reset", err)
		}
		settings = theme.DefaultSettings()
	default:
		return &UsageError{Message: fmt.Sprintf("unknown theme subcommand %q (show, next, set, reset)", p.Subcommand())}
	}

	if jsonMode {
		return NewJSONResponse("theme", ThemeData{Path: path, Settings: settings}).Write(out)
	}
	fmt.Fprintf(out, "%s %s\n", configKeyStyle.Render("mode:   "), configValueStyle.Render(string(settings.Mode)))
	if len(settings.Options) > 0 {
		fmt.Fprintf(out, "%s %s\n", configKeyStyle.Render("options:"), strings.Join(settings.Options, " "))
	}
	fmt.Fprintf(out, "%s %s\n", configKeyStyle.Render("file:   "), configPathStyle.Render(path))
	return nil
}
