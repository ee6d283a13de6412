// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Aliases: cfg
//
// Subcommands:
//   show (default)      Display the effective configuration as TOML
//   init [--force]      Write the default configuration file
//   path                Show the configuration file path
//   get <key>           Print one value
//   set <key> <value>   Set one value in the config file
//   keys                List every key
//
// Examples:
//   sessionwatch config set session.warning_time_secs 600
//   sessionwatch config set server.base_url https://app.example.com
//   sessionwatch config get session.logout_url --json
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionwatch/internal/config"
	"github.com/jeranaias/sessionwatch/internal/ui/components"
	"github.com/jeranaias/sessionwatch/internal/ui/styles"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	configKeyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	configValueStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)

	configSuccessStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald).
				Bold(true)

	configPathStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Italic(true)
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	return runConfig(args, os.Stdout)
}

func runConfig(args Args, out io.Writer) error {
	p := NewArgParser(args.Raw)
	jsonMode := args.JSON || p.BoolFlag("json")

	switch p.Subcommand() {
	case "", "show":
		return handleConfigShow(args, out, jsonMode)
	case "init":
		return handleConfigInit(args, out, p.BoolFlag("force"))
	case "path":
		return handleConfigPath(args, out, jsonMode)
	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "sessionwatch config get KEY")
		}
		return handleConfigGet(args, out, key, jsonMode)
	case "set":
		key, value := p.Positional(1), p.Positional(2)
		if key == "" || p.PositionalCount() < 3 {
			return ErrMissingArgument("key or value", "sessionwatch config set KEY VALUE")
		}
		return handleConfigSet(args, out, key, value, jsonMode)
	case "keys":
		return handleConfigKeys(out, jsonMode)
	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand %q (show, init, path, get, set, keys)", p.Subcommand())}
	}
}

// configFilePath is the file "config" reads and writes.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func handleConfigShow(args Args, out io.Writer, jsonMode bool) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	safe := cfg.Redacted()

	if jsonMode {
		return NewJSONResponse("config show", safe).Write(out)
	}

	data, err := config.EncodeTOML(safe)
	if err != nil {
		return err
	}
	text := string(data)
	if ColorsEnabled() {
		text = components.HighlightTOML(text, HasDarkBackground())
	}
	fmt.Fprint(out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func handleConfigInit(args Args, out io.Writer, force bool) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if fileExists(path) && !force {
		return &UsageError{Message: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return NewCommandError("config", "init", err)
	}
	fmt.Fprintf(out, "%s Wrote %s\n", configSuccessStyle.Render("[OK]"), configPathStyle.Render(path))
	return nil
}

func handleConfigPath(args Args, out io.Writer, jsonMode bool) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if jsonMode {
		return NewJSONResponse("config path", ConfigPathData{Path: path, Exists: fileExists(path)}).Write(out)
	}
	fmt.Fprintln(out, path)
	return nil
}

func handleConfigGet(args Args, out io.Writer, key string, jsonMode bool) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	value, err := cfg.Redacted().Get(key)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}
	if jsonMode {
		return NewJSONResponse("config get", ConfigValueData{Key: key, Value: value}).Write(out)
	}
	fmt.Fprintln(out, value)
	return nil
}

// handleConfigSet edits the file alone, so environment overrides are never
// written back.
func handleConfigSet(args Args, out io.Writer, key, value string, jsonMode bool) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if fileExists(path) {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", err)
		}
	}
	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", err)
	}

	stored, _ := cfg.Redacted().Get(key)
	if jsonMode {
		return NewJSONResponse("config set", ConfigValueData{Key: key, Value: stored}).Write(out)
	}
	fmt.Fprintf(out, "%s %s = %s\n",
		configSuccessStyle.Render("[OK]"),
		configKeyStyle.Render(key),
		configValueStyle.Render(fmt.Sprint(stored)))
	return nil
}

func handleConfigKeys(out io.Writer, jsonMode bool) error {
	keys := config.GetAllKeys()
	if jsonMode {
		return NewJSONResponse("config keys", keys).Write(out)
	}
	for _, k := range keys {
		fmt.Fprintln(out, k)
	}
	return nil
}
