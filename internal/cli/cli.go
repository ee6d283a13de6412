// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for sessionwatch.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLine
	CmdConfig
	CmdJournal
	CmdTheme
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLine:
		return "line"
	case CmdConfig:
		return "config"
	case CmdJournal:
		return "journal"
	case CmdTheme:
		return "theme"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool   // Output in JSON format
	ConfigPath string // --config: load this file instead of the default
	Locale     string // --locale: overrides ui.locale
	Debug      bool   // --debug: start the diagnostic server
	NoColor    bool   // --no-color: plain output even on a terminal

	// Command-specific
	Subcommand string
	Name       string // First word after the command, as typed

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `sessionwatch - keep watch over a web application session

sessionwatch observes activity in the terminal and runs a two-phase idle
timer. After the silent phase a warning with a countdown appears; continue
renews the session through the keep-alive URL, otherwise the session is
logged out through the logout URL.

Usage:
  sessionwatch                       Start the full-screen monitor (default)
  sessionwatch tui                   Same as above
  sessionwatch line                  Line-mode monitor for plain terminals
  sessionwatch config [subcommand]   Configuration
  sessionwatch journal [flags]       Show recorded monitor events
  sessionwatch theme [subcommand]    Theme preference
  sessionwatch version               Version information
  sessionwatch help                  This text

Config Commands:
  sessionwatch config show           Print the effective configuration (TOML)
    --json                           Print as JSON
  sessionwatch config init           Write a default config file
    --force                          Overwrite an existing file
  sessionwatch config path           Print the config file path
  sessionwatch config get KEY        Print one value (e.g. session.logout_url)
  sessionwatch config set KEY VALUE  Set one value and save
  sessionwatch config keys           List all keys

Journal Commands:
  sessionwatch journal               Show the most recent events
    --limit N                        Number of events (default: 50)
    --stats                          Event counts by kind
    --prune-days N                   Delete events older than N days
    --json                           Output in JSON format

Theme Commands:
  sessionwatch theme show            Show the stored theme settings
  sessionwatch theme next            Cycle default -> light -> dark
  sessionwatch theme reset           Clear the stored settings

Global Flags:
  --config FILE                      Use FILE instead of ~/.sessionwatch/config.toml
  --locale TAG                       Language of the warning (en, es)
  --debug                            Serve diagnostics on the loopback address
  --json                             JSON output where supported
  --no-color                         Disable syntax highlighting
  -q, --quiet                        Less output
  -v, --verbose                      More output

Keys (tui):
  c / enter   continue the session      l / n    log out now
  tab         switch button             ctrl+k   cycle theme
  ?           help                      ctrl+c   quit without logging out

Environment:
  SESSIONWATCH_HOME             Config directory (default ~/.sessionwatch)
  SESSIONWATCH_BASE_URL         Application base URL
  SESSIONWATCH_SESSION_COOKIE   Session cookie value
  SESSIONWATCH_LOCALE           Locale
  SESSIONWATCH_DEBUG            Enable the diagnostics handle and server
  SESSIONWATCH_WARNING_SECS     Silent phase length in seconds
  SESSIONWATCH_LOGOUT_SECS      Warning phase length in seconds

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("sessionwatch version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	parsedArgs.Name = remaining[0]
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "line", "repl":
		return CmdLine, parsedArgs
	case "config", "cfg":
		return CmdConfig, parsedArgs
	case "journal", "log", "events":
		return CmdJournal, parsedArgs
	case "theme":
		return CmdTheme, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--debug":
			parsedArgs.Debug = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		case "--locale":
			if i+1 < len(args) {
				i++
				parsedArgs.Locale = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--locale="):
				parsedArgs.Locale = strings.TrimPrefix(arg, "--locale=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// VersionData is the JSON form of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		if err := NewJSONResponse("version", data).Print(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// Run executes cmd and returns the process exit code.
func Run(cmd Command, args Args) int {
	if args.NoColor {
		SetColorsEnabled(false)
	}

	var err error
	switch cmd {
	case CmdTUI:
		err = HandleTUI(args)
	case CmdLine:
		err = HandleLine(args)
	case CmdConfig:
		err = HandleConfig(args)
	case CmdJournal:
		err = HandleJournal(args)
	case CmdTheme:
		err = HandleTheme(args)
	case CmdVersion:
		HandleVersion(args)
	case CmdHelp:
		HandleHelp()
	default:
		err = &UsageError{Message: fmt.Sprintf("unknown command %q (see 'sessionwatch help')", args.Name)}
	}

	if err != nil {
		DisplayError(err, args.JSON, cmd.String())
		return GetExitCode(err)
	}
	return ExitSuccess
}
