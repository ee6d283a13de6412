// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme persists the user's colour theme preference.
//
// Three modes cycle in order: default, light, dark, default. Settings are
// stored as TOML under ~/.sessionwatch/theme.toml. A missing or empty file
// yields the default settings. A Watcher reloads the file when another
// sessionwatch process changes it.
package theme

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sessionwatch/internal/util"
)

// =============================================================================
// MODE
// =============================================================================

// Mode is a colour theme.
type Mode string

const (
	// ModeDefault follows the terminal's own background.
	ModeDefault Mode = "default"
	ModeLight   Mode = "light"
	ModeDark    Mode = "dark"
)

// Next returns the mode after m in the cycle.
func (m Mode) Next() Mode {
	switch m {
	case ModeDefault:
		return ModeLight
	case ModeLight:
		return ModeDark
	default:
		return ModeDefault
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDefault || m == ModeLight || m == ModeDark
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return ModeDefault, fmt.Errorf("unknown theme mode %q (want default, light or dark)", s)
	}
	return m, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// optionPattern selects the layout options that are persisted.
var optionPattern = regexp.MustCompile(`^(nav|header|footer|mod|display)-[\w-]+$`)

// Settings is the persisted preference.
type Settings struct {
	Mode Mode `toml:"mode" json:"mode"`

	// Options are layout flags such as "display-compact".
	Options []string `toml:"options,omitempty" json:"options,omitempty"`

	UpdatedAt time.Time `toml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{Mode: ModeDefault}
}

// HasOption reports whether opt is set.
func (s Settings) HasOption(opt string) bool {
	for _, o := range s.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// FilterOptions keeps the recognised layout options from a space or comma
// separated list, dropping duplicates.
func FilterOptions(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	}) {
		item = strings.ToLower(item)
		if optionPattern.MatchString(item) && !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// =============================================================================
// STORE
// =============================================================================

// ErrInvalidSettings is returned for a settings file that does not decode.
var ErrInvalidSettings = errors.New("invalid theme settings")

// Store reads and writes Settings at a path.
type Store struct {
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.sessionwatch/theme.toml.
func DefaultPath() (string, error) {
	dir, err := util.AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme.toml"), nil
}

// NewStore creates a Store for path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings. A missing or empty file yields DefaultSettings.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(strings.TrimSpace(string(data))) == 0) {
		log.Printf("THEME_DEFAULTS | path=%s settings empty or missing, loading defaults", s.path)
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read theme settings: %w", err)
	}

	var settings Settings
	if _, err := toml.Decode(string(data), &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if settings.Mode == "" {
		settings.Mode = ModeDefault
	}
	if !settings.Mode.Valid() {
		return DefaultSettings(), fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, settings.Mode)
	}
	settings.Options = FilterOptions(strings.Join(settings.Options, " "))
	return settings, nil
}

// Save writes the settings atomically.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settings)
}

func (s *Store) save(settings Settings) error {
	if !settings.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, settings.Mode)
	}
	settings.Options = FilterOptions(strings.Join(settings.Options, " "))
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}

	var b strings.Builder
	b.WriteString("# sessionwatch theme preference\n")
	if err := toml.NewEncoder(&b).Encode(settings); err != nil {
		return fmt.Errorf("failed to encode theme settings: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write theme settings: %w", err)
	}
	return nil
}

// Cycle advances to the next mode and saves it.
func (s *Store) Cycle() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.load()
	if err != nil {
		log.Printf("THEME_LOAD_FAILED | %v", err)
	}
	settings.Mode = settings.Mode.Next()
	settings.UpdatedAt = time.Time{}
	if err := s.save(settings); err != nil {
		return settings, err
	}
	log.Printf("THEME_CHANGED | mode=%s", settings.Mode)
	return settings, nil
}

// Reset empties the stored settings so the next Load yields defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := util.AtomicWriteFile(s.path, nil, 0600); err != nil {
		return fmt.Errorf("failed to reset theme settings: %w", err)
	}
	return nil
}
