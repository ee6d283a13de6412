// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HomeEnvVar relocates the application directory. Used by tests and by
// installs that keep state outside the home directory.
const HomeEnvVar = "SESSIONWATCH_HOME"

// AppDir returns the directory that holds configuration, theme settings, the
// journal and the log file. Defaults to ~/.sessionwatch.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sessionwatch"), nil
}

// ExpandHome replaces a leading "~/" with the user's home directory. Paths
// under "~/.sessionwatch" follow AppDir.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/")
	if rest == ".sessionwatch" || strings.HasPrefix(rest, ".sessionwatch/") {
		dir, err := AppDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, strings.TrimPrefix(strings.TrimPrefix(rest, ".sessionwatch"), "/")), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}
