// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for CLI commands.
//
// Every command that supports --json prints one JSONResponse envelope on
// stdout. Human-readable messages go to stderr in JSON mode.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/sessionwatch/internal/journal"
	"github.com/jeranaias/sessionwatch/internal/session"
	"github.com/jeranaias/sessionwatch/internal/theme"
	"github.com/jeranaias/sessionwatch/internal/ui/components"
)

// JSONResponse is the response envelope for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	return r.Write(os.Stdout)
}

// Write outputs the indented JSON response to w, syntax highlighted when
// colored output is enabled.
func (r *JSONResponse) Write(w io.Writer) error {
	if ColorsEnabled() {
		_, err := fmt.Fprintln(w, components.HighlightJSON(r.String(), HasDarkBackground()))
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// ConfigPathData is returned by "config path".
type ConfigPathData struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ConfigValueData is returned by "config get" and "config set".
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// JournalData is returned by "journal".
type JournalData struct {
	Path    string          `json:"path"`
	Entries []journal.Entry `json:"entries"`
}

// JournalStatsData is returned by "journal --stats".
type JournalStatsData struct {
	Path   string                    `json:"path"`
	Counts map[session.EventKind]int `json:"counts"`
	Total  int                       `json:"total"`
}

// JournalPruneData is returned by "journal --prune-days".
type JournalPruneData struct {
	Path    string    `json:"path"`
	Cutoff  time.Time `json:"cutoff"`
	Removed int64     `json:"removed"`
}

// ThemeData is returned by the theme commands.
type ThemeData struct {
	Path     string         `json:"path"`
	Settings theme.Settings `json:"settings"`
}
