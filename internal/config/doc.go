// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for sessionwatch.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - SessionConfig: monitor timings and URLs ([session])
//   - ServerConfig: the web application and its session cookie ([server])
//   - JournalConfig, DebugConfig, UIConfig
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SESSIONWATCH_*)
//   - ~/.sessionwatch/config.toml
//   - ~/.sessionwatch/config.json
//   - Built-in defaults
//
// SESSIONWATCH_HOME relocates ~/.sessionwatch.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	monitor, err := session.New(cfg.MonitorConfig(), opts...)
package config
