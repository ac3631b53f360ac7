// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the action server.
//
// Configuration is loaded from a single YAML file specified by:
//   - FLOWENT_CONFIG environment variable, or
//   - --config flag passed to the binary
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections
// (development, staging, production) that override base values when
// the environment matches. Secret material (the shared signing key,
// the gateway API token) is referenced by file path, never inlined.
package config
