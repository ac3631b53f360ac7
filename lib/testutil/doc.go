// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers: channel assertions
// with timeout safety valves, so individual tests do not need direct
// time.After calls.
package testutil
