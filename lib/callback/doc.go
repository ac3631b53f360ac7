// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package callback implements the inbound side of the Flowent action
// protocol: the HTTP endpoint the gateway calls to invoke actions.
//
// Each POST /actions/{name} request moves through a fixed pipeline —
// parse, test-mode short-circuit, signature verification, replay
// window check, dispatch — short-circuiting on the first failure. The
// response body is always the uniform {"result", "error"} shape, on
// every path including internal failures; other systems depend on
// that shape.
//
// The package also serves the unauthenticated /health and /actions
// discovery endpoints, Prometheus metrics, and the HTTP listener
// lifecycle (readiness signal, graceful shutdown).
package callback
