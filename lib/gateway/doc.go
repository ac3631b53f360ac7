// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway implements the registration client for the Flowent
// gateway: exchanging a long-lived API token for a short-lived bearer
// token and announcing each action's callback URL and parameter
// schema. Registration runs out of band at startup and never touches
// the request path; a failed registration is logged and abandoned
// without affecting the server.
package gateway
