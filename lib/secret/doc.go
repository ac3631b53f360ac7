// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret reads secret material (the shared signing key, the
// gateway API token) from files or stdin. Secrets are provisioned out
// of band and referenced by path in configuration, never inlined in
// config files. Callers zero intermediate buffers once the secret has
// been handed off.
package secret
