// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package signing implements the Flowent callback authentication
// protocol: the canonical payload encoding, the HMAC-SHA256 signature
// over it, and the timestamp replay window.
//
// The gateway signs every action invocation by serializing
// {action_name, parameters, timestamp[, test]} — in that key order,
// with compact separators, and excluding the signature field itself —
// and computing a hex-encoded HMAC-SHA256 over the resulting bytes
// with the shared key. The server must reproduce those bytes exactly;
// any deviation in field set, key order, or separators breaks every
// signature. EncodePayload is the single implementation of that
// encoding on the server side.
//
// The signature carries no expiry, so the timestamp window enforced by
// CheckTimestamp is the only defense against replaying a captured
// valid request. Clock skew between gateway and server is an accepted
// risk bounded by the window.
package signing
