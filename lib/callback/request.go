// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import "encoding/json"

// ActionRequest is the JSON body of an action invocation from the
// gateway. Parameters is kept as raw bytes: signature verification
// must re-encode the gateway's exact serialization, and parsing into
// a Go map would destroy its key order.
type ActionRequest struct {
	// ActionName identifies the action, duplicated from the URL
	// path. The signed canonical payload uses this field; dispatch
	// uses the path segment.
	ActionName string `json:"action_name"`

	// Parameters is the handler-specific argument object. May be
	// absent; the pipeline substitutes an empty object before
	// signature verification.
	Parameters json.RawMessage `json:"parameters"`

	// Timestamp is seconds since epoch, asserted by the gateway as
	// the request production time. Bounded by the replay window.
	Timestamp int64 `json:"timestamp"`

	// Test marks a registration-time liveness probe. A true value
	// bypasses signature and timestamp checks entirely. The pointer
	// distinguishes absent from false: when present, the field is
	// part of the signed payload.
	Test *bool `json:"test,omitempty"`

	// Signature is the hex HMAC-SHA256 over the canonical payload,
	// excluding itself.
	Signature string `json:"signature"`
}

// ActionResponse is the uniform response body: both fields always
// present, on success and on every failure path.
type ActionResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}
