// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Verify. None of them carry the expected digest —
// signature values computed with the shared key must never reach a
// response body or an error chain that could.
var (
	ErrEmptySecret       = errors.New("signing: shared key is empty")
	ErrMissingSignature  = errors.New("signing: signature is empty")
	ErrSignatureMismatch = errors.New("signing: signature mismatch")
)

// Sign computes the hex-encoded HMAC-SHA256 of payload with the shared
// key. This is the gateway side of the protocol; the server uses it in
// tests and diagnostic tooling.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signatureHex against the HMAC-SHA256 of payload under
// the shared key using a constant-time comparison. Returns nil only on
// an exact match.
func Verify(secret, payload []byte, signatureHex string) error {
	if len(secret) == 0 {
		return ErrEmptySecret
	}
	signatureHex = strings.TrimSpace(signatureHex)
	if signatureHex == "" {
		return ErrMissingSignature
	}

	presented, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("signing: invalid hex signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	// hmac.Equal is constant-time. A short-circuiting string compare
	// would leak how many leading bytes matched.
	if !hmac.Equal(expected, presented) {
		return ErrSignatureMismatch
	}
	return nil
}
