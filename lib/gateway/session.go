// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"fmt"
	"os"
	"time"

	"github.com/flowent-foundation/actionserver/lib/codec"
)

// sessionTTL is how long a cached bearer token is assumed live. The
// gateway issues short-lived JWTs; staying well inside their lifetime
// avoids registering with a token that expires mid-run.
const sessionTTL = 15 * time.Minute

// Session is a cached gateway bearer token with its issue time,
// persisted as deterministic CBOR.
type Session struct {
	JWTToken string `cbor:"jwt_token"`
	IssuedAt int64  `cbor:"issued_at"`
}

// Live reports whether the session's token is still usable at the
// given time.
func (s Session) Live(now time.Time) bool {
	if s.JWTToken == "" || s.IssuedAt <= 0 {
		return false
	}
	issued := time.Unix(s.IssuedAt, 0)
	return now.Sub(issued) < sessionTTL && !now.Before(issued)
}

// LoadSession reads a cached session from path.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("reading session cache: %w", err)
	}
	var session Session
	if err := codec.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("decoding session cache %s: %w", path, err)
	}
	return session, nil
}

// Save writes the session to path, owner-readable only since it holds
// a bearer token.
func (s Session) Save(path string) error {
	data, err := codec.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session cache: %w", err)
	}
	return nil
}
