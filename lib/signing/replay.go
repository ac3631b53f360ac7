// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"errors"
	"time"
)

// DefaultReplayWindow is the default acceptance window for request
// timestamps, matching the gateway's retry horizon.
const DefaultReplayWindow = 300 * time.Second

// Errors returned by CheckTimestamp.
var (
	ErrMissingTimestamp = errors.New("signing: timestamp is missing")
	ErrStaleTimestamp   = errors.New("signing: timestamp outside allowed window")
)

// CheckTimestamp accepts a request timestamp (seconds since epoch) iff
// |now - timestamp| <= window. The boundary is inclusive: a request
// exactly window old is still accepted. A zero timestamp — the JSON
// zero value when the field is absent — is always rejected, with a
// distinct sentinel so callers can log it separately.
//
// The comparison is done in whole seconds so the boundary is exact
// regardless of the sub-second component of now.
func CheckTimestamp(timestamp int64, now time.Time, window time.Duration) error {
	if timestamp == 0 {
		return ErrMissingTimestamp
	}
	if window <= 0 {
		window = DefaultReplayWindow
	}
	skew := now.Unix() - timestamp
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(window/time.Second) {
		return ErrStaleTimestamp
	}
	return nil
}
