// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now, time.After, or time.Sleep directly. In production, Real()
// provides the standard library behavior. In tests, Fake() provides a
// deterministic clock that advances only when Advance is called.
//
// The replay window check is the one place wall-clock time enters the
// request path; injecting the clock there is what makes the window
// boundary testable to the second.
package clock
