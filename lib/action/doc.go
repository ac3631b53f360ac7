// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package action defines the action registry and the dispatch
// boundary between pipeline code and handler code.
//
// Handlers receive only a context and the parsed parameters — no
// request-level fields like signature or timestamp — and return a
// Result. The registry is built once at startup and is immutable
// afterward, so concurrent lookups need no synchronization. Dispatch
// converts every handler outcome, including panics, into a Result;
// handler code can never crash the server or leak an unstructured
// failure to the transport layer.
package action
