// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding for persisted
// state. The encoder uses Core Deterministic Encoding (RFC 8949 §4.2)
// so the same logical data always produces identical bytes; the
// decoder accepts standard CBOR and ignores unknown fields for
// forward compatibility.
//
// Note this codec is for local state files only. The callback
// authentication protocol signs a JSON canonical encoding, which is
// defined in lib/signing and has nothing to do with CBOR.
package codec
