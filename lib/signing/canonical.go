// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Errors returned by EncodePayload.
var (
	ErrMissingActionName = errors.New("signing: action_name is required")
	ErrMissingParameters = errors.New("signing: parameters is required")
)

// EncodePayload builds the canonical byte sequence the gateway signed:
// a compact JSON object with keys in the fixed order action_name,
// parameters, timestamp, and test (only when present), with no
// inserted whitespace.
//
// parameters must be the raw JSON object bytes from the request body,
// not a re-marshaled Go map. json.Compact preserves the gateway's
// object key order byte-for-byte; round-tripping through a map would
// re-sort keys and make signatures fail intermittently depending on
// the gateway's key order. Callers that have no parameters pass the
// literal bytes "{}".
func EncodePayload(actionName string, parameters json.RawMessage, timestamp int64, test *bool) ([]byte, error) {
	if actionName == "" {
		return nil, ErrMissingActionName
	}
	if len(parameters) == 0 {
		return nil, ErrMissingParameters
	}

	var buf bytes.Buffer
	buf.WriteString(`{"action_name":`)
	buf.Write(encodeJSONString(actionName))
	buf.WriteString(`,"parameters":`)
	if err := json.Compact(&buf, parameters); err != nil {
		return nil, fmt.Errorf("signing: invalid parameters JSON: %w", err)
	}
	buf.WriteString(`,"timestamp":`)
	buf.WriteString(strconv.FormatInt(timestamp, 10))
	if test != nil {
		buf.WriteString(`,"test":`)
		buf.WriteString(strconv.FormatBool(*test))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSONString encodes s exactly as the gateway's serializer
// does: no HTML escaping of <, >, or &, short escapes for the usual
// control characters, and every non-ASCII rune emitted as a lowercase
// \uXXXX escape (surrogate pairs above the BMP). encoding/json gets
// both ends wrong for signing purposes — it HTML-escapes by default
// and passes non-ASCII through as raw UTF-8 — so the bytes are built
// by hand.
func encodeJSONString(s string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			switch {
			case r < 0x20 || r > 0x7f && r <= 0xffff:
				fmt.Fprintf(&buf, `\u%04x`, r)
			case r > 0xffff:
				r -= 0x10000
				fmt.Fprintf(&buf, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			default:
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.Bytes()
}
