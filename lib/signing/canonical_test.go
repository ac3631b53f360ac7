// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodePayload(t *testing.T) {
	params := json.RawMessage(`{"recipient":"a@example.com","subject":"Hi","body":"Hello"}`)

	t.Run("known_encoding", func(t *testing.T) {
		got, err := EncodePayload("send_email", params, 1700000000, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		want := `{"action_name":"send_email","parameters":{"recipient":"a@example.com","subject":"Hi","body":"Hello"},"timestamp":1700000000}`
		if string(got) != want {
			t.Errorf("EncodePayload() = %s, want %s", got, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := EncodePayload("send_email", params, 1700000000, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		second, err := EncodePayload("send_email", params, 1700000000, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("re-encoding differs: %s vs %s", first, second)
		}
	})

	t.Run("test_field_included_when_present", func(t *testing.T) {
		testFlag := true
		got, err := EncodePayload("send_email", json.RawMessage(`{}`), 1700000000, &testFlag)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		want := `{"action_name":"send_email","parameters":{},"timestamp":1700000000,"test":true}`
		if string(got) != want {
			t.Errorf("EncodePayload() = %s, want %s", got, want)
		}
	})

	t.Run("test_false_still_included", func(t *testing.T) {
		testFlag := false
		got, err := EncodePayload("x", json.RawMessage(`{}`), 1, &testFlag)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		if !bytes.Contains(got, []byte(`,"test":false`)) {
			t.Errorf("EncodePayload() = %s, want test:false present", got)
		}
	})

	t.Run("parameter_key_order_preserved", func(t *testing.T) {
		// The same logical object with a different key order must
		// produce different canonical bytes: the encoding reproduces
		// the gateway's serialization, it does not normalize it.
		ab, err := EncodePayload("x", json.RawMessage(`{"a":1,"b":2}`), 1, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		ba, err := EncodePayload("x", json.RawMessage(`{"b":2,"a":1}`), 1, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		if bytes.Equal(ab, ba) {
			t.Error("encodings with different key orders are equal; key order was normalized")
		}
	})

	t.Run("whitespace_compacted", func(t *testing.T) {
		spaced := json.RawMessage("{\n  \"a\": 1\n}")
		got, err := EncodePayload("x", spaced, 1, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		want := `{"action_name":"x","parameters":{"a":1},"timestamp":1}`
		if string(got) != want {
			t.Errorf("EncodePayload() = %s, want %s", got, want)
		}
	})

	t.Run("no_html_escaping_in_name", func(t *testing.T) {
		got, err := EncodePayload("a<b>&c", json.RawMessage(`{}`), 1, nil)
		if err != nil {
			t.Fatalf("EncodePayload() error = %v", err)
		}
		if !bytes.Contains(got, []byte(`"a<b>&c"`)) {
			t.Errorf("EncodePayload() = %s, want unescaped name", got)
		}
	})

	t.Run("non_ascii_name_uses_unicode_escapes", func(t *testing.T) {
		// The gateway's serializer emits non-ASCII as lowercase
		// \uXXXX escapes, with surrogate pairs above the BMP. Raw
		// UTF-8 here would sign different bytes than the gateway.
		cases := []struct{ name, want string }{
			{"café", `"café"`},
			{"日本", `"日本"`},
			{"pin \U0001f4cc", `"pin 📌"`},
			{"tab\there", `"tab\there"`},
			{"ctrl\x01", `"ctrl"`},
		}
		for _, tc := range cases {
			got, err := EncodePayload(tc.name, json.RawMessage(`{}`), 1, nil)
			if err != nil {
				t.Fatalf("EncodePayload(%q) error = %v", tc.name, err)
			}
			if !bytes.Contains(got, []byte(tc.want)) {
				t.Errorf("EncodePayload(%q) = %s, want name encoded as %s", tc.name, got, tc.want)
			}
		}
	})

	t.Run("missing_action_name", func(t *testing.T) {
		_, err := EncodePayload("", params, 1700000000, nil)
		if !errors.Is(err, ErrMissingActionName) {
			t.Errorf("EncodePayload() error = %v, want ErrMissingActionName", err)
		}
	})

	t.Run("missing_parameters", func(t *testing.T) {
		_, err := EncodePayload("send_email", nil, 1700000000, nil)
		if !errors.Is(err, ErrMissingParameters) {
			t.Errorf("EncodePayload() error = %v, want ErrMissingParameters", err)
		}
	})

	t.Run("invalid_parameters_json", func(t *testing.T) {
		_, err := EncodePayload("send_email", json.RawMessage(`{"a":`), 1700000000, nil)
		if err == nil {
			t.Error("EncodePayload() = nil error for truncated parameters")
		}
	})
}
