// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"bytes"
	"context"
	"encoding/json"
)

// Result is the outcome of dispatching an action.
type Result struct {
	// Result is the success payload. Empty on failure.
	Result string

	// StatusFlag is a secondary success indicator (1 success,
	// 0 failure) carried for wire compatibility with the gateway's
	// result model. It is advisory only: the pipeline decides
	// success or failure from Error alone, because historical
	// handlers have returned a non-empty Error with StatusFlag 1.
	StatusFlag int

	// Error is empty on success and a human-readable description
	// otherwise. A non-empty Error is authoritative for failure.
	Error string
}

// Handler executes an action. Implementations receive the parsed
// request parameters and nothing else; presence and type checks on
// individual parameters are the handler's responsibility.
type Handler func(ctx context.Context, params map[string]any) Result

// Definition describes an action for discovery and gateway
// registration. It is documentation-grade metadata, not an enforced
// schema.
type Definition struct {
	// Name is the action name, as it appears in the callback path
	// and in the signed action_name field.
	Name string `json:"name"`

	// Description is a human-readable summary.
	Description string `json:"description"`

	// Parameters lists the parameter names, for listings and for
	// deriving a default JSON Schema when Schema is not authored.
	Parameters []string `json:"parameters,omitempty"`

	// Required lists the subset of Parameters that are mandatory.
	// Empty means all listed parameters are required.
	Required []string `json:"required,omitempty"`

	// Schema is an authored JSON Schema for the parameters. When
	// nil, ParameterSchema derives one from Parameters.
	Schema json.RawMessage `json:"json_schema,omitempty"`
}

// ParameterSchema returns the JSON Schema registered with the gateway
// for this action: the authored Schema when present, otherwise an
// object schema derived from Parameters (every parameter typed as
// string, Required — or all parameters — marked required). The
// derivation is deterministic: properties appear in Parameters order.
func (d Definition) ParameterSchema() json.RawMessage {
	if len(d.Schema) > 0 {
		return d.Schema
	}

	required := d.Required
	if len(required) == 0 {
		required = d.Parameters
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, name := range d.Parameters {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		buf.Write(key)
		buf.WriteString(`:{"type":"string"}`)
	}
	buf.WriteString(`},"required":[`)
	for i, name := range required {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		buf.Write(key)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}
