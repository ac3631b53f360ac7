// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"context"
	"fmt"
)

// Registry maps action names to handlers. It is populated during
// startup and read-only afterward; Dispatch and Definitions are safe
// for unsynchronized concurrent use once registration is complete.
type Registry struct {
	handlers    map[string]Handler
	definitions []Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds an action. Registration errors are setup errors: an
// empty name, a nil handler, or a duplicate name all indicate a wiring
// bug in the binary, not a runtime condition.
func (r *Registry) Register(def Definition, handler Handler) error {
	if def.Name == "" {
		return fmt.Errorf("action: definition has empty name")
	}
	if handler == nil {
		return fmt.Errorf("action %s: nil handler", def.Name)
	}
	if _, exists := r.handlers[def.Name]; exists {
		return fmt.Errorf("action %s: already registered", def.Name)
	}
	r.handlers[def.Name] = handler
	r.definitions = append(r.definitions, def)
	return nil
}

// Definitions returns the registered action metadata in registration
// order. The returned slice is shared; callers must not mutate it.
func (r *Registry) Definitions() []Definition {
	return r.definitions
}

// Dispatch routes a request to its handler and normalizes the
// outcome. An unknown action name and a handler panic both come back
// as a Result with a non-empty Error — recoverable, caller-visible
// failures, never a crash.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (result Result) {
	handler, ok := r.handlers[name]
	if !ok {
		return Result{Error: fmt.Sprintf("unknown action: %s", name)}
	}

	// The dispatch boundary: a panicking handler must not take the
	// process down or escape as an unstructured failure.
	defer func() {
		if v := recover(); v != nil {
			result = Result{Error: fmt.Sprintf("action %s failed: %v", name, v)}
		}
	}()

	return handler(ctx, params)
}
