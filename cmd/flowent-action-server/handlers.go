// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flowent-foundation/actionserver/lib/action"
	"github.com/flowent-foundation/actionserver/lib/clock"
)

// builtinDefinitions describes the actions this binary ships with.
// A manifest file can replace the metadata but the handlers are bound
// here by name.
func builtinDefinitions() []action.Definition {
	return []action.Definition{
		{
			Name:        "send_email",
			Description: "Send an email to a specified recipient",
			Parameters:  []string{"recipient", "subject", "body"},
			Required:    []string{"recipient", "subject", "body"},
		},
		{
			Name:        "create_user",
			Description: "Create a new user account",
			Parameters:  []string{"username", "email", "full_name"},
			Required:    []string{"username", "email"},
		},
		{
			Name:        "get_weather",
			Description: "Get weather information for a location",
			Parameters:  []string{"location"},
			Required:    []string{"location"},
		},
	}
}

// builtinHandlers binds each builtin action name to its handler. The
// clock is injected so tests drive the simulated delivery delay.
func builtinHandlers(clk clock.Clock) map[string]action.Handler {
	return map[string]action.Handler{
		"send_email":  sendEmail(clk),
		"create_user": createUser(clk),
		"get_weather": getWeather,
	}
}

func stringParam(params map[string]any, name string) string {
	value, _ := params[name].(string)
	return value
}

func sendEmail(clk clock.Clock) action.Handler {
	return func(ctx context.Context, params map[string]any) action.Result {
		recipient := stringParam(params, "recipient")
		subject := stringParam(params, "subject")
		body := stringParam(params, "body")
		if recipient == "" || subject == "" || body == "" {
			return action.Result{Error: "Missing required parameters: recipient, subject, body"}
		}

		// Simulated delivery; a real deployment would hand off to a
		// mail provider here.
		clk.Sleep(100 * time.Millisecond)

		return action.Result{
			Result:     fmt.Sprintf("Email sent successfully to %s", recipient),
			StatusFlag: 1,
		}
	}
}

func createUser(clk clock.Clock) action.Handler {
	return func(ctx context.Context, params map[string]any) action.Result {
		username := stringParam(params, "username")
		email := stringParam(params, "email")
		if username == "" || email == "" {
			return action.Result{Error: "Missing required parameters: username, email"}
		}

		userID := fmt.Sprintf("user_%d", clk.Now().Unix())
		return action.Result{
			Result:     fmt.Sprintf("User created successfully with ID: %s", userID),
			StatusFlag: 1,
		}
	}
}

func getWeather(ctx context.Context, params map[string]any) action.Result {
	location := stringParam(params, "location")
	if location == "" {
		return action.Result{Error: "Missing required parameter: location"}
	}

	// Canned conditions; a real deployment would call a weather API.
	return action.Result{
		Result:     fmt.Sprintf("Weather in %s: 22°C, Sunny", location),
		StatusFlag: 1,
	}
}

// buildRegistry registers the builtin handlers, taking metadata from
// the manifest when one is provided. Manifest entries without a bound
// handler are an error: a registered action the server cannot execute
// would fail every invocation.
func buildRegistry(clk clock.Clock, manifest *action.Manifest) (*action.Registry, error) {
	handlers := builtinHandlers(clk)
	definitions := builtinDefinitions()
	if manifest != nil {
		definitions = manifest.Actions
	}

	registry := action.NewRegistry()
	for _, def := range definitions {
		handler, ok := handlers[def.Name]
		if !ok {
			return nil, fmt.Errorf("manifest action %q has no handler", def.Name)
		}
		if err := registry.Register(def, handler); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
