// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flowent-foundation/actionserver/lib/action"
	"github.com/flowent-foundation/actionserver/lib/clock"
)

// advanceWhenAsleep advances the fake clock as soon as a Sleep
// registers, so handlers with simulated delays complete immediately.
func advanceWhenAsleep(t *testing.T, fake *clock.FakeClock, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			if fake.WaiterCount() > 0 {
				fake.Advance(d)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestSendEmail(t *testing.T) {
	fake := clock.Fake(time.Unix(1700000000, 0))

	t.Run("success", func(t *testing.T) {
		advanceWhenAsleep(t, fake, time.Second)
		result := sendEmail(fake)(context.Background(), map[string]any{
			"recipient": "a@example.com",
			"subject":   "Hi",
			"body":      "Hello",
		})
		if result.Error != "" {
			t.Fatalf("Error = %q", result.Error)
		}
		if result.Result != "Email sent successfully to a@example.com" {
			t.Errorf("Result = %q", result.Result)
		}
		if result.StatusFlag != 1 {
			t.Errorf("StatusFlag = %d, want 1", result.StatusFlag)
		}
	})

	t.Run("missing_parameters", func(t *testing.T) {
		result := sendEmail(fake)(context.Background(), map[string]any{"recipient": "a@example.com"})
		if result.Error != "Missing required parameters: recipient, subject, body" {
			t.Errorf("Error = %q", result.Error)
		}
		if result.StatusFlag != 0 {
			t.Errorf("StatusFlag = %d, want 0", result.StatusFlag)
		}
	})
}

func TestCreateUser(t *testing.T) {
	fake := clock.Fake(time.Unix(1700000000, 0))

	t.Run("success", func(t *testing.T) {
		result := createUser(fake)(context.Background(), map[string]any{
			"username": "alice",
			"email":    "alice@example.com",
		})
		if result.Error != "" {
			t.Fatalf("Error = %q", result.Error)
		}
		if result.Result != "User created successfully with ID: user_1700000000" {
			t.Errorf("Result = %q", result.Result)
		}
	})

	t.Run("missing_email", func(t *testing.T) {
		result := createUser(fake)(context.Background(), map[string]any{"username": "alice"})
		if result.Error != "Missing required parameters: username, email" {
			t.Errorf("Error = %q", result.Error)
		}
	})
}

func TestGetWeather(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		result := getWeather(context.Background(), map[string]any{"location": "Berlin"})
		if result.Error != "" {
			t.Fatalf("Error = %q", result.Error)
		}
		if !strings.HasPrefix(result.Result, "Weather in Berlin:") {
			t.Errorf("Result = %q", result.Result)
		}
	})

	t.Run("missing_location", func(t *testing.T) {
		result := getWeather(context.Background(), map[string]any{})
		if result.Error != "Missing required parameter: location" {
			t.Errorf("Error = %q", result.Error)
		}
	})
}

func TestBuildRegistryBuiltins(t *testing.T) {
	registry, err := buildRegistry(clock.Fake(time.Unix(1700000000, 0)), nil)
	if err != nil {
		t.Fatalf("buildRegistry() error = %v", err)
	}
	defs := registry.Definitions()
	if len(defs) != 3 {
		t.Fatalf("len(definitions) = %d, want 3", len(defs))
	}
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	for _, want := range []string{"send_email", "create_user", "get_weather"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("definitions %v missing %s", names, want)
		}
	}
}

func TestBuildRegistryManifest(t *testing.T) {
	t.Run("metadata_override", func(t *testing.T) {
		manifest := &action.Manifest{Actions: []action.Definition{
			{Name: "get_weather", Description: "Custom weather lookup", Parameters: []string{"location"}},
		}}
		registry, err := buildRegistry(clock.Fake(time.Unix(1700000000, 0)), manifest)
		if err != nil {
			t.Fatalf("buildRegistry() error = %v", err)
		}
		defs := registry.Definitions()
		if len(defs) != 1 || defs[0].Description != "Custom weather lookup" {
			t.Errorf("definitions = %+v", defs)
		}
	})

	t.Run("unbound_action_rejected", func(t *testing.T) {
		manifest := &action.Manifest{Actions: []action.Definition{
			{Name: "launch_rockets"},
		}}
		if _, err := buildRegistry(clock.Fake(time.Unix(1700000000, 0)), manifest); err == nil {
			t.Error("buildRegistry() = nil error for manifest action with no handler")
		}
	})
}
