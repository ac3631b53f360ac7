// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package callback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/flowent-foundation/actionserver/lib/clock"
	"github.com/flowent-foundation/actionserver/lib/testutil"
)

func TestServerLifecycle(t *testing.T) {
	h := newTestHandler(t, testRegistry(t), clock.Fake(testNow))
	server := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Handler: h.Routes(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx)
	}()

	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server did not become ready")

	// The bound address must be reachable: hit /health over a real
	// TCP connection.
	url := fmt.Sprintf("http://%s/health", server.Addr())
	response, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", response.StatusCode)
	}

	cancel()
	err = testutil.RequireReceive(t, serveErr, 5*time.Second, "server did not shut down")
	if err != nil {
		t.Errorf("Serve() error = %v, want nil after graceful shutdown", err)
	}
}

func TestServerBindFailure(t *testing.T) {
	h := newTestHandler(t, testRegistry(t), clock.Fake(testNow))

	first := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Handler: h.Routes(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		firstErr <- first.Serve(ctx)
	}()
	testutil.RequireClosed(t, first.Ready(), 5*time.Second, "first server did not become ready")

	// Binding the same concrete address again must fail fast.
	second := NewServer(ServerConfig{
		Address: first.Addr().String(),
		Handler: h.Routes(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	done := make(chan error, 1)
	go func() {
		done <- second.Serve(ctx)
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Error("Serve() = nil, want bind error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second Serve did not return")
	}
}

func TestNewServerValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewServer with no address did not panic")
		}
	}()
	NewServer(ServerConfig{Handler: http.NewServeMux(), Logger: slog.Default()})
}
